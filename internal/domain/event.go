package domain

import "time"

// CheckInEventType identifies the kind of event on the check-in stream.
type CheckInEventType string

const (
	// CheckInEventAdmitted is emitted exactly once per winning transition.
	CheckInEventAdmitted CheckInEventType = "checkin.admitted"
)

// CheckInEvent is the append-only log entry produced for every successful
// check-in. It is derived from the ticket at transition time and immutable
// once created; per ticket there is only ever one.
type CheckInEvent struct {
	EventID      string           `json:"event_id"`
	Type         CheckInEventType `json:"type"`
	TicketCode   string           `json:"ticket_code"`
	AttendeeName string           `json:"attendee_name"`
	EventName    string           `json:"event_name"`
	CheckedInAt  time.Time        `json:"checked_in_at"`
}

// NewCheckInEvent builds the event for a winning transition.
func NewCheckInEvent(eventID string, ticket *Ticket, checkedInAt time.Time) *CheckInEvent {
	return &CheckInEvent{
		EventID:      eventID,
		Type:         CheckInEventAdmitted,
		TicketCode:   ticket.Code,
		AttendeeName: ticket.AttendeeName,
		EventName:    ticket.EventName,
		CheckedInAt:  checkedInAt,
	}
}

// Key returns the partition key for the event. One event per ticket means
// per-key ordering is trivially preserved.
func (e *CheckInEvent) Key() string {
	return e.TicketCode
}

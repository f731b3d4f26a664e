package domain

import (
	"strings"
	"time"
)

// Ticket represents a registered attendee ticket. The code is the natural
// key encoded in the scannable QR tag; CheckedInAt is nil until the ticket
// is admitted and is set exactly once.
type Ticket struct {
	Code         string     `json:"code"`
	AttendeeName string     `json:"attendee_name"`
	EventName    string     `json:"event_name"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewTicket creates a pending ticket from registration input.
func NewTicket(code, attendeeName, eventName string) *Ticket {
	return &Ticket{
		Code:         strings.TrimSpace(code),
		AttendeeName: strings.TrimSpace(attendeeName),
		EventName:    strings.TrimSpace(eventName),
		CreatedAt:    time.Now(),
	}
}

// Validate checks that all registration fields are present.
func (t *Ticket) Validate() error {
	if strings.TrimSpace(t.Code) == "" {
		return ErrMissingCode
	}
	if strings.TrimSpace(t.AttendeeName) == "" {
		return ErrMissingAttendeeName
	}
	if strings.TrimSpace(t.EventName) == "" {
		return ErrMissingEventName
	}
	return nil
}

// IsCheckedIn reports whether the ticket has been admitted.
func (t *Ticket) IsCheckedIn() bool {
	return t.CheckedInAt != nil
}

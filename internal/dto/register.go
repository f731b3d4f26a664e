package dto

import (
	"time"

	"github.com/rigved526/master-qr-scanner/internal/domain"
)

// RegisterTicketRequest is the on-spot registration payload.
type RegisterTicketRequest struct {
	Code         string `json:"code" binding:"required"`
	AttendeeName string `json:"attendee_name" binding:"required"`
	EventName    string `json:"event_name" binding:"required"`
}

// TicketResponse is the ticket shape returned to admin and dashboard views.
type TicketResponse struct {
	Code         string     `json:"code"`
	AttendeeName string     `json:"attendee_name"`
	EventName    string     `json:"event_name"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TicketResponseFromDomain converts a ticket to the wire shape.
func TicketResponseFromDomain(t *domain.Ticket) *TicketResponse {
	return &TicketResponse{
		Code:         t.Code,
		AttendeeName: t.AttendeeName,
		EventName:    t.EventName,
		CheckedInAt:  t.CheckedInAt,
		CreatedAt:    t.CreatedAt,
	}
}

// ImportRecord is one row of a bulk registration import.
type ImportRecord struct {
	Code         string `json:"code"`
	AttendeeName string `json:"attendee_name"`
	EventName    string `json:"event_name"`
}

// ImportTicketsRequest is the bulk registration payload.
type ImportTicketsRequest struct {
	Records []ImportRecord `json:"records" binding:"required"`
}

// RejectedRecord reports one import record that was not inserted, with the
// reason (duplicate or which field was missing).
type RejectedRecord struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// ImportTicketsResponse reports the best-effort import outcome.
type ImportTicketsResponse struct {
	Inserted int              `json:"inserted"`
	Rejected []RejectedRecord `json:"rejected"`
}

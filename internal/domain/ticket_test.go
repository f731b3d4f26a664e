package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewTicket(t *testing.T) {
	ticket := NewTicket("  TCK-001  ", " Ada Lovelace ", " Illuminate 2026 ")

	if ticket.Code != "TCK-001" {
		t.Errorf("expected trimmed code TCK-001, got %q", ticket.Code)
	}
	if ticket.AttendeeName != "Ada Lovelace" {
		t.Errorf("expected trimmed attendee name, got %q", ticket.AttendeeName)
	}
	if ticket.EventName != "Illuminate 2026" {
		t.Errorf("expected trimmed event name, got %q", ticket.EventName)
	}
	if ticket.IsCheckedIn() {
		t.Error("new ticket must start pending")
	}
	if ticket.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}

func TestTicket_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ticket  *Ticket
		wantErr error
	}{
		{
			name:    "valid ticket",
			ticket:  NewTicket("TCK-001", "Ada", "Illuminate"),
			wantErr: nil,
		},
		{
			name:    "missing code",
			ticket:  NewTicket("", "Ada", "Illuminate"),
			wantErr: ErrMissingCode,
		},
		{
			name:    "whitespace code",
			ticket:  &Ticket{Code: "   ", AttendeeName: "Ada", EventName: "Illuminate"},
			wantErr: ErrMissingCode,
		},
		{
			name:    "missing attendee name",
			ticket:  NewTicket("TCK-001", "", "Illuminate"),
			wantErr: ErrMissingAttendeeName,
		},
		{
			name:    "missing event name",
			ticket:  NewTicket("TCK-001", "Ada", ""),
			wantErr: ErrMissingEventName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ticket.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr != nil && !IsValidationError(err) {
				t.Errorf("expected %v to classify as validation error", err)
			}
		})
	}
}

func TestTicket_IsCheckedIn(t *testing.T) {
	ticket := NewTicket("TCK-001", "Ada", "Illuminate")
	if ticket.IsCheckedIn() {
		t.Error("pending ticket reported checked in")
	}

	now := time.Now()
	ticket.CheckedInAt = &now
	if !ticket.IsCheckedIn() {
		t.Error("admitted ticket reported pending")
	}
}

func TestCheckInResult_Admitted(t *testing.T) {
	tests := []struct {
		status CheckInStatus
		want   bool
	}{
		{CheckInStatusAdmitted, true},
		{CheckInStatusAlreadyAdmitted, false},
		{CheckInStatusUnregistered, false},
	}

	for _, tt := range tests {
		result := &CheckInResult{Status: tt.status}
		if result.Admitted() != tt.want {
			t.Errorf("status %s: expected Admitted()=%v", tt.status, tt.want)
		}
	}
}

func TestErrorClassification(t *testing.T) {
	if !IsConflictError(ErrDuplicateCode) {
		t.Error("ErrDuplicateCode must classify as conflict")
	}
	if !IsConflictError(ErrAlreadyCheckedIn) {
		t.Error("ErrAlreadyCheckedIn must classify as conflict")
	}
	if !IsNotFoundError(ErrTicketNotFound) {
		t.Error("ErrTicketNotFound must classify as not found")
	}
	if IsValidationError(ErrTicketNotFound) {
		t.Error("ErrTicketNotFound must not classify as validation error")
	}
	if IsConflictError(errors.New("unrelated")) {
		t.Error("unrelated error must not classify as conflict")
	}
}

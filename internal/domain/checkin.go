package domain

import "time"

// CheckInStatus classifies the outcome of a check-in attempt. All three
// values are legitimate verdicts, not errors; staff handle each differently
// at the gate.
type CheckInStatus string

const (
	// CheckInStatusAdmitted means this attempt won the pending -> checked-in
	// transition.
	CheckInStatusAdmitted CheckInStatus = "admitted"
	// CheckInStatusAlreadyAdmitted means the ticket exists but was admitted
	// by an earlier scan.
	CheckInStatusAlreadyAdmitted CheckInStatus = "already_admitted"
	// CheckInStatusUnregistered means no ticket exists for the scanned code.
	CheckInStatusUnregistered CheckInStatus = "unregistered"
)

// String returns the string representation of CheckInStatus.
func (s CheckInStatus) String() string {
	return string(s)
}

// CheckInResult is the classified verdict returned to the scanner front end.
// For Admitted and AlreadyAdmitted, CheckedInAt carries the timestamp of the
// winning transition (the original one, never the losing attempt's).
type CheckInResult struct {
	Status       CheckInStatus `json:"status"`
	Code         string        `json:"code"`
	AttendeeName string        `json:"attendee_name,omitempty"`
	EventName    string        `json:"event_name,omitempty"`
	CheckedInAt  *time.Time    `json:"checked_in_at,omitempty"`
}

// Admitted reports whether this attempt performed the transition.
func (r *CheckInResult) Admitted() bool {
	return r.Status == CheckInStatusAdmitted
}

package domain

import "errors"

// Domain errors
var (
	// Registry errors
	ErrTicketNotFound = errors.New("ticket not found")
	ErrDuplicateCode  = errors.New("ticket code already registered")

	// Check-in errors. ErrAlreadyCheckedIn is used by storage
	// implementations to signal a lost conditional write; the service maps
	// it to the AlreadyAdmitted verdict rather than surfacing it.
	ErrAlreadyCheckedIn = errors.New("ticket already checked in")

	// Validation errors
	ErrMissingCode         = errors.New("ticket code is required")
	ErrMissingAttendeeName = errors.New("attendee name is required")
	ErrMissingEventName    = errors.New("event name is required")
)

// IsValidationError checks if the error is a registration validation error.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingCode) ||
		errors.Is(err, ErrMissingAttendeeName) ||
		errors.Is(err, ErrMissingEventName)
}

// IsConflictError checks if the error is a uniqueness conflict.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateCode) ||
		errors.Is(err, ErrAlreadyCheckedIn)
}

// IsNotFoundError checks if the error is a not found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrTicketNotFound)
}

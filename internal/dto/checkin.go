package dto

import (
	"time"

	"github.com/rigved526/master-qr-scanner/internal/domain"
)

// CheckInRequest is the scan payload: the decoded QR string.
type CheckInRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckInResponse is the verdict rendered by the scanner front end. Bucket
// carries the presentation bucket for the ticket's event so the scanner can
// pick the right color without knowing the policy.
type CheckInResponse struct {
	Status       string     `json:"status"`
	Code         string     `json:"code"`
	AttendeeName string     `json:"attendee_name,omitempty"`
	EventName    string     `json:"event_name,omitempty"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
	Bucket       string     `json:"bucket,omitempty"`
}

// CheckInResponseFromResult converts a domain verdict to the wire shape.
func CheckInResponseFromResult(result *domain.CheckInResult, bucket string) *CheckInResponse {
	return &CheckInResponse{
		Status:       result.Status.String(),
		Code:         result.Code,
		AttendeeName: result.AttendeeName,
		EventName:    result.EventName,
		CheckedInAt:  result.CheckedInAt,
		Bucket:       bucket,
	}
}

package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rigved526/master-qr-scanner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInResponseFromResult(t *testing.T) {
	checkedInAt := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	result := &domain.CheckInResult{
		Status:       domain.CheckInStatusAdmitted,
		Code:         "TCK-001",
		AttendeeName: "Ada Lovelace",
		EventName:    "Illuminate 2026",
		CheckedInAt:  &checkedInAt,
	}

	resp := CheckInResponseFromResult(result, "illuminate")

	assert.Equal(t, "admitted", resp.Status)
	assert.Equal(t, "TCK-001", resp.Code)
	assert.Equal(t, "Ada Lovelace", resp.AttendeeName)
	assert.Equal(t, "illuminate", resp.Bucket)
	require.NotNil(t, resp.CheckedInAt)
	assert.True(t, resp.CheckedInAt.Equal(checkedInAt))
}

func TestCheckInResponse_UnregisteredOmitsTicketFields(t *testing.T) {
	result := &domain.CheckInResult{
		Status: domain.CheckInStatusUnregistered,
		Code:   "TCK-404",
	}

	body, err := json.Marshal(CheckInResponseFromResult(result, ""))
	require.NoError(t, err)

	// The scanner renders the verdict alone; absent fields must not show
	// up as nulls or zero values
	assert.JSONEq(t, `{"status":"unregistered","code":"TCK-404"}`, string(body))
}

func TestTicketResponseFromDomain(t *testing.T) {
	ticket := domain.NewTicket("TCK-001", "Ada Lovelace", "Illuminate 2026")

	resp := TicketResponseFromDomain(ticket)

	assert.Equal(t, ticket.Code, resp.Code)
	assert.Equal(t, ticket.AttendeeName, resp.AttendeeName)
	assert.Equal(t, ticket.EventName, resp.EventName)
	assert.Nil(t, resp.CheckedInAt)
	assert.True(t, resp.CreatedAt.Equal(ticket.CreatedAt))
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rigved526/master-qr-scanner/internal/bus"
	"github.com/rigved526/master-qr-scanner/internal/domain"
	"github.com/rigved526/master-qr-scanner/internal/repository"
)

// CheckInService is the check-in state machine: it resolves a scanned code,
// performs the once-only transition, and classifies the outcome.
type CheckInService interface {
	// AttemptCheckIn resolves the code and attempts the atomic
	// pending -> checked-in transition at time now. Unregistered and
	// AlreadyAdmitted come back as verdicts, not errors; a non-nil error
	// means storage failed and the verdict is unknown.
	AttemptCheckIn(ctx context.Context, code string, now time.Time) (*domain.CheckInResult, error)
}

// checkInService implements CheckInService
type checkInService struct {
	ticketRepo repository.TicketRepository
	eventBus   *bus.CheckInBus
}

// NewCheckInService creates a new check-in service.
func NewCheckInService(ticketRepo repository.TicketRepository, eventBus *bus.CheckInBus) CheckInService {
	return &checkInService{
		ticketRepo: ticketRepo,
		eventBus:   eventBus,
	}
}

// AttemptCheckIn performs the scan verdict flow. The repository's CheckIn is
// a single conditional write, so concurrent scans of the same code resolve
// to exactly one Admitted and the rest AlreadyAdmitted; there is no separate
// lookup-then-update window. Storage errors propagate unchanged: a blind
// retry is always safe because a re-attempt after a win verdicts as
// AlreadyAdmitted.
func (s *checkInService) AttemptCheckIn(ctx context.Context, code string, now time.Time) (*domain.CheckInResult, error) {
	ticket, won, err := s.ticketRepo.CheckIn(ctx, code, now)
	if err != nil {
		if domain.IsNotFoundError(err) {
			return &domain.CheckInResult{
				Status: domain.CheckInStatusUnregistered,
				Code:   code,
			}, nil
		}
		return nil, err
	}

	if !won {
		return &domain.CheckInResult{
			Status:       domain.CheckInStatusAlreadyAdmitted,
			Code:         ticket.Code,
			AttendeeName: ticket.AttendeeName,
			EventName:    ticket.EventName,
			CheckedInAt:  ticket.CheckedInAt,
		}, nil
	}

	// Publish before returning so no Admitted verdict is observable
	// without its event on the stream.
	event := domain.NewCheckInEvent(uuid.New().String(), ticket, *ticket.CheckedInAt)
	s.eventBus.Publish(*event)

	return &domain.CheckInResult{
		Status:       domain.CheckInStatusAdmitted,
		Code:         ticket.Code,
		AttendeeName: ticket.AttendeeName,
		EventName:    ticket.EventName,
		CheckedInAt:  ticket.CheckedInAt,
	}, nil
}

package service

import (
	"context"

	"github.com/rigved526/master-qr-scanner/internal/domain"
	"github.com/rigved526/master-qr-scanner/internal/dto"
	"github.com/rigved526/master-qr-scanner/internal/repository"
)

// RegistrationObserver is notified after every successful registration so
// derived counters can track the registry without rescanning it. The
// aggregator implements it.
type RegistrationObserver interface {
	OnTicketRegistered(ticket *domain.Ticket)
}

// RegistrationService owns the registry's write surface: on-spot
// registration and bulk import.
type RegistrationService interface {
	// Register creates a single ticket. Returns domain.ErrDuplicateCode if
	// the code exists, or a validation error for a missing field.
	Register(ctx context.Context, req *dto.RegisterTicketRequest) (*domain.Ticket, error)

	// RegisterBatch imports records best-effort: each record is validated
	// independently and duplicates (against storage and within the batch)
	// are rejected without aborting the rest. Safe to re-run on the same
	// file. The returned error is storage failure only.
	RegisterBatch(ctx context.Context, records []dto.ImportRecord) (int, []dto.RejectedRecord, error)

	// Lookup retrieves a ticket without side effects.
	Lookup(ctx context.Context, code string) (*domain.Ticket, error)

	// List returns the full roster for dashboard rendering.
	List(ctx context.Context) ([]*domain.Ticket, error)
}

// registrationService implements RegistrationService
type registrationService struct {
	ticketRepo repository.TicketRepository
	observer   RegistrationObserver
}

// NewRegistrationService creates a new registration service. The observer
// may be nil.
func NewRegistrationService(ticketRepo repository.TicketRepository, observer RegistrationObserver) RegistrationService {
	return &registrationService{
		ticketRepo: ticketRepo,
		observer:   observer,
	}
}

// Register creates a single ticket.
func (s *registrationService) Register(ctx context.Context, req *dto.RegisterTicketRequest) (*domain.Ticket, error) {
	ticket := domain.NewTicket(req.Code, req.AttendeeName, req.EventName)
	if err := ticket.Validate(); err != nil {
		return nil, err
	}

	if err := s.ticketRepo.Insert(ctx, ticket); err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.OnTicketRegistered(ticket)
	}

	return ticket, nil
}

const (
	rejectReasonDuplicate        = "duplicate code"
	rejectReasonDuplicateInBatch = "duplicate code within batch"
)

// RegisterBatch imports records best-effort.
func (s *registrationService) RegisterBatch(ctx context.Context, records []dto.ImportRecord) (int, []dto.RejectedRecord, error) {
	inserted := 0
	var rejected []dto.RejectedRecord
	seen := make(map[string]struct{}, len(records))

	for _, record := range records {
		ticket := domain.NewTicket(record.Code, record.AttendeeName, record.EventName)
		if err := ticket.Validate(); err != nil {
			rejected = append(rejected, dto.RejectedRecord{
				Code:   ticket.Code,
				Reason: err.Error(),
			})
			continue
		}

		if _, dup := seen[ticket.Code]; dup {
			rejected = append(rejected, dto.RejectedRecord{
				Code:   ticket.Code,
				Reason: rejectReasonDuplicateInBatch,
			})
			continue
		}
		seen[ticket.Code] = struct{}{}

		ok, err := s.ticketRepo.InsertIfAbsent(ctx, ticket)
		if err != nil {
			// Storage failure aborts here; partial progress is the
			// documented outcome and a re-run skips what already landed.
			return inserted, rejected, err
		}
		if !ok {
			rejected = append(rejected, dto.RejectedRecord{
				Code:   ticket.Code,
				Reason: rejectReasonDuplicate,
			})
			continue
		}

		inserted++
		if s.observer != nil {
			s.observer.OnTicketRegistered(ticket)
		}
	}

	return inserted, rejected, nil
}

// Lookup retrieves a ticket by code.
func (s *registrationService) Lookup(ctx context.Context, code string) (*domain.Ticket, error) {
	return s.ticketRepo.GetByCode(ctx, code)
}

// List returns all tickets.
func (s *registrationService) List(ctx context.Context) ([]*domain.Ticket, error) {
	return s.ticketRepo.List(ctx)
}

package repository

import (
	"context"
	"time"

	"github.com/rigved526/master-qr-scanner/internal/domain"
)

// StatsScan is a full derived-count scan of the registry, used to seed the
// aggregator. CheckedInByEvent counts admitted tickets per raw event name;
// bucket classification is the aggregator's concern.
type StatsScan struct {
	Total            int64
	CheckedIn        int64
	CheckedInByEvent map[string]int64
}

// TicketRepository defines the interface for ticket storage. The registry
// exclusively owns ticket records; CheckIn is the only mutation the check-in
// path may perform, and it must be an atomic conditional write.
type TicketRepository interface {
	// Insert creates a ticket with no check-in. Returns
	// domain.ErrDuplicateCode if the code already exists.
	Insert(ctx context.Context, ticket *domain.Ticket) error

	// InsertIfAbsent creates the ticket unless the code already exists.
	// Returns false without error on a duplicate, making bulk imports safe
	// to re-run.
	InsertIfAbsent(ctx context.Context, ticket *domain.Ticket) (bool, error)

	// GetByCode retrieves a ticket. Returns domain.ErrTicketNotFound if no
	// ticket exists for the code.
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)

	// List returns all tickets ordered by check-in time descending, pending
	// tickets last.
	List(ctx context.Context) ([]*domain.Ticket, error)

	// CheckIn atomically sets checked_in_at = now for the ticket with this
	// code, only if it is currently unset. It returns the ticket's state
	// after the attempt and whether this call won the transition. A losing
	// call returns the ticket with the original timestamp. Returns
	// domain.ErrTicketNotFound if no ticket exists for the code.
	CheckIn(ctx context.Context, code string, now time.Time) (ticket *domain.Ticket, won bool, err error)

	// Stats performs a full derived-count scan.
	Stats(ctx context.Context) (*StatsScan, error)
}

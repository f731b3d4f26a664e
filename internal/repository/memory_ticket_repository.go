package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rigved526/master-qr-scanner/internal/domain"
)

// MemoryTicketRepository implements TicketRepository using in-memory storage.
// This is useful for testing and development. The mutex gives the same
// at-most-one-winner guarantee the Postgres conditional write provides.
type MemoryTicketRepository struct {
	tickets map[string]*domain.Ticket
	mu      sync.RWMutex
}

// NewMemoryTicketRepository creates a new in-memory ticket repository.
func NewMemoryTicketRepository() *MemoryTicketRepository {
	return &MemoryTicketRepository{
		tickets: make(map[string]*domain.Ticket),
	}
}

// Insert creates a new ticket record.
func (r *MemoryTicketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tickets[ticket.Code]; exists {
		return domain.ErrDuplicateCode
	}

	// Clone to avoid external modifications
	t := *ticket
	r.tickets[ticket.Code] = &t
	return nil
}

// InsertIfAbsent creates the ticket unless the code already exists.
func (r *MemoryTicketRepository) InsertIfAbsent(ctx context.Context, ticket *domain.Ticket) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tickets[ticket.Code]; exists {
		return false, nil
	}

	t := *ticket
	r.tickets[ticket.Code] = &t
	return true, nil
}

// GetByCode retrieves a ticket by its code.
func (r *MemoryTicketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, exists := r.tickets[code]
	if !exists {
		return nil, domain.ErrTicketNotFound
	}

	t := *ticket
	return &t, nil
}

// List returns all tickets, most recently admitted first, pending last.
func (r *MemoryTicketRepository) List(ctx context.Context) ([]*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tickets := make([]*domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		t := *ticket
		tickets = append(tickets, &t)
	}

	sort.Slice(tickets, func(i, j int) bool {
		a, b := tickets[i], tickets[j]
		switch {
		case a.CheckedInAt != nil && b.CheckedInAt != nil:
			return a.CheckedInAt.After(*b.CheckedInAt)
		case a.CheckedInAt != nil:
			return true
		case b.CheckedInAt != nil:
			return false
		default:
			return a.CreatedAt.After(b.CreatedAt)
		}
	})

	return tickets, nil
}

// CheckIn performs the conditional pending -> checked-in transition under
// the write lock, so concurrent callers for the same code serialize and
// exactly one observes the unset sentinel.
func (r *MemoryTicketRepository) CheckIn(ctx context.Context, code string, now time.Time) (*domain.Ticket, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, exists := r.tickets[code]
	if !exists {
		return nil, false, domain.ErrTicketNotFound
	}

	if ticket.CheckedInAt != nil {
		t := *ticket
		return &t, false, nil
	}

	checkedInAt := now
	ticket.CheckedInAt = &checkedInAt

	t := *ticket
	return &t, true, nil
}

// Stats performs a full derived-count scan.
func (r *MemoryTicketRepository) Stats(ctx context.Context) (*StatsScan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scan := &StatsScan{CheckedInByEvent: make(map[string]int64)}
	for _, ticket := range r.tickets {
		scan.Total++
		if ticket.CheckedInAt != nil {
			scan.CheckedIn++
			scan.CheckedInByEvent[ticket.EventName]++
		}
	}

	return scan, nil
}

// Ensure MemoryTicketRepository implements TicketRepository
var _ TicketRepository = (*MemoryTicketRepository)(nil)

package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rigved526/master-qr-scanner/internal/domain"
)

// schemaSQL is embedded so the service can self-bootstrap its schema.
//
//go:embed schema.sql
var schemaSQL string

const uniqueViolationCode = "23505"

// PostgresTicketRepository implements TicketRepository using PostgreSQL.
type PostgresTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository creates a new PostgresTicketRepository.
func NewPostgresTicketRepository(pool *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{pool: pool}
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (r *PostgresTicketRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply tickets schema: %w", err)
	}
	return nil
}

// Insert creates a new ticket record in the database.
func (r *PostgresTicketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	query := `
		INSERT INTO tickets (code, attendee_name, event_name, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		ticket.Code,
		ticket.AttendeeName,
		ticket.EventName,
		ticket.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("failed to insert ticket: %w", err)
	}

	return nil
}

// InsertIfAbsent creates the ticket unless the code already exists. The
// uniqueness check is enforced by the primary key, which is compatible with
// retries and re-imports of the same file.
func (r *PostgresTicketRepository) InsertIfAbsent(ctx context.Context, ticket *domain.Ticket) (bool, error) {
	query := `
		INSERT INTO tickets (code, attendee_name, event_name, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO NOTHING
		RETURNING 1
	`

	var one int
	err := r.pool.QueryRow(ctx, query,
		ticket.Code,
		ticket.AttendeeName,
		ticket.EventName,
		ticket.CreatedAt,
	).Scan(&one)

	if err == nil {
		return true, nil
	}
	// A conflict produces no rows because RETURNING returns nothing.
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}

	return false, fmt.Errorf("failed to insert ticket: %w", err)
}

// GetByCode retrieves a ticket by its code.
func (r *PostgresTicketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	query := `
		SELECT code, attendee_name, event_name, checked_in_at, created_at
		FROM tickets
		WHERE code = $1
	`

	ticket := &domain.Ticket{}
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&ticket.Code,
		&ticket.AttendeeName,
		&ticket.EventName,
		&ticket.CheckedInAt,
		&ticket.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return ticket, nil
}

// List returns all tickets, most recently admitted first, pending last.
func (r *PostgresTicketRepository) List(ctx context.Context) ([]*domain.Ticket, error) {
	query := `
		SELECT code, attendee_name, event_name, checked_in_at, created_at
		FROM tickets
		ORDER BY checked_in_at DESC NULLS LAST, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []*domain.Ticket
	for rows.Next() {
		ticket := &domain.Ticket{}
		if err := rows.Scan(
			&ticket.Code,
			&ticket.AttendeeName,
			&ticket.EventName,
			&ticket.CheckedInAt,
			&ticket.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// CheckIn performs the atomic pending -> checked-in transition. The WHERE
// clause is the compare condition: two concurrent scans of the same code
// cannot both see one row affected, so at most one caller wins.
func (r *PostgresTicketRepository) CheckIn(ctx context.Context, code string, now time.Time) (*domain.Ticket, bool, error) {
	query := `
		UPDATE tickets
		SET checked_in_at = $2
		WHERE code = $1 AND checked_in_at IS NULL
		RETURNING code, attendee_name, event_name, checked_in_at, created_at
	`

	ticket := &domain.Ticket{}
	err := r.pool.QueryRow(ctx, query, code, now).Scan(
		&ticket.Code,
		&ticket.AttendeeName,
		&ticket.EventName,
		&ticket.CheckedInAt,
		&ticket.CreatedAt,
	)
	if err == nil {
		return ticket, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("failed to check in ticket: %w", err)
	}

	// Lost the conditional write. Re-read to distinguish an unknown code
	// from a ticket admitted by an earlier scan; this path never mutates.
	ticket, err = r.GetByCode(ctx, code)
	if err != nil {
		return nil, false, err
	}
	return ticket, false, nil
}

// Stats performs a full derived-count scan of the tickets table.
func (r *PostgresTicketRepository) Stats(ctx context.Context) (*StatsScan, error) {
	scan := &StatsScan{CheckedInByEvent: make(map[string]int64)}

	query := `
		SELECT COUNT(*), COUNT(checked_in_at)
		FROM tickets
	`
	if err := r.pool.QueryRow(ctx, query).Scan(&scan.Total, &scan.CheckedIn); err != nil {
		return nil, fmt.Errorf("failed to count tickets: %w", err)
	}

	perEvent := `
		SELECT event_name, COUNT(*)
		FROM tickets
		WHERE checked_in_at IS NOT NULL
		GROUP BY event_name
	`
	rows, err := r.pool.Query(ctx, perEvent)
	if err != nil {
		return nil, fmt.Errorf("failed to count tickets per event: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventName string
		var count int64
		if err := rows.Scan(&eventName, &count); err != nil {
			return nil, fmt.Errorf("failed to scan event count: %w", err)
		}
		scan.CheckedInByEvent[eventName] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event counts: %w", err)
	}

	return scan, nil
}

// Ensure PostgresTicketRepository implements TicketRepository
var _ TicketRepository = (*PostgresTicketRepository)(nil)

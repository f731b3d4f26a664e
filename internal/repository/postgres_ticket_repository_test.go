package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rigved526/master-qr-scanner/internal/domain"
)

func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}
}

// getPostgresPool creates a PostgreSQL connection pool for testing
func getPostgresPool(t *testing.T) *pgxpool.Pool {
	skipIfNoIntegration(t)

	host := os.Getenv("TEST_POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}

	port := os.Getenv("TEST_POSTGRES_PORT")
	if port == "" {
		port = "5432"
	}

	user := os.Getenv("TEST_POSTGRES_USER")
	if user == "" {
		user = "postgres"
	}

	password := os.Getenv("TEST_POSTGRES_PASSWORD")
	if password == "" {
		password = "postgres"
	}

	dbname := os.Getenv("TEST_POSTGRES_DB")
	if dbname == "" {
		dbname = "checkin_test"
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, password, host, port, dbname)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping PostgreSQL: %v", err)
	}

	repo := NewPostgresTicketRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("Failed to apply schema: %v", err)
	}

	if _, err := pool.Exec(ctx, "TRUNCATE tickets"); err != nil {
		t.Fatalf("Failed to clean test data: %v", err)
	}

	return pool
}

func TestPostgresTicketRepository_InsertAndGet(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresTicketRepository(pool)
	ctx := context.Background()

	ticket := domain.NewTicket("TCK-001", "Ada Lovelace", "Illuminate 2026")
	if err := repo.Insert(ctx, ticket); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := repo.Insert(ctx, domain.NewTicket("TCK-001", "Other", "Other")); !errors.Is(err, domain.ErrDuplicateCode) {
		t.Errorf("expected ErrDuplicateCode, got %v", err)
	}

	got, err := repo.GetByCode(ctx, "TCK-001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.AttendeeName != "Ada Lovelace" || got.CheckedInAt != nil {
		t.Errorf("unexpected ticket: %+v", got)
	}

	if _, err := repo.GetByCode(ctx, "TCK-404"); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestPostgresTicketRepository_InsertIfAbsent(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresTicketRepository(pool)
	ctx := context.Background()

	ok, err := repo.InsertIfAbsent(ctx, domain.NewTicket("TCK-001", "Ada", "Illuminate"))
	if err != nil || !ok {
		t.Fatalf("first insert: ok=%v err=%v", ok, err)
	}

	ok, err = repo.InsertIfAbsent(ctx, domain.NewTicket("TCK-001", "Ada", "Illuminate"))
	if err != nil {
		t.Fatalf("duplicate insert errored: %v", err)
	}
	if ok {
		t.Error("duplicate insert reported as inserted")
	}
}

func TestPostgresTicketRepository_CheckIn(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresTicketRepository(pool)
	ctx := context.Background()

	if err := repo.Insert(ctx, domain.NewTicket("TCK-001", "Ada", "Illuminate")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	first := time.Now().UTC().Truncate(time.Microsecond)
	ticket, won, err := repo.CheckIn(ctx, "TCK-001", first)
	if err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	if !won {
		t.Error("first check-in must win")
	}
	if ticket.CheckedInAt == nil || !ticket.CheckedInAt.Equal(first) {
		t.Errorf("expected %v, got %v", first, ticket.CheckedInAt)
	}

	ticket, won, err = repo.CheckIn(ctx, "TCK-001", first.Add(time.Hour))
	if err != nil {
		t.Fatalf("second check-in errored: %v", err)
	}
	if won {
		t.Error("second check-in must lose")
	}
	if !ticket.CheckedInAt.Equal(first) {
		t.Errorf("loser must see original timestamp %v, got %v", first, ticket.CheckedInAt)
	}

	if _, _, err := repo.CheckIn(ctx, "TCK-404", first); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestPostgresTicketRepository_CheckIn_Concurrent(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresTicketRepository(pool)
	ctx := context.Background()

	if err := repo.Insert(ctx, domain.NewTicket("TCK-001", "Ada", "Illuminate")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	const attempts = 20
	var mu sync.Mutex
	wins := 0
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, won, err := repo.CheckIn(ctx, "TCK-001", time.Now().UTC())
			if err != nil {
				t.Errorf("check-in errored: %v", err)
				return
			}
			if won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("expected exactly 1 winner, got %d", wins)
	}
}

func TestPostgresTicketRepository_Stats(t *testing.T) {
	pool := getPostgresPool(t)
	defer pool.Close()

	repo := NewPostgresTicketRepository(pool)
	ctx := context.Background()

	for i, admit := range []bool{true, true, false} {
		code := fmt.Sprintf("TCK-%03d", i)
		if err := repo.Insert(ctx, domain.NewTicket(code, "Attendee", "Illuminate 2026")); err != nil {
			t.Fatal(err)
		}
		if admit {
			if _, _, err := repo.CheckIn(ctx, code, time.Now().UTC()); err != nil {
				t.Fatal(err)
			}
		}
	}

	scan, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if scan.Total != 3 || scan.CheckedIn != 2 {
		t.Errorf("unexpected scan: %+v", scan)
	}
	if scan.CheckedInByEvent["Illuminate 2026"] != 2 {
		t.Errorf("unexpected per-event counts: %+v", scan.CheckedInByEvent)
	}
}

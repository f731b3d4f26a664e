package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rigved526/master-qr-scanner/internal/domain"
)

func TestMemoryTicketRepository_Insert(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	ticket := domain.NewTicket("TCK-001", "Ada Lovelace", "Illuminate 2026")
	if err := repo.Insert(ctx, ticket); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	if err := repo.Insert(ctx, domain.NewTicket("TCK-001", "Someone Else", "Other")); !errors.Is(err, domain.ErrDuplicateCode) {
		t.Errorf("expected ErrDuplicateCode, got %v", err)
	}

	got, err := repo.GetByCode(ctx, "TCK-001")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.AttendeeName != "Ada Lovelace" {
		t.Errorf("duplicate insert must not overwrite, got %q", got.AttendeeName)
	}
}

func TestMemoryTicketRepository_InsertIfAbsent(t *testing.T) {
	repo := NewMemoryTicketRepository()
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

func TestMemoryTicketRepository_GetByCode_NotFound(t *testing.T) {
	repo := NewMemoryTicketRepository()
	if _, err := repo.GetByCode(context.Background(), "TCK-404"); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestMemoryTicketRepository_CheckIn(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, domain.NewTicket("TCK-001", "Ada", "Illuminate")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	first := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	ticket, won, err := repo.CheckIn(ctx, "TCK-001", first)
	if err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	if !won {
		t.Error("first check-in must win")
	}
	if ticket.CheckedInAt == nil || !ticket.CheckedInAt.Equal(first) {
		t.Errorf("expected timestamp %v, got %v", first, ticket.CheckedInAt)
	}

	// Second attempt loses and sees the original timestamp
	second := first.Add(time.Hour)
	ticket, won, err = repo.CheckIn(ctx, "TCK-001", second)
	if err != nil {
		t.Fatalf("second check-in errored: %v", err)
	}
	if won {
		t.Error("second check-in must not win")
	}
	if !ticket.CheckedInAt.Equal(first) {
		t.Errorf("expected original timestamp %v, got %v", first, ticket.CheckedInAt)
	}

	if _, _, err := repo.CheckIn(ctx, "TCK-404", first); !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("expected ErrTicketNotFound, got %v", err)
	}
}

func TestMemoryTicketRepository_CheckIn_Concurrent(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	if err := repo.Insert(ctx, domain.NewTicket("TCK-001", "Ada", "Illuminate")); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	const attempts = 100
	var wins int64
	var mu sync.Mutex
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

func TestMemoryTicketRepository_List_Ordering(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for _, code := range []string{"TCK-001", "TCK-002", "TCK-003"} {
		if err := repo.Insert(ctx, domain.NewTicket(code, "Attendee", "Illuminate")); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	// Admit 001 then 003; 002 stays pending
	if _, _, err := repo.CheckIn(ctx, "TCK-001", base); err != nil {
		t.Fatal(err)
	}
	if _, _, err := repo.CheckIn(ctx, "TCK-003", base.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}

	tickets, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(tickets) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(tickets))
	}

	// Most recently admitted first, pending last
	if tickets[0].Code != "TCK-003" || tickets[1].Code != "TCK-001" || tickets[2].Code != "TCK-002" {
		order := []string{tickets[0].Code, tickets[1].Code, tickets[2].Code}
		t.Errorf("unexpected order: %v", order)
	}
}

func TestMemoryTicketRepository_Stats(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	fixtures := []struct {
		code, event string
		admit       bool
	}{
		{"TCK-001", "Illuminate 2026", true},
		{"TCK-002", "Illuminate 2026", true},
		{"TCK-003", "FINBIZ Summit", true},
		{"TCK-004", "Illuminate 2026", false},
	}
	for _, f := range fixtures {
		if err := repo.Insert(ctx, domain.NewTicket(f.code, "Attendee", f.event)); err != nil {
			t.Fatal(err)
		}
		if f.admit {
			if _, _, err := repo.CheckIn(ctx, f.code, time.Now().UTC()); err != nil {
				t.Fatal(err)
			}
		}
	}

	scan, err := repo.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if scan.Total != 4 || scan.CheckedIn != 3 {
		t.Errorf("unexpected scan: %+v", scan)
	}
	if scan.CheckedInByEvent["Illuminate 2026"] != 2 {
		t.Errorf("expected 2 admitted for Illuminate 2026, got %d", scan.CheckedInByEvent["Illuminate 2026"])
	}
	if scan.CheckedInByEvent["FINBIZ Summit"] != 1 {
		t.Errorf("expected 1 admitted for FINBIZ Summit, got %d", scan.CheckedInByEvent["FINBIZ Summit"])
	}
}

func TestMemoryTicketRepository_CloneIsolation(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	ticket := domain.NewTicket("TCK-001", "Ada", "Illuminate")
	if err := repo.Insert(ctx, ticket); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's copy must not leak into storage
	ticket.AttendeeName = "Mutated"
	got, err := repo.GetByCode(ctx, "TCK-001")
	if err != nil {
		t.Fatal(err)
	}
	if got.AttendeeName != "Ada" {
		t.Errorf("stored ticket mutated externally: %q", got.AttendeeName)
	}

	// Mutating a read result must not leak either
	now := time.Now()
	got.CheckedInAt = &now
	again, err := repo.GetByCode(ctx, "TCK-001")
	if err != nil {
		t.Fatal(err)
	}
	if again.CheckedInAt != nil {
		t.Error("read result mutation leaked into storage")
	}
}

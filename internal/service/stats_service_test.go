package service

import (
	"context"
	"testing"
	"time"

	"github.com/rigved526/master-qr-scanner/internal/bus"
	"github.com/rigved526/master-qr-scanner/internal/domain"
	"github.com/rigved526/master-qr-scanner/internal/repository"
)

var testStatsConfig = &StatsServiceConfig{
	EventIdentifiers: []string{"illuminate", "finbiz"},
}

// waitForSnapshot polls until the predicate holds or the deadline passes.
func waitForSnapshot(t *testing.T, svc *StatsService, ok func(domain.StatsSnapshot) bool) domain.StatsSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snapshot := svc.CurrentSnapshot()
		if ok(snapshot) {
			return snapshot
		}
		if time.Now().After(deadline) {
			t.Fatalf("snapshot never reached expected state, last: %+v", snapshot)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStatsService_RebuildSeedsFromRegistry(t *testing.T) {
	repo := &MockTicketRepository{
		StatsFunc: func(ctx context.Context) (*repository.StatsScan, error) {
			return &repository.StatsScan{
				Total:     100,
				CheckedIn: 40,
				CheckedInByEvent: map[string]int64{
					"Illuminate 2026 - Main": 25,
					"Illuminate Workshop":    5,
					"FINBIZ Summit":          8,
					"Robotics Expo":          2,
				},
			}, nil
		},
	}

	svc := NewStatsService(repo, bus.New(), testStatsConfig)
	if err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	snapshot := svc.CurrentSnapshot()
	if snapshot.Total != 100 || snapshot.CheckedIn != 40 || snapshot.Pending != 60 {
		t.Errorf("unexpected counters: %+v", snapshot)
	}
	if snapshot.PerEvent["illuminate"] != 30 {
		t.Errorf("expected illuminate bucket 30, got %d", snapshot.PerEvent["illuminate"])
	}
	if snapshot.PerEvent["finbiz"] != 8 {
		t.Errorf("expected finbiz bucket 8, got %d", snapshot.PerEvent["finbiz"])
	}
	if snapshot.PerEvent[domain.OtherBucket] != 2 {
		t.Errorf("expected other bucket 2, got %d", snapshot.PerEvent[domain.OtherBucket])
	}
}

func TestStatsService_FoldsBusEvents(t *testing.T) {
	repo := &MockTicketRepository{
		StatsFunc: func(ctx context.Context) (*repository.StatsScan, error) {
			return &repository.StatsScan{
				Total:            10,
				CheckedIn:        0,
				CheckedInByEvent: map[string]int64{},
			}, nil
		},
	}
	eventBus := bus.New()
	defer eventBus.Close()

	svc := NewStatsService(repo, eventBus, testStatsConfig)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer svc.Stop()

	eventBus.Publish(domain.CheckInEvent{
		EventID: "evt-1", Type: domain.CheckInEventAdmitted,
		TicketCode: "TCK-001", EventName: "Illuminate 2026", CheckedInAt: time.Now(),
	})
	eventBus.Publish(domain.CheckInEvent{
		EventID: "evt-2", Type: domain.CheckInEventAdmitted,
		TicketCode: "TCK-002", EventName: "Chess Open", CheckedInAt: time.Now(),
	})

	snapshot := waitForSnapshot(t, svc, func(s domain.StatsSnapshot) bool {
		return s.CheckedIn == 2
	})

	if snapshot.Total != 10 {
		t.Errorf("expected total 10, got %d", snapshot.Total)
	}
	if snapshot.Pending != 8 {
		t.Errorf("expected pending 8, got %d", snapshot.Pending)
	}
	if snapshot.PerEvent["illuminate"] != 1 {
		t.Errorf("expected illuminate bucket 1, got %d", snapshot.PerEvent["illuminate"])
	}
	if snapshot.PerEvent[domain.OtherBucket] != 1 {
		t.Errorf("expected other bucket 1, got %d", snapshot.PerEvent[domain.OtherBucket])
	}
}

func TestStatsService_RegistrationKeepsInvariant(t *testing.T) {
	repo := &MockTicketRepository{
		StatsFunc: func(ctx context.Context) (*repository.StatsScan, error) {
			return &repository.StatsScan{
				Total:            5,
				CheckedIn:        2,
				CheckedInByEvent: map[string]int64{"Illuminate": 2},
			}, nil
		},
	}
	svc := NewStatsService(repo, bus.New(), testStatsConfig)
	if err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	svc.OnTicketRegistered(domain.NewTicket("TCK-NEW", "Ada", "Illuminate"))

	snapshot := svc.CurrentSnapshot()
	if snapshot.Total != 6 {
		t.Errorf("expected total 6, got %d", snapshot.Total)
	}
	if snapshot.Pending != 4 {
		t.Errorf("expected pending 4, got %d", snapshot.Pending)
	}
	if snapshot.CheckedIn+snapshot.Pending != snapshot.Total {
		t.Errorf("invariant broken: %+v", snapshot)
	}
}

// TestStatsService_EndToEnd runs the full pipeline against the memory
// repository: seed registry, start aggregator, drive scans through the
// check-in service, and confirm the counters converge.
func TestStatsService_EndToEnd(t *testing.T) {
	repo := repository.NewMemoryTicketRepository()
	eventBus := bus.New()
	defer eventBus.Close()

	ctx := context.Background()
	for _, fixture := range []struct{ code, event string }{
		{"TCK-001", "Illuminate 2026"},
		{"TCK-002", "Illuminate 2026"},
		{"TCK-003", "FINBIZ Summit"},
	} {
		if err := repo.Insert(ctx, domain.NewTicket(fixture.code, "Attendee", fixture.event)); err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	stats := NewStatsService(repo, eventBus, testStatsConfig)
	if err := stats.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer stats.Stop()

	checkin := NewCheckInService(repo, eventBus)
	for _, code := range []string{"TCK-001", "TCK-003", "TCK-404"} {
		if _, err := checkin.AttemptCheckIn(ctx, code, time.Now().UTC()); err != nil {
			t.Fatalf("scan %s failed: %v", code, err)
		}
	}

	snapshot := waitForSnapshot(t, stats, func(s domain.StatsSnapshot) bool {
		return s.CheckedIn == 2
	})

	if snapshot.Total != 3 || snapshot.Pending != 1 {
		t.Errorf("unexpected counters: %+v", snapshot)
	}
	if snapshot.PerEvent["illuminate"] != 1 || snapshot.PerEvent["finbiz"] != 1 {
		t.Errorf("unexpected buckets: %+v", snapshot.PerEvent)
	}
}

func TestStatsService_StartTwiceFails(t *testing.T) {
	svc := NewStatsService(&MockTicketRepository{}, bus.New(), testStatsConfig)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	defer svc.Stop()

	if err := svc.Start(context.Background()); err == nil {
		t.Error("expected second start to fail")
	}
}

func TestStatsService_SnapshotIsCopy(t *testing.T) {
	svc := NewStatsService(&MockTicketRepository{
		StatsFunc: func(ctx context.Context) (*repository.StatsScan, error) {
			return &repository.StatsScan{
				Total: 1, CheckedIn: 1,
				CheckedInByEvent: map[string]int64{"Illuminate": 1},
			}, nil
		},
	}, bus.New(), testStatsConfig)
	if err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	snapshot := svc.CurrentSnapshot()
	snapshot.PerEvent["illuminate"] = 999

	if svc.CurrentSnapshot().PerEvent["illuminate"] != 1 {
		t.Error("mutating a returned snapshot must not affect the live one")
	}
}

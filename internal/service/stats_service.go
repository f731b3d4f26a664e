package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rigved526/master-qr-scanner/internal/bus"
	"github.com/rigved526/master-qr-scanner/internal/domain"
	"github.com/rigved526/master-qr-scanner/internal/repository"
)

// StatsService is the aggregator: it owns the live counters derived from
// the registry and the check-in stream. It holds no source of truth; the
// snapshot is rebuildable from the registry at any time.
type StatsService struct {
	ticketRepo  repository.TicketRepository
	eventBus    *bus.CheckInBus
	identifiers []string

	mu       sync.RWMutex
	snapshot domain.StatsSnapshot

	cancel  func()
	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	runMu   sync.Mutex
}

// StatsServiceConfig contains configuration for the aggregator.
type StatsServiceConfig struct {
	// EventIdentifiers drive per-event bucket classification
	// (case-insensitive substring match, "other" fallback).
	EventIdentifiers []string
}

// NewStatsService creates a new aggregator.
func NewStatsService(ticketRepo repository.TicketRepository, eventBus *bus.CheckInBus, cfg *StatsServiceConfig) *StatsService {
	var identifiers []string
	if cfg != nil {
		identifiers = cfg.EventIdentifiers
	}
	return &StatsService{
		ticketRepo:  ticketRepo,
		eventBus:    eventBus,
		identifiers: identifiers,
		snapshot:    domain.StatsSnapshot{PerEvent: make(map[string]int64)},
		stopCh:      make(chan struct{}),
	}
}

// Start seeds the snapshot from a registry scan and then folds bus events
// into it. It must run before the server accepts scans so no event can fall
// between the scan and the subscription.
func (s *StatsService) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.running {
		return fmt.Errorf("stats service already running")
	}

	if err := s.Rebuild(ctx); err != nil {
		return err
	}

	events, cancel := s.eventBus.Subscribe()
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.consume(ctx, events)

	return nil
}

// Stop detaches from the bus and waits for the fold loop to exit.
func (s *StatsService) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if !s.running {
		return
	}
	s.running = false

	close(s.stopCh)
	s.cancel()
	s.wg.Wait()
}

func (s *StatsService) consume(ctx context.Context, events <-chan domain.CheckInEvent) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			s.apply(event)
		}
	}
}

// apply folds one check-in event into the counters. The state machine
// guarantees at most one event per ticket, so incrementing here never
// double-counts.
func (s *StatsService) apply(event domain.CheckInEvent) {
	bucket := domain.EventBucket(event.EventName, s.identifiers)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.CheckedIn++
	s.snapshot.Pending--
	s.snapshot.PerEvent[bucket]++
}

// OnTicketRegistered tracks registrations made after startup so that
// checked_in + pending == total keeps holding.
func (s *StatsService) OnTicketRegistered(ticket *domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Total++
	s.snapshot.Pending++
}

// CurrentSnapshot returns a copy of the live counters.
func (s *StatsService) CurrentSnapshot() domain.StatsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.snapshot
	snapshot.PerEvent = make(map[string]int64, len(s.snapshot.PerEvent))
	for bucket, count := range s.snapshot.PerEvent {
		snapshot.PerEvent[bucket] = count
	}
	return snapshot
}

// Rebuild re-derives the snapshot from a full registry scan, folding raw
// per-event-name counts into buckets.
func (s *StatsService) Rebuild(ctx context.Context) error {
	scan, err := s.ticketRepo.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed stats from registry: %w", err)
	}

	perEvent := make(map[string]int64)
	for eventName, count := range scan.CheckedInByEvent {
		perEvent[domain.EventBucket(eventName, s.identifiers)] += count
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = domain.StatsSnapshot{
		Total:     scan.Total,
		CheckedIn: scan.CheckedIn,
		Pending:   scan.Total - scan.CheckedIn,
		PerEvent:  perEvent,
	}
	return nil
}

// Bucket exposes the classification for handlers that render verdict
// display hints.
func (s *StatsService) Bucket(eventName string) string {
	return domain.EventBucket(eventName, s.identifiers)
}

// Ensure StatsService observes registrations
var _ RegistrationObserver = (*StatsService)(nil)

package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rigved526/master-qr-scanner/internal/bus"
	"github.com/rigved526/master-qr-scanner/internal/domain"
	"github.com/rigved526/master-qr-scanner/internal/service"
	"github.com/rigved526/master-qr-scanner/pkg/logger"
	"github.com/rigved526/master-qr-scanner/pkg/retry"
)

// RelayWorkerConfig contains configuration for the relay worker.
type RelayWorkerConfig struct {
	// PublishTimeout bounds each external publish, retries included, so a
	// slow broker cannot back up the bus subscription
	PublishTimeout time.Duration

	// Retry drives backoff for transient publish failures
	Retry *retry.Config
}

// DefaultRelayWorkerConfig returns default configuration.
func DefaultRelayWorkerConfig() *RelayWorkerConfig {
	return &RelayWorkerConfig{
		PublishTimeout: 5 * time.Second,
		Retry:          retry.DefaultConfig(),
	}
}

// RelayWorker subscribes to the in-process bus and mirrors every check-in
// event to the external publisher. Delivery outward is best-effort; the
// local bus remains authoritative for live dashboards.
type RelayWorker struct {
	eventBus  *bus.CheckInBus
	publisher service.EventPublisher
	config    *RelayWorkerConfig
	retrier   *retry.Retrier
	log       *logger.Logger
	cancel    func()
	stopCh    chan struct{}
	wg        sync.WaitGroup
	mu        sync.Mutex
	running   bool
}

// NewRelayWorker creates a new relay worker.
func NewRelayWorker(eventBus *bus.CheckInBus, publisher service.EventPublisher, config *RelayWorkerConfig) *RelayWorker {
	if config == nil {
		config = DefaultRelayWorkerConfig()
	}

	return &RelayWorker{
		eventBus:  eventBus,
		publisher: publisher,
		config:    config,
		retrier:   retry.New(config.Retry),
		log:       logger.Get(),
		stopCh:    make(chan struct{}),
	}
}

// Start starts the relay worker.
func (w *RelayWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("relay worker already running")
	}
	w.running = true
	w.mu.Unlock()

	events, cancel := w.eventBus.Subscribe()
	w.cancel = cancel

	w.log.Info("Starting check-in relay worker")

	w.wg.Add(1)
	go w.relay(ctx, events)

	return nil
}

// Stop stops the relay worker.
func (w *RelayWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	w.log.Info("Stopping check-in relay worker")
	close(w.stopCh)
	w.cancel()
	w.wg.Wait()
	w.log.Info("Check-in relay worker stopped")
}

func (w *RelayWorker) relay(ctx context.Context, events <-chan domain.CheckInEvent) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-events:
			if !ok {
				// Evicted for falling behind; nothing to resume from, the
				// external stream is best-effort.
				w.log.Warn("Relay worker evicted from bus")
				return
			}
			w.publish(ctx, event)
		}
	}
}

func (w *RelayWorker) publish(ctx context.Context, event domain.CheckInEvent) {
	pubCtx, cancel := context.WithTimeout(ctx, w.config.PublishTimeout)
	defer cancel()

	err := w.retrier.Do(pubCtx, func(ctx context.Context) error {
		return w.publisher.PublishCheckIn(ctx, &event)
	})
	if err != nil {
		// Best-effort: the registry remains the source of truth, so a
		// dropped mirror event is reconcilable downstream
		w.log.Error(fmt.Sprintf("Failed to relay check-in event %s: %v", event.EventID, err))
	}
}

// Package bus provides the in-process fan-out of check-in events to live
// subscribers (the aggregator, dashboard streams, the Kafka relay).
// Delivery is at-least-once and ordered per publisher; subscribers never
// block publishers.
package bus

import (
	"sync"

	"github.com/rigved526/master-qr-scanner/internal/domain"
)

// DefaultSubscriberBuffer is the per-subscriber channel capacity. A
// subscriber that falls this far behind is evicted and must resubscribe,
// re-bootstrapping from an aggregator snapshot.
const DefaultSubscriberBuffer = 256

// CheckInBus fans out CheckInEvents to all current subscribers.
type CheckInBus struct {
	mu      sync.Mutex
	subs    map[int]chan domain.CheckInEvent
	nextID  int
	buffer  int
	closed  bool
	dropped int64
}

// New creates a bus with the default per-subscriber buffer.
func New() *CheckInBus {
	return NewWithBuffer(DefaultSubscriberBuffer)
}

// NewWithBuffer creates a bus with a custom per-subscriber buffer.
func NewWithBuffer(buffer int) *CheckInBus {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &CheckInBus{
		subs:   make(map[int]chan domain.CheckInEvent),
		buffer: buffer,
	}
}

// Publish delivers the event to every current subscriber. A subscriber
// whose buffer is full is evicted rather than letting the publish block:
// the publisher here sits on the scan hot path.
func (b *CheckInBus) Publish(event domain.CheckInEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	for id, ch := range b.subs {
		select {
		case ch <- event:
		default:
			delete(b.subs, id)
			close(ch)
			b.dropped++
		}
	}
}

// Subscribe registers a new subscriber and returns its event channel plus a
// cancel function. The channel receives only events published after the
// subscription; earlier state must come from an aggregator snapshot. The
// channel is closed on cancel, bus close, or eviction.
func (b *CheckInBus) Subscribe() (<-chan domain.CheckInEvent, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan domain.CheckInEvent, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// SubscriberCount returns the number of live subscribers.
func (b *CheckInBus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Evicted returns how many subscribers have been dropped for falling
// behind.
func (b *CheckInBus) Evicted() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close shuts down the bus and closes all subscriber channels.
func (b *CheckInBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

package bus

import (
	"fmt"
	"testing"
	"time"

	"github.com/rigved526/master-qr-scanner/internal/domain"
)

func testEvent(code string) domain.CheckInEvent {
	return domain.CheckInEvent{
		EventID:    "evt-" + code,
		Type:       domain.CheckInEventAdmitted,
		TicketCode: code,
	}
}

func TestCheckInBus_PublishFanOut(t *testing.T) {
	b := New()
	defer b.Close()

	sub1, cancel1 := b.Subscribe()
	defer cancel1()
	sub2, cancel2 := b.Subscribe()
	defer cancel2()

	if got := b.SubscriberCount(); got != 2 {
		t.Fatalf("expected 2 subscribers, got %d", got)
	}

	b.Publish(testEvent("TCK-001"))

	for i, sub := range []<-chan domain.CheckInEvent{sub1, sub2} {
		select {
		case event := <-sub:
			if event.TicketCode != "TCK-001" {
				t.Errorf("subscriber %d: expected TCK-001, got %s", i, event.TicketCode)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: timed out waiting for event", i)
		}
	}
}

func TestCheckInBus_OrderPreserved(t *testing.T) {
	b := New()
	defer b.Close()

	sub, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < 10; i++ {
		b.Publish(testEvent(fmt.Sprintf("TCK-%03d", i)))
	}

	for i := 0; i < 10; i++ {
		event := <-sub
		want := fmt.Sprintf("TCK-%03d", i)
		if event.TicketCode != want {
			t.Fatalf("event %d: expected %s, got %s", i, want, event.TicketCode)
		}
	}
}

func TestCheckInBus_SlowSubscriberEvicted(t *testing.T) {
	b := NewWithBuffer(2)
	defer b.Close()

	slow, cancel := b.Subscribe()
	defer cancel()

	// Fill the buffer without draining, then overflow it
	b.Publish(testEvent("TCK-001"))
	b.Publish(testEvent("TCK-002"))
	b.Publish(testEvent("TCK-003"))

	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("expected slow subscriber to be evicted, %d still subscribed", got)
	}
	if got := b.Evicted(); got != 1 {
		t.Errorf("expected 1 eviction, got %d", got)
	}

	// Buffered events remain readable, then the closed channel signals
	// the eviction
	<-slow
	<-slow
	if _, ok := <-slow; ok {
		t.Error("expected evicted subscriber channel to be closed")
	}
}

func TestCheckInBus_EvictionDoesNotAffectOthers(t *testing.T) {
	b := NewWithBuffer(1)
	defer b.Close()

	_, cancelSlow := b.Subscribe()
	defer cancelSlow()
	fast, cancelFast := b.Subscribe()
	defer cancelFast()

	b.Publish(testEvent("TCK-001"))
	<-fast
	b.Publish(testEvent("TCK-002"))

	select {
	case event := <-fast:
		if event.TicketCode != "TCK-002" {
			t.Errorf("expected TCK-002, got %s", event.TicketCode)
		}
	case <-time.After(time.Second):
		t.Fatal("fast subscriber should keep receiving after slow one is evicted")
	}

	if got := b.SubscriberCount(); got != 1 {
		t.Errorf("expected 1 remaining subscriber, got %d", got)
	}
}

func TestCheckInBus_Cancel(t *testing.T) {
	b := New()
	defer b.Close()

	sub, cancel := b.Subscribe()
	cancel()

	if got := b.SubscriberCount(); got != 0 {
		t.Errorf("expected 0 subscribers after cancel, got %d", got)
	}
	if _, ok := <-sub; ok {
		t.Error("expected channel to be closed after cancel")
	}

	// Cancel twice is safe
	cancel()
}

func TestCheckInBus_Close(t *testing.T) {
	b := New()

	sub, cancel := b.Subscribe()
	defer cancel()

	b.Close()

	if _, ok := <-sub; ok {
		t.Error("expected channel to be closed after bus close")
	}

	// Publish and Subscribe after close are no-ops
	b.Publish(testEvent("TCK-001"))
	late, _ := b.Subscribe()
	if _, ok := <-late; ok {
		t.Error("expected closed channel for post-close subscription")
	}
}

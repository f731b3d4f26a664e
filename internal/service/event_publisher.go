package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rigved526/master-qr-scanner/internal/domain"
	"github.com/rigved526/master-qr-scanner/pkg/kafka"
)

// EventPublisher mirrors check-in events to an external stream so stat
// displays outside this process can follow along. The in-process bus stays
// the source for local subscribers; this is a best-effort relay.
type EventPublisher interface {
	// PublishCheckIn publishes an admitted check-in event
	PublishCheckIn(ctx context.Context, event *domain.CheckInEvent) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka.
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher.
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher.
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "checkin-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "checkin-service"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "checkin-service-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishCheckIn publishes an admitted check-in event to Kafka, keyed by
// ticket code.
func (p *KafkaEventPublisher) PublishCheckIn(ctx context.Context, event *domain.CheckInEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(event.Type),
		"event_id":     event.EventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: event.CheckedInAt,
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	return nil
}

// Close closes the event publisher.
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher, used when
// Kafka is unreachable or disabled.
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher.
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishCheckIn is a no-op.
func (p *NoOpEventPublisher) PublishCheckIn(ctx context.Context, event *domain.CheckInEvent) error {
	return nil
}

// Close is a no-op.
func (p *NoOpEventPublisher) Close() error {
	return nil
}

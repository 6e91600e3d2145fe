package repository

import (
	"context"

	"CandleScan/internal/domain/models"
	"CandleScan/pkg/kafka"
)

// Producer is the subset of *kafka.Producer the publisher needs.
type Producer interface {
	PublishBatch(ctx context.Context, topic string, messages []kafka.Message) error
	Close() error
}

var _ Producer = (*kafka.Producer)(nil)

// KafkaEventPublisher emits one message per refreshed symbol, keyed by symbol.
// A run's events go out in a single write.
type KafkaEventPublisher struct {
	producer Producer
	topic    string
}

func NewKafkaEventPublisher(p Producer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: p, topic: topic}
}

func (p *KafkaEventPublisher) PublishSnapshots(ctx context.Context, events []models.SnapshotEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, len(events))
	for i, evt := range events {
		msgs[i] = kafka.Message{Key: []byte(evt.Symbol), Value: evt}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaEventPublisher) Close() error { return p.producer.Close() }

// NoopEventPublisher is used when no brokers are configured.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishSnapshots(context.Context, []models.SnapshotEvent) error { return nil }
func (NoopEventPublisher) Close() error                                                   { return nil }

package repository

import (
	"context"
	"fmt"

	"RateBot/internal/domain/models"
)

// EventPublisher is the Kafka producer surface the sink needs.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
}

// KafkaRunEventSink publishes run events keyed by sender, so one user's runs
// stay ordered within a partition.
type KafkaRunEventSink struct {
	producer EventPublisher
	topic    string
}

func NewKafkaRunEventSink(producer EventPublisher, topic string) *KafkaRunEventSink {
	return &KafkaRunEventSink{producer: producer, topic: topic}
}

func (s *KafkaRunEventSink) Emit(ctx context.Context, ev models.RunEvent) error {
	if err := s.producer.Publish(ctx, s.topic, []byte(ev.SenderID), ev); err != nil {
		return fmt.Errorf("emit run event %s: %w", ev.RunID, err)
	}
	return nil
}

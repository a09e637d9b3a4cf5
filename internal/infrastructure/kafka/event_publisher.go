package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bibbank/decision-engine/internal/domain/event"
	pkgkafka "github.com/bibbank/decision-engine/pkg/kafka"
)

// MessageWriter is the subset of pkg/kafka.Producer used by the adapters.
type MessageWriter interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// EventPublisher implements port.EventPublisher by writing events to Kafka.
type EventPublisher struct {
	writer MessageWriter
	topic  string
	logger *slog.Logger
}

// NewEventPublisher creates a publisher targeting the given writer and topic.
func NewEventPublisher(writer MessageWriter, topic string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

// Publish serialises and sends domain events, keyed by loan ID so that all
// events for one loan land on the same partition.
func (p *EventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(events))
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"topic", p.topic,
			"payload_size", len(payload),
		)

		messages = append(messages, pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type": evt.EventType(),
				"event_id":   evt.EventID(),
			},
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.writer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}

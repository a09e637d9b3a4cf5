package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bibbank/decision-engine/internal/domain/port"
	pkgkafka "github.com/bibbank/decision-engine/pkg/kafka"
)

// AuditMessage is the wire form of an audit entry on the audit topic.
type AuditMessage struct {
	ID       string         `json:"id"`
	ActorID  string         `json:"actor_id"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entity_id"`
	Metadata map[string]any `json:"meta"`
	At       time.Time      `json:"created_at"`
}

// Entry converts the message back into a port.AuditEntry.
func (m AuditMessage) Entry() port.AuditEntry {
	return port.AuditEntry{
		ID:       m.ID,
		ActorID:  m.ActorID,
		Action:   m.Action,
		Entity:   m.Entity,
		EntityID: m.EntityID,
		Metadata: m.Metadata,
		At:       m.At,
	}
}

// AuditSink implements port.AuditSink by publishing entries to Kafka.
type AuditSink struct {
	writer MessageWriter
	topic  string
}

func NewAuditSink(writer MessageWriter, topic string) *AuditSink {
	return &AuditSink{writer: writer, topic: topic}
}

func (s *AuditSink) Record(ctx context.Context, entry port.AuditEntry) error {
	payload, err := json.Marshal(AuditMessage{
		ID:       entry.ID,
		ActorID:  entry.ActorID,
		Action:   entry.Action,
		Entity:   entry.Entity,
		EntityID: entry.EntityID,
		Metadata: entry.Metadata,
		At:       entry.At.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	msg := pkgkafka.Message{
		Key:   []byte(entry.EntityID),
		Value: payload,
		Headers: map[string]string{
			"action":   entry.Action,
			"audit_id": entry.ID,
		},
	}
	if err := s.writer.Publish(ctx, s.topic, msg); err != nil {
		return fmt.Errorf("publish audit entry: %w", err)
	}
	return nil
}

// DecodeAuditMessage parses a consumed audit message.
func DecodeAuditMessage(msg pkgkafka.Message) (port.AuditEntry, error) {
	var m AuditMessage
	if err := json.Unmarshal(msg.Value, &m); err != nil {
		return port.AuditEntry{}, fmt.Errorf("decode audit message: %w", err)
	}
	if m.ID == "" {
		return port.AuditEntry{}, fmt.Errorf("decode audit message: missing id")
	}
	return m.Entry(), nil
}

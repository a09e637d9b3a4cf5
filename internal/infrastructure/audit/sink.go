package audit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bibbank/decision-engine/internal/domain/port"
)

// FanOut records each entry to every sink. All sinks are attempted; their
// failures are joined.
type FanOut struct {
	sinks []port.AuditSink
}

func NewFanOut(sinks ...port.AuditSink) *FanOut {
	return &FanOut{sinks: sinks}
}

func (f *FanOut) Record(ctx context.Context, entry port.AuditEntry) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Record(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes audit entries to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("component", "audit")}
}

func (s *LogSink) Record(ctx context.Context, entry port.AuditEntry) error {
	s.logger.InfoContext(ctx, "audit",
		"audit_id", entry.ID,
		"actor_id", entry.ActorID,
		"action", entry.Action,
		"entity", entry.Entity,
		"entity_id", entry.EntityID,
		"meta", entry.Metadata,
		"at", entry.At,
	)
	return nil
}

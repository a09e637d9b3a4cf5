package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bibbank/decision-engine/internal/domain/port"
	pkgpostgres "github.com/bibbank/decision-engine/pkg/postgres"
)

// AuditLogRepo implements port.AuditSink by writing to audit_logs.
type AuditLogRepo struct {
	db pkgpostgres.Querier
}

// NewAuditLogRepo creates a new repository backed by PostgreSQL.
func NewAuditLogRepo(db pkgpostgres.Querier) *AuditLogRepo {
	return &AuditLogRepo{db: db}
}

// Record inserts the entry. A redelivered entry with a known ID is ignored.
func (r *AuditLogRepo) Record(ctx context.Context, entry port.AuditEntry) error {
	meta := entry.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}

	query := `
		INSERT INTO audit_logs (id, actor, action, entity, entity_id, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query,
		entry.ID, entry.ActorID, entry.Action, entry.Entity, entry.EntityID, payload, entry.At,
	); err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

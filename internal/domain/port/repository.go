package port

import (
	"context"
	"errors"
	"time"

	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/valueobject"
	"github.com/bibbank/decision-engine/pkg/events"
)

// ErrStatusConflict is returned by LoanRepository.UpdateStatus when the loan
// is no longer in the expected status.
var ErrStatusConflict = errors.New("loan status changed concurrently")

// ErrLoanNotFound is returned when no loan exists for an ID.
var ErrLoanNotFound = errors.New("loan not found")

// ---------------------------------------------------------------------------
// Repository ports
// ---------------------------------------------------------------------------

// LoanRepository reads loan applications and performs conditional status
// transitions.
type LoanRepository interface {
	FindByID(ctx context.Context, id string) (model.LoanRecord, error)
	// UpdateStatus moves the loan to next only if its current status equals
	// expected; otherwise it returns ErrStatusConflict.
	UpdateStatus(ctx context.Context, id string, next, expected valueobject.LoanStatus, at time.Time) error
}

// DecisionRepository persists decision records.
type DecisionRepository interface {
	Insert(ctx context.Context, record model.DecisionRecord) (model.DecisionRecord, error)
	// FindRecent returns the newest decision for loanID with inputHash created
	// at or after since, or nil when none exists.
	FindRecent(ctx context.Context, loanID, inputHash string, since time.Time) (*model.DecisionRecord, error)
	ListByLoan(ctx context.Context, loanID string) ([]model.DecisionRecord, error)
	// Delete removes a record. Used only to compensate a failed transition.
	Delete(ctx context.Context, id string) error
}

// ---------------------------------------------------------------------------
// Collaborator ports
// ---------------------------------------------------------------------------

// Authorizer decides whether an actor may act on a loan.
type Authorizer interface {
	IsOwnerOrAdmin(ctx context.Context, loan model.LoanRecord, actorID string) (bool, error)
}

// RoleDirectory resolves the roles held by an actor.
type RoleDirectory interface {
	RolesOf(ctx context.Context, actorID string) ([]string, error)
}

// AuditEntry is a single audit log line. ID makes redelivery idempotent.
type AuditEntry struct {
	ID       string
	ActorID  string
	Action   string
	Entity   string
	EntityID string
	Metadata map[string]any
	At       time.Time
}

// AuditSink records audit entries. It is best-effort: callers log failures
// and carry on.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// EventPublisher publishes domain events to the broker.
type EventPublisher = events.Publisher

// RateLimiter bounds request volume per key.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// DecisionMetrics records decision outcomes for monitoring.
type DecisionMetrics interface {
	RecordDecision(ctx context.Context, model, decision string, score float64, cached bool)
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/decision-engine/internal/application/dto"
	"github.com/bibbank/decision-engine/internal/domain/event"
	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/port"
	"github.com/bibbank/decision-engine/internal/domain/service"
)

const (
	// DefaultMinDecisionInterval is the idempotency window for identical
	// decision requests.
	DefaultMinDecisionInterval = 60 * time.Second

	// DefaultSideEffectTimeout bounds audit and event publishing after a
	// decision is committed.
	DefaultSideEffectTimeout = 3 * time.Second

	auditActionDecisionCreate = "decision.create"
	auditEntityLoan           = "loan"
	auditReasonCount          = 2
)

// DecideLoanConfig tunes the orchestrator.
type DecideLoanConfig struct {
	MinInterval time.Duration
	// SideEffectTimeout caps audit and event publishing together.
	SideEffectTimeout time.Duration
	// Now overrides the clock; nil uses time.Now.
	Now func() time.Time
}

// DecideLoanUseCase runs the full decision protocol for a stored loan:
// authorization, idempotency, scoring, persistence with compensation and
// best-effort audit.
type DecideLoanUseCase struct {
	loans       port.LoanRepository
	decisions   port.DecisionRepository
	authz       port.Authorizer
	scorer      service.Scorer
	audit       port.AuditSink
	publisher   port.EventPublisher
	metrics     port.DecisionMetrics
	logger      *slog.Logger
	minInterval time.Duration
	sideEffects time.Duration
	now         func() time.Time
}

// NewDecideLoanUseCase wires dependencies.
func NewDecideLoanUseCase(
	loans port.LoanRepository,
	decisions port.DecisionRepository,
	authz port.Authorizer,
	scorer service.Scorer,
	audit port.AuditSink,
	publisher port.EventPublisher,
	metrics port.DecisionMetrics,
	logger *slog.Logger,
	cfg DecideLoanConfig,
) *DecideLoanUseCase {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinDecisionInterval
	}
	if cfg.SideEffectTimeout <= 0 {
		cfg.SideEffectTimeout = DefaultSideEffectTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &DecideLoanUseCase{
		loans:       loans,
		decisions:   decisions,
		authz:       authz,
		scorer:      scorer,
		audit:       audit,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
		minInterval: cfg.MinInterval,
		sideEffects: cfg.SideEffectTimeout,
		now:         cfg.Now,
	}
}

// Execute decides the loan identified by req.LoanID on behalf of req.ActorID.
func (uc *DecideLoanUseCase) Execute(
	ctx context.Context,
	req dto.DecideLoanRequest,
) (dto.DecideLoanResponse, error) {
	ctx, span := tracer.Start(ctx, "DecideLoan", trace.WithAttributes(
		attribute.String("loan.id", req.LoanID),
		attribute.String("scoring.model", uc.scorer.Model().String()),
	))
	defer span.End()

	resp, err := uc.execute(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return resp, err
	}
	span.SetAttributes(
		attribute.String("decision", resp.Decision),
		attribute.Bool("cached", resp.Cached),
	)
	return resp, nil
}

func (uc *DecideLoanUseCase) execute(ctx context.Context, req dto.DecideLoanRequest) (dto.DecideLoanResponse, error) {
	// 1. Fetch the loan.
	loan, err := uc.loans.FindByID(ctx, req.LoanID)
	if err != nil {
		if errors.Is(err, port.ErrLoanNotFound) {
			return dto.DecideLoanResponse{}, &model.DomainError{Kind: model.ErrNotFound, Err: err}
		}
		return dto.DecideLoanResponse{}, fmt.Errorf("find loan: %w", err)
	}

	// 2. Authorize: owner or administrator.
	allowed, err := uc.authz.IsOwnerOrAdmin(ctx, loan, req.ActorID)
	if err != nil {
		return dto.DecideLoanResponse{}, fmt.Errorf("authorize actor: %w", err)
	}
	if !allowed {
		return dto.DecideLoanResponse{}, &model.DomainError{Kind: model.ErrAccessDenied}
	}

	// 3. Terminal loans cannot be decided again.
	if loan.Status().IsTerminal() {
		return dto.DecideLoanResponse{}, &model.DomainError{
			Kind:    model.ErrAlreadyDecided,
			Message: fmt.Sprintf("loan is %s", loan.Status()),
		}
	}

	// 4. Extract features and fingerprint them.
	features, err := service.ExtractFeatures(loan.Features())
	if err != nil {
		return dto.DecideLoanResponse{}, err
	}
	inputHash, err := service.InputHash(features)
	if err != nil {
		return dto.DecideLoanResponse{}, fmt.Errorf("hash features: %w", err)
	}

	// 5. Idempotency window.
	now := uc.now().UTC()
	recent, err := uc.decisions.FindRecent(ctx, loan.ID(), inputHash, now.Add(-uc.minInterval))
	if err != nil {
		return dto.DecideLoanResponse{}, fmt.Errorf("find recent decision: %w", err)
	}
	if recent != nil {
		uc.logger.InfoContext(ctx, "returning cached decision",
			"loan_id", loan.ID(), "decision_id", recent.ID(), "input_hash", inputHash)
		uc.metrics.RecordDecision(ctx, uc.scorer.Model().String(), recent.Decision().String(), recent.Score(), true)
		return toDecideResponse(*recent, loan.ID(), loan.Status().String(), true), nil
	}

	// 6. Business-rule validation.
	if err := service.ValidateFeaturesForScoring(features); err != nil {
		return dto.DecideLoanResponse{}, err
	}

	// 7. Score.
	result, err := runScorer(uc.scorer, features)
	if err != nil {
		uc.logger.ErrorContext(ctx, "scoring failed", "loan_id", loan.ID(), "error", err)
		return dto.DecideLoanResponse{}, err
	}

	// 8. Persist the decision, then transition the loan.
	record, err := model.NewDecisionRecord(loan.ID(), result, inputHash, now)
	if err != nil {
		return dto.DecideLoanResponse{}, model.NewPersistenceError("build decision record", err)
	}
	record, err = uc.decisions.Insert(ctx, record)
	if err != nil {
		return dto.DecideLoanResponse{}, model.NewPersistenceError("insert decision", err)
	}

	decided, err := loan.ApplyDecision(result.Decision, now)
	if err != nil {
		uc.compensate(ctx, record)
		return dto.DecideLoanResponse{}, model.NewPersistenceError("apply decision", err)
	}
	if err := uc.loans.UpdateStatus(ctx, loan.ID(), decided.Status(), loan.Status(), now); err != nil {
		uc.compensate(ctx, record)
		if errors.Is(err, port.ErrStatusConflict) {
			return uc.resolveConflict(ctx, loan.ID(), inputHash, now, err)
		}
		return dto.DecideLoanResponse{}, model.NewPersistenceError("update loan status", err)
	}

	uc.logger.InfoContext(ctx, "loan decided",
		"loan_id", loan.ID(),
		"actor_id", req.ActorID,
		"decision", result.Decision.String(),
		"score", result.Score,
		"model", result.Model.String(),
		"input_hash", inputHash,
	)
	uc.metrics.RecordDecision(ctx, result.Model.String(), result.Decision.String(), result.Score, false)

	// 9. Audit and events. Failures never undo the decision.
	uc.record(ctx, req.ActorID, record, decided)

	return toDecideResponse(record, loan.ID(), decided.Status().String(), false), nil
}

// compensate removes a decision record whose loan transition failed.
func (uc *DecideLoanUseCase) compensate(ctx context.Context, record model.DecisionRecord) {
	if err := uc.decisions.Delete(ctx, record.ID()); err != nil {
		uc.logger.ErrorContext(ctx, "failed to roll back decision record",
			"decision_id", record.ID(), "loan_id", record.LoanID(), "error", err)
	}
}

// resolveConflict handles a lost race on the status transition: a concurrent
// request with the same inputs is served its winner's record, anything else
// surfaces as a conflict.
func (uc *DecideLoanUseCase) resolveConflict(
	ctx context.Context,
	loanID, inputHash string,
	now time.Time,
	cause error,
) (dto.DecideLoanResponse, error) {
	winner, err := uc.decisions.FindRecent(ctx, loanID, inputHash, now.Add(-uc.minInterval))
	if err != nil || winner == nil {
		uc.logger.WarnContext(ctx, "concurrent decision conflict", "loan_id", loanID, "error", cause)
		return dto.DecideLoanResponse{}, &model.DomainError{Kind: model.ErrConflict, Err: cause}
	}
	status := winner.Decision().LoanStatus().String()
	return toDecideResponse(*winner, loanID, status, true), nil
}

// record runs detached from request cancellation but within the side-effect
// budget, so a slow broker delays the response by at most that long.
func (uc *DecideLoanUseCase) record(reqCtx context.Context, actorID string, rec model.DecisionRecord, loan model.LoanRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(reqCtx), uc.sideEffects)
	defer cancel()

	err := uc.audit.Record(ctx, port.AuditEntry{
		ID:       uuid.New().String(),
		ActorID:  actorID,
		Action:   auditActionDecisionCreate,
		Entity:   auditEntityLoan,
		EntityID: rec.LoanID(),
		Metadata: map[string]any{
			"decision":   rec.Decision().String(),
			"score":      rec.Score(),
			"reasons":    rec.TopReasons(auditReasonCount),
			"input_hash": rec.InputHash(),
		},
		At: rec.CreatedAt(),
	})
	if err != nil {
		uc.logger.WarnContext(ctx, "failed to record audit entry", "loan_id", rec.LoanID(), "error", err)
	}

	evts := append([]event.DomainEvent{
		event.NewDecisionMade(rec.LoanID(), rec.ID(), actorID, rec.Decision().String(),
			rec.Score(), rec.TopReasons(auditReasonCount), rec.InputHash(), rec.CreatedAt()),
	}, loan.DomainEvents()...)
	if err := uc.publisher.Publish(ctx, evts...); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish decision events", "loan_id", rec.LoanID(), "error", err)
	}
}

func toDecideResponse(rec model.DecisionRecord, loanID, loanStatus string, cached bool) dto.DecideLoanResponse {
	return dto.DecideLoanResponse{
		DecisionID: rec.ID(),
		Decision:   rec.Decision().String(),
		Score:      rec.Score(),
		Reasons:    rec.Reasons(),
		Loan:       dto.LoanSummary{ID: loanID, Status: loanStatus},
		Cached:     cached,
		Timestamp:  rec.CreatedAt(),
	}
}

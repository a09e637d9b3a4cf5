package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/decision-engine/internal/application/dto"
	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/pkg/auth"
)

// DecideLoanRequest identifies the loan to decide. The actor comes from the
// authenticated token, never from the message.
type DecideLoanRequest struct {
	LoanID string `json:"loan_id"`
}

// ListDecisionsRequest identifies a loan whose history is read.
type ListDecisionsRequest struct {
	LoanID string `json:"loan_id"`
}

type (
	LoanDecider interface {
		Execute(ctx context.Context, req dto.DecideLoanRequest) (dto.DecideLoanResponse, error)
	}
	ApplicationScorer interface {
		Execute(ctx context.Context, req dto.ScoreApplicationRequest) (dto.ScoreApplicationResponse, error)
	}
	DecisionLister interface {
		Execute(ctx context.Context, req dto.GetLoanDecisionsRequest) (dto.LoanDecisionsResponse, error)
	}
	AffordabilityQuoter interface {
		Execute(ctx context.Context, req dto.QuoteAffordabilityRequest) (dto.AffordabilityResponse, error)
	}
)

// DecisionHandler implements DecisionServiceServer on top of the use cases.
type DecisionHandler struct {
	UnimplementedDecisionServiceServer

	decide    LoanDecider
	score     ApplicationScorer
	decisions DecisionLister
	quote     AffordabilityQuoter
	logger    *slog.Logger
}

// NewDecisionHandler creates a new gRPC decision handler.
func NewDecisionHandler(
	decide LoanDecider,
	score ApplicationScorer,
	decisions DecisionLister,
	quote AffordabilityQuoter,
	logger *slog.Logger,
) *DecisionHandler {
	return &DecisionHandler{
		decide:    decide,
		score:     score,
		decisions: decisions,
		quote:     quote,
		logger:    logger,
	}
}

// DecideLoan handles the gRPC DecideLoan request.
func (h *DecisionHandler) DecideLoan(ctx context.Context, req *DecideLoanRequest) (*dto.DecideLoanResponse, error) {
	if req == nil || req.LoanID == "" {
		return nil, status.Error(codes.InvalidArgument, "loan_id is required")
	}

	resp, err := h.decide.Execute(ctx, dto.DecideLoanRequest{LoanID: req.LoanID, ActorID: actorID(ctx)})
	if err != nil {
		return nil, h.toStatus(ctx, "DecideLoan", err)
	}
	return &resp, nil
}

// ScoreApplication handles the gRPC ScoreApplication request.
func (h *DecisionHandler) ScoreApplication(ctx context.Context, req *dto.ScoreApplicationRequest) (*dto.ScoreApplicationResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	resp, err := h.score.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "ScoreApplication", err)
	}
	return &resp, nil
}

// ListDecisions handles the gRPC ListDecisions request.
func (h *DecisionHandler) ListDecisions(ctx context.Context, req *ListDecisionsRequest) (*dto.LoanDecisionsResponse, error) {
	if req == nil || req.LoanID == "" {
		return nil, status.Error(codes.InvalidArgument, "loan_id is required")
	}

	resp, err := h.decisions.Execute(ctx, dto.GetLoanDecisionsRequest{LoanID: req.LoanID, ActorID: actorID(ctx)})
	if err != nil {
		return nil, h.toStatus(ctx, "ListDecisions", err)
	}
	return &resp, nil
}

// QuoteAffordability handles the gRPC QuoteAffordability request.
func (h *DecisionHandler) QuoteAffordability(ctx context.Context, req *dto.QuoteAffordabilityRequest) (*dto.AffordabilityResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	resp, err := h.quote.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, "QuoteAffordability", err)
	}
	return &resp, nil
}

var statusCodes = []struct {
	kind error
	code codes.Code
}{
	{model.ErrValidation, codes.InvalidArgument},
	{model.ErrAccessDenied, codes.PermissionDenied},
	{model.ErrNotFound, codes.NotFound},
	{model.ErrAlreadyDecided, codes.FailedPrecondition},
	{model.ErrConflict, codes.Aborted},
	{model.ErrInvalidInput, codes.FailedPrecondition},
	{model.ErrRateLimited, codes.ResourceExhausted},
}

// toStatus converts a use-case error into a gRPC status. Internal failures
// are logged and reported without their cause.
func (h *DecisionHandler) toStatus(ctx context.Context, method string, err error) error {
	for _, m := range statusCodes {
		if errors.Is(err, m.kind) {
			return status.Error(m.code, err.Error())
		}
	}
	h.logger.ErrorContext(ctx, "grpc request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}

func actorID(ctx context.Context) string {
	if claims, ok := auth.ClaimsFromContext(ctx); ok {
		return claims.ActorID()
	}
	return ""
}

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/bibbank/decision-engine/internal/application/dto"
	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/pkg/auth"
)

const maxBodyBytes = 1 << 20

// LoanDecider decides stored loans.
type LoanDecider interface {
	Execute(ctx context.Context, req dto.DecideLoanRequest) (dto.DecideLoanResponse, error)
}

// ApplicationScorer scores raw application data without persistence.
type ApplicationScorer interface {
	Execute(ctx context.Context, req dto.ScoreApplicationRequest) (dto.ScoreApplicationResponse, error)
}

// DecisionLister reads a loan's decision history.
type DecisionLister interface {
	Execute(ctx context.Context, req dto.GetLoanDecisionsRequest) (dto.LoanDecisionsResponse, error)
}

// AffordabilityQuoter computes affordability quotes.
type AffordabilityQuoter interface {
	Execute(ctx context.Context, req dto.QuoteAffordabilityRequest) (dto.AffordabilityResponse, error)
}

// DecisionHandler serves the decision API.
type DecisionHandler struct {
	decide    LoanDecider
	score     ApplicationScorer
	decisions DecisionLister
	quote     AffordabilityQuoter
	logger    *slog.Logger
}

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

// RegisterRoutes attaches the API routes to mux.
func (h *DecisionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/loans/{id}/decide", h.decideLoan)
	mux.HandleFunc("GET /v1/loans/{id}/decisions", h.listDecisions)
	mux.HandleFunc("POST /v1/score", h.scoreApplication)
	mux.HandleFunc("POST /v1/affordability", h.quoteAffordability)
}

func (h *DecisionHandler) decideLoan(w http.ResponseWriter, r *http.Request) {
	resp, err := h.decide.Execute(r.Context(), dto.DecideLoanRequest{
		LoanID:  r.PathValue("id"),
		ActorID: actorID(r),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	status := http.StatusCreated
	if resp.Cached {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

func (h *DecisionHandler) listDecisions(w http.ResponseWriter, r *http.Request) {
	resp, err := h.decisions.Execute(r.Context(), dto.GetLoanDecisionsRequest{
		LoanID:  r.PathValue("id"),
		ActorID: actorID(r),
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DecisionHandler) scoreApplication(w http.ResponseWriter, r *http.Request) {
	var req dto.ScoreApplicationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp, err := h.score.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *DecisionHandler) quoteAffordability(w http.ResponseWriter, r *http.Request) {
	var req dto.QuoteAffordabilityRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	resp, err := h.quote.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// decodeBody reads a single JSON object. Malformed bodies are validation
// errors.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewValidationError("body", "request body is required")
		}
		return &model.DomainError{Kind: model.ErrValidation, Field: "body", Message: "malformed JSON body", Err: err}
	}
	return nil
}

func actorID(r *http.Request) string {
	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		return claims.ActorID()
	}
	return ""
}

package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/bibbank/decision-engine/internal/application/dto"
	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/port"
)

// GetLoanDecisionsUseCase lists the decision history of a loan.
type GetLoanDecisionsUseCase struct {
	loans     port.LoanRepository
	decisions port.DecisionRepository
	authz     port.Authorizer
}

// NewGetLoanDecisionsUseCase wires dependencies.
func NewGetLoanDecisionsUseCase(
	loans port.LoanRepository,
	decisions port.DecisionRepository,
	authz port.Authorizer,
) *GetLoanDecisionsUseCase {
	return &GetLoanDecisionsUseCase{loans: loans, decisions: decisions, authz: authz}
}

// Execute returns every decision recorded for the loan, newest first.
func (uc *GetLoanDecisionsUseCase) Execute(
	ctx context.Context,
	req dto.GetLoanDecisionsRequest,
) (dto.LoanDecisionsResponse, error) {
	loan, err := uc.loans.FindByID(ctx, req.LoanID)
	if err != nil {
		if errors.Is(err, port.ErrLoanNotFound) {
			return dto.LoanDecisionsResponse{}, &model.DomainError{Kind: model.ErrNotFound, Err: err}
		}
		return dto.LoanDecisionsResponse{}, fmt.Errorf("find loan: %w", err)
	}

	allowed, err := uc.authz.IsOwnerOrAdmin(ctx, loan, req.ActorID)
	if err != nil {
		return dto.LoanDecisionsResponse{}, fmt.Errorf("authorize actor: %w", err)
	}
	if !allowed {
		return dto.LoanDecisionsResponse{}, &model.DomainError{Kind: model.ErrAccessDenied}
	}

	records, err := uc.decisions.ListByLoan(ctx, loan.ID())
	if err != nil {
		return dto.LoanDecisionsResponse{}, fmt.Errorf("list decisions: %w", err)
	}

	resp := dto.LoanDecisionsResponse{
		LoanID:    loan.ID(),
		Decisions: make([]dto.DecisionResponse, 0, len(records)),
	}
	for _, rec := range records {
		resp.Decisions = append(resp.Decisions, toDecisionResponse(rec))
	}
	return resp, nil
}

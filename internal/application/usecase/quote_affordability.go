package usecase

import (
	"context"
	"math"

	"github.com/shopspring/decimal"

	"github.com/bibbank/decision-engine/internal/application/dto"
	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/service"
)

// DefaultTargetDTI is the comfortable EMI-to-income ratio used when
// suggesting a tenure.
const DefaultTargetDTI = 0.35

// QuoteAffordabilityUseCase prices a prospective loan at the scoring rate and
// suggests the shortest comfortable tenure.
type QuoteAffordabilityUseCase struct{}

// NewQuoteAffordabilityUseCase wires dependencies.
func NewQuoteAffordabilityUseCase() *QuoteAffordabilityUseCase {
	return &QuoteAffordabilityUseCase{}
}

// Execute computes EMI, total interest, the EMI burden band and a suggested
// tenure.
func (uc *QuoteAffordabilityUseCase) Execute(
	_ context.Context,
	req dto.QuoteAffordabilityRequest,
) (dto.AffordabilityResponse, error) {
	switch {
	case !(req.Amount > 0) || math.IsInf(req.Amount, 0):
		return dto.AffordabilityResponse{}, model.NewValidationError("amount", "Invalid loan amount")
	case req.TenureMonths <= 0:
		return dto.AffordabilityResponse{}, model.NewValidationError("tenure_months", "Invalid loan tenure")
	case !(req.MonthlyIncome > 0) || math.IsInf(req.MonthlyIncome, 0):
		return dto.AffordabilityResponse{}, model.NewValidationError("monthly_income", "Invalid monthly income")
	case req.TargetDTI < 0 || req.TargetDTI > 1:
		return dto.AffordabilityResponse{}, model.NewValidationError("target_dti", "Target DTI must be between 0 and 1")
	}

	target := req.TargetDTI
	if target == 0 {
		target = DefaultTargetDTI
	}

	emi := service.CalculateEMI(req.Amount, service.DefaultAnnualRate, req.TenureMonths)
	interest := service.CalculateTotalInterest(req.Amount, emi, req.TenureMonths)
	ratio := service.CalculateDTI(emi, req.MonthlyIncome)
	if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
		return dto.AffordabilityResponse{}, model.NewValidationError("monthly_income", "Monthly income is too small for this loan")
	}
	band := service.ClassifyDTI(ratio)

	return dto.AffordabilityResponse{
		EMI:                  emi,
		TotalInterest:        interest,
		TotalPayable:         decimal.NewFromFloat(req.Amount).Add(decimal.NewFromFloat(interest)).Round(2).InexactFloat64(),
		DTIRatio:             ratio,
		DTIStatus:            band.Status,
		DTIMessage:           band.Message,
		SuggestedTenureMonth: service.SuggestOptimalTenure(req.Amount, req.MonthlyIncome, service.DefaultAnnualRate, target),
	}, nil
}

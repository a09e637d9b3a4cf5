package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"

	"github.com/bibbank/decision-engine/internal/domain/model"
)

const (
	minCreditScore = 300
	maxCreditScore = 900
	defaultPurpose = "general"
)

// ExtractFeatures validates raw application data field by field and derives
// EMI (at DefaultAnnualRate) and the debt-to-income ratio. It fails fast on
// the first invalid field.
func ExtractFeatures(data model.LoanFeatures) (model.ExtractedFeatures, error) {
	switch {
	case !(data.Amount > 0) || math.IsInf(data.Amount, 0):
		return model.ExtractedFeatures{}, model.NewValidationError("amount", "Invalid loan amount")
	case data.TenureMonths <= 0:
		return model.ExtractedFeatures{}, model.NewValidationError("tenure_months", "Invalid loan tenure")
	case !(data.MonthlyIncome > 0) || math.IsInf(data.MonthlyIncome, 0):
		return model.ExtractedFeatures{}, model.NewValidationError("monthly_income", "Invalid monthly income")
	case !(data.ExistingDebts >= 0) || math.IsInf(data.ExistingDebts, 0):
		return model.ExtractedFeatures{}, model.NewValidationError("existing_debts", "Invalid existing debts")
	case data.CreditScore < minCreditScore || data.CreditScore > maxCreditScore:
		return model.ExtractedFeatures{}, model.NewValidationError("credit_score", "Invalid credit score (must be 300-900)")
	case !(data.EmploymentYears >= 0) || math.IsInf(data.EmploymentYears, 0):
		return model.ExtractedFeatures{}, model.NewValidationError("employment_years", "Invalid employment years")
	}

	if data.Purpose == "" {
		data.Purpose = defaultPurpose
	}

	emi := CalculateEMI(data.Amount, DefaultAnnualRate, data.TenureMonths)
	if !isFinite(emi) {
		return model.ExtractedFeatures{}, model.NewValidationError("amount", "Loan amount is out of range")
	}
	dti := CalculateDTI(data.ExistingDebts, data.MonthlyIncome)
	if !isFinite(dti) {
		return model.ExtractedFeatures{}, model.NewValidationError("existing_debts", "Debt-to-income ratio is out of range")
	}

	return model.ExtractedFeatures{
		LoanFeatures: data,
		EMI:          emi,
		DTIRatio:     dti,
	}, nil
}

// ValidateFeaturesForScoring applies the business rules that per-field
// bounds cannot express.
func ValidateFeaturesForScoring(f model.ExtractedFeatures) error {
	if f.EMI > f.MonthlyIncome {
		return model.NewInvalidInputError("EMI cannot exceed monthly income")
	}
	if f.DTIRatio > 1 {
		return model.NewInvalidInputError("Debt-to-income ratio cannot exceed 100%")
	}
	return nil
}

// InputHash returns a SHA-256 hex digest of the canonical, key-sorted JSON
// form of the scoring inputs. EMI is excluded since amount and tenure
// determine it.
func InputHash(f model.ExtractedFeatures) (string, error) {
	canonical := map[string]any{
		"amount":           f.Amount,
		"tenure_months":    f.TenureMonths,
		"monthly_income":   f.MonthlyIncome,
		"existing_debts":   f.ExistingDebts,
		"credit_score":     f.CreditScore,
		"employment_years": f.EmploymentYears,
		"dti_ratio":        round(f.DTIRatio, 4),
	}

	// encoding/json emits map keys in sorted order.
	payload, err := json.Marshal(canonical)
	if err != nil {
		return "", fmt.Errorf("marshal hash input: %w", err)
	}

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

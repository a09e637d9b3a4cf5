package model

import "github.com/bibbank/decision-engine/internal/domain/valueobject"

// ---------------------------------------------------------------------------
// Scoring inputs and outputs
// ---------------------------------------------------------------------------

// LoanFeatures is the raw applicant data the decision engine scores.
type LoanFeatures struct {
	CreditScore     int     `json:"credit_score"`
	MonthlyIncome   float64 `json:"monthly_income"`
	ExistingDebts   float64 `json:"existing_debts"`
	Amount          float64 `json:"amount"`
	TenureMonths    int     `json:"tenure_months"`
	EmploymentYears float64 `json:"employment_years"`
	Purpose         string  `json:"purpose"`
}

// ExtractedFeatures are validated LoanFeatures plus the derived EMI and
// debt-to-income ratio.
type ExtractedFeatures struct {
	LoanFeatures
	EMI      float64 `json:"emi"`
	DTIRatio float64 `json:"dti_ratio"`
}

// EMIToIncome returns the share of monthly income consumed by the EMI.
func (f ExtractedFeatures) EMIToIncome() float64 {
	if f.MonthlyIncome <= 0 {
		return 1
	}
	return f.EMI / f.MonthlyIncome
}

// NormalizedFeatures are the model inputs. Every field except DTIRatio lies
// in [0,1].
type NormalizedFeatures struct {
	CreditScoreNormalized      float64 `json:"credit_score_normalized"`
	DTIRatio                   float64 `json:"dti_ratio"`
	DTIRatioInverted           float64 `json:"dti_ratio_inverted"`
	EMIToIncome                float64 `json:"emi_to_income"`
	EmploymentLengthNormalized float64 `json:"employment_length_normalized"`
	AmountVsIncome             float64 `json:"amount_vs_income"`
}

// ScoringResult is the immutable output of one scoring invocation.
type ScoringResult struct {
	Score    float64                  `json:"score"`
	Decision valueobject.Decision     `json:"-"`
	Reasons  []string                 `json:"reasons"`
	Features NormalizedFeatures       `json:"features"`
	Model    valueobject.ScoringModel `json:"-"`
}

package dto

import (
	"time"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// ScoreApplicationRequest carries raw application data for stateless scoring.
type ScoreApplicationRequest struct {
	Amount          float64 `json:"amount"`
	TenureMonths    int     `json:"tenure_months"`
	MonthlyIncome   float64 `json:"monthly_income"`
	ExistingDebts   float64 `json:"existing_debts"`
	CreditScore     int     `json:"credit_score"`
	EmploymentYears float64 `json:"employment_years"`
	Purpose         string  `json:"purpose"`
}

// DecideLoanRequest identifies the loan to decide and the acting user.
type DecideLoanRequest struct {
	LoanID  string `json:"loan_id"`
	ActorID string `json:"actor_id"`
}

// GetLoanDecisionsRequest identifies a loan whose decision history is read.
type GetLoanDecisionsRequest struct {
	LoanID  string `json:"loan_id"`
	ActorID string `json:"actor_id"`
}

// QuoteAffordabilityRequest carries the inputs of an affordability quote.
// A zero TargetDTI uses the default comfort ratio.
type QuoteAffordabilityRequest struct {
	Amount        float64 `json:"amount"`
	TenureMonths  int     `json:"tenure_months"`
	MonthlyIncome float64 `json:"monthly_income"`
	TargetDTI     float64 `json:"target_dti,omitempty"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// NormalizedFeaturesResponse exposes the model inputs behind a score.
type NormalizedFeaturesResponse struct {
	CreditScoreNormalized      float64 `json:"credit_score_normalized"`
	DTIRatio                   float64 `json:"dti_ratio"`
	DTIRatioInverted           float64 `json:"dti_ratio_inverted"`
	EMIToIncome                float64 `json:"emi_to_income"`
	EmploymentLengthNormalized float64 `json:"employment_length_normalized"`
	AmountVsIncome             float64 `json:"amount_vs_income"`
}

// ScoreApplicationResponse is the outcome of stateless scoring.
type ScoreApplicationResponse struct {
	Score    float64                    `json:"score"`
	Decision string                     `json:"decision"`
	Reasons  []string                   `json:"reasons"`
	Model    string                     `json:"model"`
	EMI      float64                    `json:"emi"`
	DTIRatio float64                    `json:"dti_ratio"`
	Features NormalizedFeaturesResponse `json:"features"`
}

// LoanSummary is the loan state returned alongside a decision.
type LoanSummary struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// DecideLoanResponse is the outcome of a decide call. Cached is true when an
// identical decision inside the idempotency window was returned unchanged.
type DecideLoanResponse struct {
	DecisionID string      `json:"decision_id"`
	Decision   string      `json:"decision"`
	Score      float64     `json:"score"`
	Reasons    []string    `json:"reasons"`
	Loan       LoanSummary `json:"loan"`
	Cached     bool        `json:"cached"`
	Timestamp  time.Time   `json:"timestamp"`
}

// DecisionResponse is one entry of a loan's decision history.
type DecisionResponse struct {
	ID        string    `json:"id"`
	LoanID    string    `json:"loan_id"`
	Decision  string    `json:"decision"`
	Score     float64   `json:"score"`
	Reasons   []string  `json:"reasons"`
	InputHash string    `json:"input_hash"`
	CreatedAt time.Time `json:"created_at"`
}

// LoanDecisionsResponse lists decisions for a loan, newest first.
type LoanDecisionsResponse struct {
	LoanID    string             `json:"loan_id"`
	Decisions []DecisionResponse `json:"decisions"`
}

// AffordabilityResponse summarises repayment burden for a proposed loan.
type AffordabilityResponse struct {
	EMI                  float64 `json:"emi"`
	TotalInterest        float64 `json:"total_interest"`
	TotalPayable         float64 `json:"total_payable"`
	DTIRatio             float64 `json:"dti_ratio"`
	DTIStatus            string  `json:"dti_status"`
	DTIMessage           string  `json:"dti_message"`
	SuggestedTenureMonth int     `json:"suggested_tenure_months"`
}

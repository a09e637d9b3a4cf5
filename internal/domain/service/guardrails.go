package service

import (
	"fmt"

	"github.com/bibbank/decision-engine/internal/domain/model"
)

// GuardrailLimits are the hard business rules that override the model score.
type GuardrailLimits struct {
	MinCreditScore      int
	MaxDTIRatio         float64
	MaxEMIToIncomeRatio float64
	CappedScore         float64
}

// DefaultGuardrailLimits returns the production guardrails.
func DefaultGuardrailLimits() GuardrailLimits {
	return GuardrailLimits{
		MinCreditScore:      500,
		MaxDTIRatio:         0.60,
		MaxEMIToIncomeRatio: 0.40,
		CappedScore:         0.65,
	}
}

// GuardrailOutcome records which guardrails fired for one application.
type GuardrailOutcome struct {
	Reject  bool
	Cap     bool
	Reasons []string
	limits  GuardrailLimits
}

// Evaluate checks every guardrail independently; several may fire at once.
func (g GuardrailLimits) Evaluate(f model.ExtractedFeatures, n model.NormalizedFeatures) GuardrailOutcome {
	out := GuardrailOutcome{limits: g}

	if f.CreditScore < g.MinCreditScore {
		out.Reject = true
		out.Reasons = append(out.Reasons,
			fmt.Sprintf("Low credit score (%d) below minimum requirement", f.CreditScore))
	}

	if n.DTIRatio > g.MaxDTIRatio {
		out.Reject = true
		out.Reasons = append(out.Reasons,
			fmt.Sprintf("High debt-to-income ratio (%.1f%%) exceeds maximum limit", n.DTIRatio*100))
	}

	emiRatio := 1 - n.EMIToIncome
	if emiRatio > g.MaxEMIToIncomeRatio {
		out.Cap = true
		out.Reasons = append(out.Reasons,
			fmt.Sprintf("High EMI-to-income ratio (%.1f%%) requires review", emiRatio*100))
	}

	return out
}

// Apply enforces the outcome on a raw model score. Reject dominates the cap.
func (o GuardrailOutcome) Apply(score float64) float64 {
	switch {
	case o.Reject:
		return 0
	case o.Cap:
		return min(score, o.limits.CappedScore)
	default:
		return score
	}
}

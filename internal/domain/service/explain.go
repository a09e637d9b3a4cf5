package service

import (
	"fmt"
	"strconv"

	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/valueobject"
)

const (
	minReasons = 3
	maxReasons = 6

	// needs_review outcomes above this score also list positive signals.
	reviewPositiveScore = 0.6

	manualReviewNote = "Application requires manual review due to mixed risk factors"
)

// ExplanationInput is everything the explanation generator looks at.
type ExplanationInput struct {
	Features         model.ExtractedFeatures
	Normalized       model.NormalizedFeatures
	Score            float64
	Decision         valueobject.Decision
	GuardrailReasons []string
}

// GenerateExplanations produces between 3 and 6 reasons consistent with the
// decision. Guardrail reasons always come first; positive and negative
// signals follow, then a review note. Generic fillers top the list up to
// three, and the result is cut at six.
func GenerateExplanations(in ExplanationInput) []string {
	reasons := make([]string, 0, maxReasons+len(in.GuardrailReasons))
	reasons = append(reasons, in.GuardrailReasons...)

	f := in.Features
	emiPct := f.EMIToIncome() * 100
	dtiPct := in.Normalized.DTIRatio * 100
	years := strconv.FormatFloat(f.EmploymentYears, 'f', -1, 64)

	approve := in.Decision.Equal(valueobject.DecisionApprove)
	review := in.Decision.Equal(valueobject.DecisionNeedsReview)
	reject := in.Decision.Equal(valueobject.DecisionReject)

	if approve || (review && in.Score > reviewPositiveScore) {
		switch {
		case f.CreditScore >= 750:
			reasons = append(reasons, fmt.Sprintf("Strong credit score (%d)", f.CreditScore))
		case f.CreditScore >= 650:
			reasons = append(reasons, fmt.Sprintf("Good credit score (%d)", f.CreditScore))
		}

		switch {
		case emiPct <= 25:
			reasons = append(reasons, fmt.Sprintf("Excellent EMI-to-income ratio (%.1f%%)", emiPct))
		case emiPct <= 35:
			reasons = append(reasons, fmt.Sprintf("Healthy EMI-to-income ratio (%.1f%%)", emiPct))
		}

		switch {
		case dtiPct <= 20:
			reasons = append(reasons, fmt.Sprintf("Excellent debt-to-income ratio (%.1f%%)", dtiPct))
		case dtiPct <= 35:
			reasons = append(reasons, fmt.Sprintf("Healthy debt-to-income ratio (%.1f%%)", dtiPct))
		}

		switch {
		case f.EmploymentYears >= 5:
			reasons = append(reasons, fmt.Sprintf("Stable employment history (%s years)", years))
		case f.EmploymentYears >= 2:
			reasons = append(reasons, fmt.Sprintf("Good employment stability (%s years)", years))
		}
	}

	if reject || review {
		if f.CreditScore < 600 {
			reasons = append(reasons, fmt.Sprintf("Low credit score (%d) indicates higher risk", f.CreditScore))
		}

		switch {
		case emiPct > 40:
			reasons = append(reasons, fmt.Sprintf("High EMI (%.1f%% of income) exceeds comfort zone", emiPct))
		case emiPct > 35:
			reasons = append(reasons, fmt.Sprintf("EMI (%.1f%% of income) above ideal 35%% threshold", emiPct))
		}

		switch {
		case dtiPct > 50:
			reasons = append(reasons, fmt.Sprintf("Very high debt-to-income ratio (%.1f%%)", dtiPct))
		case dtiPct > 35:
			reasons = append(reasons, fmt.Sprintf("High debt-to-income ratio (%.1f%%) exceeds ideal 35%%", dtiPct))
		}

		if f.EmploymentYears < 1 {
			reasons = append(reasons, fmt.Sprintf("Limited employment history (%s years)", years))
		}

		if loanToIncome := f.Amount / (f.MonthlyIncome * 12); loanToIncome > 5 {
			reasons = append(reasons, fmt.Sprintf("Large loan amount relative to annual income (%.1fx)", loanToIncome))
		}
	}

	if review {
		reasons = append(reasons, manualReviewNote)
	}

	for _, filler := range fillerReasons(in.Decision) {
		if len(reasons) >= minReasons {
			break
		}
		reasons = append(reasons, filler)
	}

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	return reasons
}

// fillerReasons lists the generic reasons for a decision, most specific first.
func fillerReasons(d valueobject.Decision) []string {
	switch {
	case d.Equal(valueobject.DecisionApprove):
		return []string{
			"Overall financial profile meets approval criteria",
			"Weighted risk score meets the approval threshold",
			"Application data passed all validation checks",
		}
	case d.Equal(valueobject.DecisionNeedsReview):
		return []string{
			"Risk factors require careful evaluation",
			"Weighted risk score falls within the manual review band",
			"Additional documentation may be requested",
		}
	default:
		return []string{
			"Risk profile exceeds acceptable limits",
			"Weighted risk score is below the review threshold",
			"Applicant may reapply after improving their financial profile",
		}
	}
}

package service

import "github.com/bibbank/decision-engine/internal/domain/model"

// preferredMaxDTI is the debt-to-income ratio at or below which the inverted
// DTI feature starts rewarding the applicant.
const preferredMaxDTI = 0.35

// NormalizeFeatures maps extracted features onto the [0,1] model inputs
// shared by every scorer. DTIRatio is carried through unscaled.
func NormalizeFeatures(f model.ExtractedFeatures) model.NormalizedFeatures {
	income := max(f.MonthlyIncome, 1)

	return model.NormalizedFeatures{
		CreditScoreNormalized:      clamp01(float64(f.CreditScore-minCreditScore) / float64(maxCreditScore-minCreditScore)),
		DTIRatio:                   f.DTIRatio,
		DTIRatioInverted:           clamp01(1 - f.DTIRatio/preferredMaxDTI),
		EMIToIncome:                1 - min(1, f.EMI/income),
		EmploymentLengthNormalized: min(f.EmploymentYears, 10) / 10,
		AmountVsIncome:             1 - min(1, f.Amount/(12*income)),
	}
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

package service

import (
	"math"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// EMI / DTI calculator – pure financial math
// ---------------------------------------------------------------------------

// DefaultAnnualRate is the fixed annual interest rate applied when deriving
// EMI for scoring.
const DefaultAnnualRate = 0.12

// CalculateEMI returns the equated monthly installment for principal repaid
// over tenureMonths at annualRate, rounded to 2 decimal places:
//
//	r   = annualRate / 12
//	emi = P * r * (1+r)^n / ((1+r)^n - 1)
//
// A zero rate degrades to an even split. Non-positive principal or tenure
// yields 0. Once (1+r)^n overflows the payment converges on interest only,
// P * r.
func CalculateEMI(principal, annualRate float64, tenureMonths int) float64 {
	if principal <= 0 || tenureMonths <= 0 || annualRate < 0 {
		return 0
	}

	monthlyRate := annualRate / 12
	if monthlyRate == 0 {
		return round(principal/float64(tenureMonths), 2)
	}

	factor := math.Pow(1+monthlyRate, float64(tenureMonths))
	if math.IsInf(factor, 1) {
		return round(principal*monthlyRate, 2)
	}
	emi := principal * monthlyRate * factor / (factor - 1)
	if math.IsInf(emi, 0) {
		emi = principal * monthlyRate * (factor / (factor - 1))
	}
	return round(emi, 2)
}

// CalculateDTI returns emi/monthlyIncome rounded to 4 decimal places.
// A non-positive income yields 1 (worst case) unless emi is itself negative,
// which yields 0.
func CalculateDTI(emi, monthlyIncome float64) float64 {
	if monthlyIncome <= 0 || emi < 0 {
		if emi < 0 {
			return 0
		}
		return 1
	}
	return round(emi/monthlyIncome, 4)
}

// CalculateTotalInterest returns the interest paid over the life of the loan.
func CalculateTotalInterest(principal, emi float64, tenureMonths int) float64 {
	if !isFinite(principal) || !isFinite(emi) {
		return emi*float64(tenureMonths) - principal
	}
	total := decimal.NewFromFloat(emi).Mul(decimal.NewFromInt(int64(tenureMonths)))
	return total.Sub(decimal.NewFromFloat(principal)).Round(2).InexactFloat64()
}

// ---------------------------------------------------------------------------
// Affordability helpers
// ---------------------------------------------------------------------------

// DTIStatus is a coarse affordability band for a debt-to-income ratio.
type DTIStatus struct {
	Status  string
	Message string
}

// ClassifyDTI buckets a DTI ratio into excellent, good, fair or poor.
func ClassifyDTI(ratio float64) DTIStatus {
	switch {
	case ratio <= 0.25:
		return DTIStatus{Status: "excellent", Message: "Excellent DTI ratio! Strong approval chances."}
	case ratio <= 0.35:
		return DTIStatus{Status: "good", Message: "Good DTI ratio. Meets lending standards."}
	case ratio <= 0.50:
		return DTIStatus{Status: "fair", Message: "Fair DTI ratio. Consider longer tenure."}
	default:
		return DTIStatus{Status: "poor", Message: "High DTI ratio. Approval may be difficult."}
	}
}

const (
	minTenureMonths     = 3
	maxTenureMonths     = 84
	defaultTenureMonths = 12
)

// SuggestOptimalTenure binary-searches 3..84 months for the shortest tenure
// whose EMI stays within monthlyIncome*targetDTI. When no tenure qualifies it
// returns 12.
func SuggestOptimalTenure(principal, monthlyIncome, annualRate, targetDTI float64) int {
	maxEMI := monthlyIncome * targetDTI

	lo, hi := minTenureMonths, maxTenureMonths
	optimal := defaultTenureMonths
	for lo <= hi {
		mid := (lo + hi) / 2
		if CalculateEMI(principal, annualRate, mid) <= maxEMI {
			optimal = mid
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}

	return max(minTenureMonths, min(maxTenureMonths, optimal))
}

// round passes NaN and infinities through unchanged; decimal cannot hold them.
func round(v float64, places int32) float64 {
	if !isFinite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

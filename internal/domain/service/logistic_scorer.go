package service

import (
	"math"

	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/valueobject"
)

// LogisticCoefficients are the fixed logistic regression parameters.
type LogisticCoefficients struct {
	Intercept        float64
	CreditScore      float64
	DTIRatioInverted float64
	EMIToIncome      float64
	EmploymentLength float64
	AmountVsIncome   float64
}

// DefaultLogisticCoefficients returns the trained coefficients.
func DefaultLogisticCoefficients() LogisticCoefficients {
	return LogisticCoefficients{
		Intercept:        -2.5,
		CreditScore:      3.2,
		DTIRatioInverted: 2.1,
		EMIToIncome:      1.8,
		EmploymentLength: 0.9,
		AmountVsIncome:   0.5,
	}
}

// LogisticScorer scores loans with sigmoid(intercept + Σ coefficient·feature)
// and applies the same guardrails as the rule-based model.
type LogisticScorer struct {
	coefficients LogisticCoefficients
	thresholds   DecisionThresholds
	limits       GuardrailLimits
}

// NewLogisticScorer creates a LogisticScorer with the default coefficients.
func NewLogisticScorer(thresholds DecisionThresholds) *LogisticScorer {
	return &LogisticScorer{
		coefficients: DefaultLogisticCoefficients(),
		thresholds:   thresholds,
		limits:       DefaultGuardrailLimits(),
	}
}

func (s *LogisticScorer) Model() valueobject.ScoringModel { return valueobject.ScoringModelLogistic }

func (s *LogisticScorer) Score(f model.ExtractedFeatures) model.ScoringResult {
	return score(s.Model(), f, s.thresholds, s.limits, s.probability)
}

func (s *LogisticScorer) probability(n model.NormalizedFeatures) float64 {
	c := s.coefficients
	z := c.Intercept +
		c.CreditScore*n.CreditScoreNormalized +
		c.DTIRatioInverted*n.DTIRatioInverted +
		c.EMIToIncome*n.EMIToIncome +
		c.EmploymentLength*n.EmploymentLengthNormalized +
		c.AmountVsIncome*n.AmountVsIncome
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

package service

import (
	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/valueobject"
)

// ScoringWeights are the rule-based feature weights. They sum to 1.0.
type ScoringWeights struct {
	CreditScore      float64
	DTIRatio         float64
	EMIToIncome      float64
	EmploymentLength float64
	AmountVsIncome   float64
}

// DefaultScoringWeights returns the production weights.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		CreditScore:      0.35,
		DTIRatio:         0.25, // applied to the inverted ratio
		EMIToIncome:      0.25,
		EmploymentLength: 0.10,
		AmountVsIncome:   0.05,
	}
}

// RuleBasedScorer is a domain service that scores loans as a weighted sum of
// normalized features.
type RuleBasedScorer struct {
	weights    ScoringWeights
	thresholds DecisionThresholds
	limits     GuardrailLimits
}

// NewRuleBasedScorer creates a RuleBasedScorer with the default weights and
// guardrails.
func NewRuleBasedScorer(thresholds DecisionThresholds) *RuleBasedScorer {
	return &RuleBasedScorer{
		weights:    DefaultScoringWeights(),
		thresholds: thresholds,
		limits:     DefaultGuardrailLimits(),
	}
}

func (s *RuleBasedScorer) Model() valueobject.ScoringModel { return valueobject.ScoringModelRules }

// Score evaluates the weighted sum, clamped to [0,1], then applies guardrails.
func (s *RuleBasedScorer) Score(f model.ExtractedFeatures) model.ScoringResult {
	return score(s.Model(), f, s.thresholds, s.limits, s.weightedScore)
}

func (s *RuleBasedScorer) weightedScore(n model.NormalizedFeatures) float64 {
	w := s.weights
	sum := n.CreditScoreNormalized*w.CreditScore +
		n.DTIRatioInverted*w.DTIRatio +
		n.EMIToIncome*w.EMIToIncome +
		n.EmploymentLengthNormalized*w.EmploymentLength +
		n.AmountVsIncome*w.AmountVsIncome
	return clamp01(sum)
}

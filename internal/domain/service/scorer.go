package service

import (
	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/valueobject"
)

// Scorer defines the interface for loan scoring strategies.
// Both RuleBasedScorer and LogisticScorer implement this. Implementations
// must be deterministic: identical features always produce identical results.
type Scorer interface {
	Model() valueobject.ScoringModel
	Score(features model.ExtractedFeatures) model.ScoringResult
}

// NewScorer returns the scorer selected by m, defaulting to the rule-based
// model for an unset selector.
func NewScorer(m valueobject.ScoringModel, thresholds DecisionThresholds) Scorer {
	if m == valueobject.ScoringModelLogistic {
		return NewLogisticScorer(thresholds)
	}
	return NewRuleBasedScorer(thresholds)
}

// score runs the pipeline shared by every model: normalize, compute the raw
// model score, enforce guardrails, classify and explain.
func score(
	m valueobject.ScoringModel,
	f model.ExtractedFeatures,
	thresholds DecisionThresholds,
	limits GuardrailLimits,
	raw func(model.NormalizedFeatures) float64,
) model.ScoringResult {
	normalized := NormalizeFeatures(f)
	guardrails := limits.Evaluate(f, normalized)

	s := guardrails.Apply(raw(normalized))
	decision := thresholds.Classify(s)

	reasons := GenerateExplanations(ExplanationInput{
		Features:         f,
		Normalized:       normalized,
		Score:            s,
		Decision:         decision,
		GuardrailReasons: guardrails.Reasons,
	})

	return model.ScoringResult{
		Score:    s,
		Decision: decision,
		Reasons:  reasons,
		Features: normalized,
		Model:    m,
	}
}

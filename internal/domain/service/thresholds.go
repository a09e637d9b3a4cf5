package service

import (
	"errors"
	"fmt"

	"github.com/bibbank/decision-engine/internal/domain/valueobject"
)

// DecisionThresholds are the score cutoffs separating approve, needs_review
// and reject.
type DecisionThresholds struct {
	Approve float64 `json:"approve"`
	Review  float64 `json:"review"`
}

// DefaultDecisionThresholds returns approve=0.70, review=0.55.
func DefaultDecisionThresholds() DecisionThresholds {
	return DecisionThresholds{Approve: 0.70, Review: 0.55}
}

var ErrInvalidThresholds = errors.New("invalid decision thresholds")

// Validate rejects cutoffs outside [0,1] or a review cutoff that does not
// sit strictly below approve.
func (t DecisionThresholds) Validate() error {
	if t.Approve < 0 || t.Approve > 1 || t.Review < 0 || t.Review > 1 {
		return fmt.Errorf("%w: cutoffs must lie in [0,1], got approve=%v review=%v",
			ErrInvalidThresholds, t.Approve, t.Review)
	}
	if t.Review >= t.Approve {
		return fmt.Errorf("%w: review (%v) must be below approve (%v)",
			ErrInvalidThresholds, t.Review, t.Approve)
	}
	return nil
}

// Classify maps a score onto a decision. Both cutoffs are inclusive.
func (t DecisionThresholds) Classify(score float64) valueobject.Decision {
	switch {
	case score >= t.Approve:
		return valueobject.DecisionApprove
	case score >= t.Review:
		return valueobject.DecisionNeedsReview
	default:
		return valueobject.DecisionReject
	}
}

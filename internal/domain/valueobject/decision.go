package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// Decision – immutable value object
// ---------------------------------------------------------------------------

// Decision is the categorical outcome of scoring a loan application.
type Decision struct {
	value string
}

const (
	decisionApprove     = "approve"
	decisionNeedsReview = "needs_review"
	decisionReject      = "reject"
)

var (
	DecisionApprove     = Decision{value: decisionApprove}
	DecisionNeedsReview = Decision{value: decisionNeedsReview}
	DecisionReject      = Decision{value: decisionReject}
)

var validDecisions = map[string]Decision{
	decisionApprove:     DecisionApprove,
	decisionNeedsReview: DecisionNeedsReview,
	decisionReject:      DecisionReject,
}

// NewDecision creates a Decision from a raw string.
func NewDecision(s string) (Decision, error) {
	v, ok := validDecisions[s]
	if !ok {
		return Decision{}, fmt.Errorf("invalid decision: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (d Decision) String() string { return d.value }

// IsZero returns true when not initialised.
func (d Decision) IsZero() bool { return d.value == "" }

// Equal returns true when both decisions match.
func (d Decision) Equal(other Decision) bool { return d.value == other.value }

// LoanStatus maps a decision onto the loan status it transitions to.
func (d Decision) LoanStatus() LoanStatus {
	switch d.value {
	case decisionApprove:
		return LoanStatusApproved
	case decisionReject:
		return LoanStatusRejected
	case decisionNeedsReview:
		return LoanStatusUnderReview
	default:
		return LoanStatusSubmitted
	}
}

// ---------------------------------------------------------------------------
// ScoringModel – immutable value object
// ---------------------------------------------------------------------------

// ScoringModel selects which scoring model produces the score.
type ScoringModel struct {
	value string
}

const (
	scoringModelRules    = "rules"
	scoringModelLogistic = "logistic"
)

var (
	ScoringModelRules    = ScoringModel{value: scoringModelRules}
	ScoringModelLogistic = ScoringModel{value: scoringModelLogistic}
)

// NewScoringModel parses a model selector.
func NewScoringModel(s string) (ScoringModel, error) {
	switch s {
	case scoringModelRules:
		return ScoringModelRules, nil
	case scoringModelLogistic:
		return ScoringModelLogistic, nil
	default:
		return ScoringModel{}, fmt.Errorf("invalid scoring model: %q", s)
	}
}

func (m ScoringModel) String() string { return m.value }

func (m ScoringModel) IsZero() bool { return m.value == "" }

package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a loan application as seen by
// the decision engine. approved and rejected are terminal.
type LoanStatus struct {
	value string
}

const (
	loanStatusSubmitted   = "submitted"
	loanStatusUnderReview = "under_review"
	loanStatusApproved    = "approved"
	loanStatusRejected    = "rejected"
)

var (
	LoanStatusSubmitted   = LoanStatus{value: loanStatusSubmitted}
	LoanStatusUnderReview = LoanStatus{value: loanStatusUnderReview}
	LoanStatusApproved    = LoanStatus{value: loanStatusApproved}
	LoanStatusRejected    = LoanStatus{value: loanStatusRejected}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusSubmitted:   LoanStatusSubmitted,
	loanStatusUnderReview: LoanStatusUnderReview,
	loanStatusApproved:    LoanStatusApproved,
	loanStatusRejected:    LoanStatusRejected,
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// IsTerminal reports whether no further decisions may be made.
func (s LoanStatus) IsTerminal() bool {
	return s.value == loanStatusApproved || s.value == loanStatusRejected
}

// CanTransitionTo reports whether the decision state machine allows moving
// from s to next.
func (s LoanStatus) CanTransitionTo(next LoanStatus) bool {
	if s.IsTerminal() || s.IsZero() {
		return false
	}
	switch next.value {
	case loanStatusApproved, loanStatusRejected, loanStatusUnderReview:
		return true
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)

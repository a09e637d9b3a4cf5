package model

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/decision-engine/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// DecisionRecord – persisted decision, created once and never mutated
// ---------------------------------------------------------------------------

// DecisionRecord is the persisted outcome of one accepted decision request.
type DecisionRecord struct {
	id        string
	loanID    string
	decision  valueobject.Decision
	score     float64
	reasons   []string
	inputHash string
	createdAt time.Time
}

// NewDecisionRecord creates a record for a fresh scoring result.
func NewDecisionRecord(loanID string, result ScoringResult, inputHash string, now time.Time) (DecisionRecord, error) {
	if loanID == "" {
		return DecisionRecord{}, errors.New("loan ID is required")
	}
	if inputHash == "" {
		return DecisionRecord{}, errors.New("input hash is required")
	}
	if result.Decision.IsZero() {
		return DecisionRecord{}, errors.New("decision is required")
	}
	return DecisionRecord{
		id:        uuid.New().String(),
		loanID:    loanID,
		decision:  result.Decision,
		score:     result.Score,
		reasons:   copyReasons(result.Reasons),
		inputHash: inputHash,
		createdAt: now.UTC(),
	}, nil
}

// ReconstructDecisionRecord rehydrates a DecisionRecord from persistence.
func ReconstructDecisionRecord(
	id, loanID string,
	decision valueobject.Decision,
	score float64,
	reasons []string,
	inputHash string,
	createdAt time.Time,
) DecisionRecord {
	return DecisionRecord{
		id:        id,
		loanID:    loanID,
		decision:  decision,
		score:     score,
		reasons:   copyReasons(reasons),
		inputHash: inputHash,
		createdAt: createdAt,
	}
}

func (d DecisionRecord) ID() string                     { return d.id }
func (d DecisionRecord) LoanID() string                 { return d.loanID }
func (d DecisionRecord) Decision() valueobject.Decision { return d.decision }
func (d DecisionRecord) Score() float64                 { return d.score }
func (d DecisionRecord) Reasons() []string              { return copyReasons(d.reasons) }
func (d DecisionRecord) InputHash() string              { return d.inputHash }
func (d DecisionRecord) CreatedAt() time.Time           { return d.createdAt }

// TopReasons returns at most n leading reasons.
func (d DecisionRecord) TopReasons(n int) []string {
	if n >= len(d.reasons) {
		return d.Reasons()
	}
	return copyReasons(d.reasons[:n])
}

func copyReasons(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

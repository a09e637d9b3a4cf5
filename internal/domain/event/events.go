package event

import (
	"time"

	"github.com/bibbank/decision-engine/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	TypeDecisionMade           = "lending.decision.made"
	TypeLoanStatusTransitioned = "lending.loan.status_transitioned"

	aggregateLoan = "Loan"
)

// ---------------------------------------------------------------------------
// Decision Events
// ---------------------------------------------------------------------------

// DecisionMade is raised once a decision record has been persisted and the
// loan status transitioned. Reasons holds the leading reasons only.
type DecisionMade struct {
	events.BaseEvent
	DecisionID string   `json:"decision_id"`
	ActorID    string   `json:"actor_id"`
	Decision   string   `json:"decision"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
	InputHash  string   `json:"input_hash"`
}

func NewDecisionMade(
	loanID, decisionID, actorID, decision string,
	score float64, reasons []string, inputHash string, at time.Time,
) DecisionMade {
	return DecisionMade{
		BaseEvent:  events.NewBaseEvent(TypeDecisionMade, loanID, aggregateLoan, at),
		DecisionID: decisionID,
		ActorID:    actorID,
		Decision:   decision,
		Score:      score,
		Reasons:    reasons,
		InputHash:  inputHash,
	}
}

// LoanStatusTransitioned is raised when a decision moves a loan between
// lifecycle states.
type LoanStatusTransitioned struct {
	events.BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

func NewLoanStatusTransitioned(loanID, from, to string, at time.Time) LoanStatusTransitioned {
	return LoanStatusTransitioned{
		BaseEvent: events.NewBaseEvent(TypeLoanStatusTransitioned, loanID, aggregateLoan, at),
		From:      from,
		To:        to,
	}
}

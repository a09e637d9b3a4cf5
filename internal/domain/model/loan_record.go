package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/decision-engine/internal/domain/event"
	"github.com/bibbank/decision-engine/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// LoanRecord – externally owned loan application
// ---------------------------------------------------------------------------

// LoanRecord is an immutable snapshot of a loan application. The decision
// engine only ever changes its status; every transition returns a new copy.
type LoanRecord struct {
	id              string
	userID          string
	amount          decimal.Decimal
	tenureMonths    int
	monthlyIncome   decimal.Decimal
	existingDebts   decimal.Decimal
	creditScore     int
	employmentType  string
	employmentYears float64
	purpose         string
	status          valueobject.LoanStatus
	createdAt       time.Time
	updatedAt       time.Time
	domainEvents    []event.DomainEvent
}

// ReconstructLoanRecord rehydrates a LoanRecord from persistence.
func ReconstructLoanRecord(
	id, userID string,
	amount decimal.Decimal,
	tenureMonths int,
	monthlyIncome, existingDebts decimal.Decimal,
	creditScore int,
	employmentType string,
	employmentYears float64,
	purpose string,
	status valueobject.LoanStatus,
	createdAt, updatedAt time.Time,
) LoanRecord {
	return LoanRecord{
		id:              id,
		userID:          userID,
		amount:          amount,
		tenureMonths:    tenureMonths,
		monthlyIncome:   monthlyIncome,
		existingDebts:   existingDebts,
		creditScore:     creditScore,
		employmentType:  employmentType,
		employmentYears: employmentYears,
		purpose:         purpose,
		status:          status,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// ApplyDecision moves the loan to the status mapped from decision.
func (l LoanRecord) ApplyDecision(decision valueobject.Decision, now time.Time) (LoanRecord, error) {
	next := decision.LoanStatus()
	if !l.status.CanTransitionTo(next) {
		return l, fmt.Errorf("%w: cannot move loan from %s to %s",
			valueobject.ErrInvalidStatusTransition, l.status, next)
	}
	out := l
	out.status = next
	out.updatedAt = now
	out.domainEvents = append(copyEvents(l.domainEvents),
		event.NewLoanStatusTransitioned(l.id, l.status.String(), next.String(), now))
	return out, nil
}

// Features converts the stored application into scoring inputs.
func (l LoanRecord) Features() LoanFeatures {
	return LoanFeatures{
		CreditScore:     l.creditScore,
		MonthlyIncome:   l.monthlyIncome.InexactFloat64(),
		ExistingDebts:   l.existingDebts.InexactFloat64(),
		Amount:          l.amount.InexactFloat64(),
		TenureMonths:    l.tenureMonths,
		EmploymentYears: l.employmentYears,
		Purpose:         l.purpose,
	}
}

// IsOwnedBy reports whether actorID submitted this loan.
func (l LoanRecord) IsOwnedBy(actorID string) bool {
	return actorID != "" && l.userID == actorID
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l LoanRecord) ID() string                     { return l.id }
func (l LoanRecord) UserID() string                 { return l.userID }
func (l LoanRecord) Amount() decimal.Decimal        { return l.amount }
func (l LoanRecord) TenureMonths() int              { return l.tenureMonths }
func (l LoanRecord) MonthlyIncome() decimal.Decimal { return l.monthlyIncome }
func (l LoanRecord) ExistingDebts() decimal.Decimal { return l.existingDebts }
func (l LoanRecord) CreditScore() int               { return l.creditScore }
func (l LoanRecord) EmploymentType() string         { return l.employmentType }
func (l LoanRecord) EmploymentYears() float64       { return l.employmentYears }
func (l LoanRecord) Purpose() string                { return l.purpose }
func (l LoanRecord) Status() valueobject.LoanStatus { return l.status }
func (l LoanRecord) CreatedAt() time.Time           { return l.createdAt }
func (l LoanRecord) UpdatedAt() time.Time           { return l.updatedAt }

// DomainEvents returns a copy of uncommitted domain events.
func (l LoanRecord) DomainEvents() []event.DomainEvent { return copyEvents(l.domainEvents) }

// ClearDomainEvents returns a copy without pending events.
func (l LoanRecord) ClearDomainEvents() LoanRecord {
	out := l
	out.domainEvents = nil
	return out
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if len(src) == 0 {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}

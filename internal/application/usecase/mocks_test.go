package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/decision-engine/internal/domain/event"
	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/port"
	"github.com/bibbank/decision-engine/internal/domain/valueobject"
)

// --- Mock implementations ---

type mockLoanRepository struct {
	mu               sync.Mutex
	loans            map[string]model.LoanRecord
	findByIDFunc     func(ctx context.Context, id string) (model.LoanRecord, error)
	updateStatusFunc func(ctx context.Context, id string, next, expected valueobject.LoanStatus, at time.Time) error
	transitions      int
}

func newMockLoanRepository(loans ...model.LoanRecord) *mockLoanRepository {
	m := &mockLoanRepository{loans: make(map[string]model.LoanRecord)}
	for _, l := range loans {
		m.loans[l.ID()] = l
	}
	return m
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id string) (model.LoanRecord, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loans[id]
	if !ok {
		return model.LoanRecord{}, port.ErrLoanNotFound
	}
	return l, nil
}

func (m *mockLoanRepository) UpdateStatus(ctx context.Context, id string, next, expected valueobject.LoanStatus, at time.Time) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, next, expected, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.loans[id]
	if !ok {
		return port.ErrLoanNotFound
	}
	if !l.Status().Equal(expected) {
		return port.ErrStatusConflict
	}
	m.loans[id] = model.ReconstructLoanRecord(
		l.ID(), l.UserID(), l.Amount(), l.TenureMonths(), l.MonthlyIncome(), l.ExistingDebts(),
		l.CreditScore(), l.EmploymentType(), l.EmploymentYears(), l.Purpose(), next, l.CreatedAt(), at,
	)
	m.transitions++
	return nil
}

func (m *mockLoanRepository) status(id string) valueobject.LoanStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loans[id].Status()
}

type mockDecisionRepository struct {
	mu             sync.Mutex
	records        []model.DecisionRecord
	insertFunc     func(ctx context.Context, rec model.DecisionRecord) (model.DecisionRecord, error)
	findRecentFunc func(ctx context.Context, loanID, inputHash string, since time.Time) (*model.DecisionRecord, error)
	deleteFunc     func(ctx context.Context, id string) error
	deleted        []string
}

func (m *mockDecisionRepository) Insert(ctx context.Context, rec model.DecisionRecord) (model.DecisionRecord, error) {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *mockDecisionRepository) FindRecent(ctx context.Context, loanID, inputHash string, since time.Time) (*model.DecisionRecord, error) {
	if m.findRecentFunc != nil {
		return m.findRecentFunc(ctx, loanID, inputHash, since)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *model.DecisionRecord
	for i := range m.records {
		r := m.records[i]
		if r.LoanID() != loanID || r.InputHash() != inputHash || r.CreatedAt().Before(since) {
			continue
		}
		if found == nil || r.CreatedAt().After(found.CreatedAt()) {
			found = &r
		}
	}
	return found, nil
}

func (m *mockDecisionRepository) ListByLoan(_ context.Context, loanID string) ([]model.DecisionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.DecisionRecord
	for _, r := range m.records {
		if r.LoanID() == loanID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, nil
}

func (m *mockDecisionRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	for i, r := range m.records {
		if r.ID() == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockDecisionRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

type mockAuthorizer struct {
	isOwnerOrAdminFunc func(ctx context.Context, loan model.LoanRecord, actorID string) (bool, error)
}

func (m *mockAuthorizer) IsOwnerOrAdmin(ctx context.Context, loan model.LoanRecord, actorID string) (bool, error) {
	if m.isOwnerOrAdminFunc != nil {
		return m.isOwnerOrAdminFunc(ctx, loan, actorID)
	}
	return loan.IsOwnedBy(actorID), nil
}

type mockAuditSink struct {
	mu         sync.Mutex
	recordFunc func(ctx context.Context, entry port.AuditEntry) error
	entries    []port.AuditEntry
}

func (m *mockAuditSink) Record(ctx context.Context, entry port.AuditEntry) error {
	m.mu.Lock()
	m.entries = append(m.entries, entry)
	m.mu.Unlock()
	if m.recordFunc != nil {
		return m.recordFunc(ctx, entry)
	}
	return nil
}

type mockEventPublisher struct {
	mu              sync.Mutex
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type recordedDecision struct {
	model    string
	decision string
	score    float64
	cached   bool
}

type mockDecisionMetrics struct {
	mu       sync.Mutex
	recorded []recordedDecision
}

func (m *mockDecisionMetrics) RecordDecision(_ context.Context, mdl, decision string, score float64, cached bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, recordedDecision{mdl, decision, score, cached})
}

type panickingScorer struct{}

func (panickingScorer) Model() valueobject.ScoringModel { return valueobject.ScoringModelRules }

func (panickingScorer) Score(model.ExtractedFeatures) model.ScoringResult {
	panic("boom")
}

// --- Fixtures ---

var fixedNow = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testLoan is a strong profile that the rule-based model approves.
func testLoan(id, owner string, status valueobject.LoanStatus) model.LoanRecord {
	created := fixedNow.Add(-time.Hour)
	return model.ReconstructLoanRecord(
		id, owner,
		decimal.NewFromInt(1_000_000), 60,
		decimal.NewFromInt(100_000), decimal.NewFromInt(10_000),
		800, "salaried", 5, "home",
		status, created, created,
	)
}

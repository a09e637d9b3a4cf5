package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/valueobject"
	pkgpostgres "github.com/bibbank/decision-engine/pkg/postgres"
)

// DecisionRepo implements port.DecisionRepository.
type DecisionRepo struct {
	db pkgpostgres.Querier
}

// NewDecisionRepo creates a new repository backed by PostgreSQL.
func NewDecisionRepo(db pkgpostgres.Querier) *DecisionRepo {
	return &DecisionRepo{db: db}
}

const decisionColumns = `id, loan_id, decision, score, reasons, input_hash, created_at`

// Insert persists a new decision record and returns it as stored.
func (r *DecisionRepo) Insert(ctx context.Context, rec model.DecisionRecord) (model.DecisionRecord, error) {
	query := `
		INSERT INTO decisions (` + decisionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + decisionColumns
	stored, err := scanDecision(r.db.QueryRow(ctx, query,
		rec.ID(), rec.LoanID(), rec.Decision().String(), rec.Score(),
		rec.Reasons(), rec.InputHash(), rec.CreatedAt(),
	))
	if err != nil {
		return model.DecisionRecord{}, fmt.Errorf("insert decision: %w", err)
	}
	return stored, nil
}

// FindRecent returns the newest decision for the loan and input hash created
// at or after since. It returns nil when there is none.
func (r *DecisionRepo) FindRecent(
	ctx context.Context,
	loanID, inputHash string,
	since time.Time,
) (*model.DecisionRecord, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM decisions
		WHERE loan_id = $1 AND input_hash = $2 AND created_at >= $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	rec, err := scanDecision(r.db.QueryRow(ctx, query, loanID, inputHash, since))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find recent decision: %w", err)
	}
	return &rec, nil
}

// ListByLoan returns every decision for the loan, newest first.
func (r *DecisionRepo) ListByLoan(ctx context.Context, loanID string) ([]model.DecisionRecord, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM decisions
		WHERE loan_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var result []model.DecisionRecord
	for rows.Next() {
		rec, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Delete removes a decision record.
func (r *DecisionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM decisions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete decision: %w", err)
	}
	return nil
}

func scanDecision(s scannable) (model.DecisionRecord, error) {
	var (
		id, loanID, decisionStr, inputHash string
		score                              float64
		reasons                            []string
		createdAt                          time.Time
	)
	if err := s.Scan(&id, &loanID, &decisionStr, &score, &reasons, &inputHash, &createdAt); err != nil {
		return model.DecisionRecord{}, err
	}

	decision, err := valueobject.NewDecision(decisionStr)
	if err != nil {
		return model.DecisionRecord{}, fmt.Errorf("parse decision: %w", err)
	}

	return model.ReconstructDecisionRecord(
		id, loanID, decision, score, reasons, inputHash, createdAt.UTC(),
	), nil
}

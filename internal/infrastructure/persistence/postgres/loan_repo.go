package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/port"
	"github.com/bibbank/decision-engine/internal/domain/valueobject"
	pkgpostgres "github.com/bibbank/decision-engine/pkg/postgres"
)

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	db pkgpostgres.Querier
}

// NewLoanRepo creates a new repository backed by PostgreSQL.
func NewLoanRepo(db pkgpostgres.Querier) *LoanRepo {
	return &LoanRepo{db: db}
}

// FindByID retrieves a single loan application.
func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.LoanRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.LoanRecord{}, port.ErrLoanNotFound
	}

	query := `
		SELECT id, user_id, amount, tenure_months, monthly_income, existing_debts,
		       credit_score, employment_type, employment_years, purpose, status,
		       created_at, updated_at
		FROM loan_applications
		WHERE id = $1
	`
	loan, err := scanLoan(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.LoanRecord{}, port.ErrLoanNotFound
	}
	return loan, err
}

// UpdateStatus moves the loan to next only while it is still in expected.
func (r *LoanRepo) UpdateStatus(
	ctx context.Context,
	id string,
	next, expected valueobject.LoanStatus,
	at time.Time,
) error {
	query := `
		UPDATE loan_applications
		SET status = $2, updated_at = $4
		WHERE id = $1 AND status = $3
	`
	tag, err := r.db.Exec(ctx, query, id, next.String(), expected.String(), at)
	if err != nil {
		return fmt.Errorf("update loan status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM loan_applications WHERE id = $1)`, id).
		Scan(&exists); err != nil {
		return fmt.Errorf("check loan existence: %w", err)
	}
	if !exists {
		return port.ErrLoanNotFound
	}
	return port.ErrStatusConflict
}

// ---------------------------------------------------------------------------
// scan helpers
// ---------------------------------------------------------------------------

type scannable interface {
	Scan(dest ...any) error
}

func scanLoan(s scannable) (model.LoanRecord, error) {
	var (
		id, userID                string
		amount, income, debts     decimal.Decimal
		tenureMonths, creditScore int
		employmentType, purpose   string
		employmentYears           float64
		statusStr                 string
		createdAt, updatedAt      time.Time
	)

	err := s.Scan(
		&id, &userID, &amount, &tenureMonths, &income, &debts,
		&creditScore, &employmentType, &employmentYears, &purpose, &statusStr,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.LoanRecord{}, err
		}
		return model.LoanRecord{}, fmt.Errorf("scan loan application: %w", err)
	}

	status, err := valueobject.NewLoanStatus(statusStr)
	if err != nil {
		return model.LoanRecord{}, fmt.Errorf("parse status: %w", err)
	}

	return model.ReconstructLoanRecord(
		id, userID,
		amount, tenureMonths,
		income, debts,
		creditScore, employmentType, employmentYears, purpose,
		status, createdAt, updatedAt,
	), nil
}

//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/port"
	"github.com/bibbank/decision-engine/internal/domain/valueobject"
	"github.com/bibbank/decision-engine/internal/infrastructure/persistence/postgres"
	"github.com/bibbank/decision-engine/internal/infrastructure/persistence/postgres/migrations"
	"github.com/bibbank/decision-engine/pkg/testutil"
)

func setupDB(t *testing.T) *testutil.PostgresContainer {
	t.Helper()
	ctx := context.Background()

	pc := testutil.NewPostgresContainer(ctx, t)
	pc.RunMigrations(t, migrations.FS)

	_, err := pc.Pool.Exec(ctx,
		`INSERT INTO profiles (id, email, role) VALUES ($1, 'user@example.com', 'user'), ($2, 'admin@example.com', 'admin')`,
		testutil.TestApplicantID, testutil.TestAdminID)
	require.NoError(t, err)

	_, err = pc.Pool.Exec(ctx, `
		INSERT INTO loan_applications (
			id, user_id, amount, tenure_months, monthly_income, existing_debts,
			credit_score, employment_type, employment_years, purpose, status
		) VALUES ($1, $2, 1000000, 24, 100000, 10000, 800, 'salaried', 5.5, 'home', 'submitted')`,
		testutil.TestLoanID, testutil.TestApplicantID)
	require.NoError(t, err)

	return pc
}

func TestLoanRepo_Integration(t *testing.T) {
	pc := setupDB(t)
	repo := postgres.NewLoanRepo(pc.Pool)
	ctx := context.Background()
	loanID := testutil.TestLoanID.String()

	loan, err := repo.FindByID(ctx, loanID)
	require.NoError(t, err)
	assert.Equal(t, testutil.TestApplicantID.String(), loan.UserID())
	assert.Equal(t, "1000000", loan.Amount().String())
	assert.Equal(t, 5.5, loan.EmploymentYears())
	assert.Equal(t, valueobject.LoanStatusSubmitted, loan.Status())

	_, err = repo.FindByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, port.ErrLoanNotFound)
	_, err = repo.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, port.ErrLoanNotFound)

	now := time.Now().UTC()
	require.NoError(t, repo.UpdateStatus(ctx, loanID,
		valueobject.LoanStatusUnderReview, valueobject.LoanStatusSubmitted, now))

	err = repo.UpdateStatus(ctx, loanID, valueobject.LoanStatusApproved, valueobject.LoanStatusSubmitted, now)
	assert.ErrorIs(t, err, port.ErrStatusConflict)

	err = repo.UpdateStatus(ctx, uuid.NewString(), valueobject.LoanStatusApproved, valueobject.LoanStatusSubmitted, now)
	assert.ErrorIs(t, err, port.ErrLoanNotFound)
}

func TestDecisionRepo_Integration(t *testing.T) {
	pc := setupDB(t)
	repo := postgres.NewDecisionRepo(pc.Pool)
	ctx := context.Background()
	loanID := testutil.TestLoanID.String()
	now := time.Now().UTC().Truncate(time.Microsecond)

	rec, err := model.NewDecisionRecord(loanID, model.ScoringResult{
		Score:    0.65,
		Decision: valueobject.DecisionNeedsReview,
		Reasons:  []string{"a", "b", "c"},
	}, "hash-1", now)
	require.NoError(t, err)

	stored, err := repo.Insert(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ID(), stored.ID())
	assert.Equal(t, []string{"a", "b", "c"}, stored.Reasons())

	found, err := repo.FindRecent(ctx, loanID, "hash-1", now.Add(-time.Minute))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, rec.ID(), found.ID())

	missing, err := repo.FindRecent(ctx, loanID, "hash-1", now.Add(time.Second))
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.FindRecent(ctx, loanID, "other-hash", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := repo.ListByLoan(ctx, loanID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, rec.ID()))
	list, err = repo.ListByLoan(ctx, loanID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProfileAndAuditRepos_Integration(t *testing.T) {
	pc := setupDB(t)
	ctx := context.Background()

	profiles := postgres.NewProfileRepo(pc.Pool)
	roles, err := profiles.RolesOf(ctx, testutil.TestAdminID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"admin"}, roles)

	roles, err = profiles.RolesOf(ctx, testutil.TestOtherUserID.String())
	require.NoError(t, err)
	assert.Empty(t, roles)

	audit := postgres.NewAuditLogRepo(pc.Pool)
	entry := port.AuditEntry{
		ID:       uuid.NewString(),
		ActorID:  testutil.TestApplicantID.String(),
		Action:   "decision.create",
		Entity:   "loan",
		EntityID: testutil.TestLoanID.String(),
		Metadata: map[string]any{"decision": "approve"},
		At:       time.Now().UTC(),
	}
	require.NoError(t, audit.Record(ctx, entry))
	require.NoError(t, audit.Record(ctx, entry), "redelivery is ignored")

	var count int
	require.NoError(t, pc.Pool.QueryRow(ctx, `SELECT count(*) FROM audit_logs`).Scan(&count))
	assert.Equal(t, 1, count)
}

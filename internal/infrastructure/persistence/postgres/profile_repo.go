package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	pkgpostgres "github.com/bibbank/decision-engine/pkg/postgres"
)

// ProfileRepo implements port.RoleDirectory over the profiles table.
type ProfileRepo struct {
	db pkgpostgres.Querier
}

// NewProfileRepo creates a new repository backed by PostgreSQL.
func NewProfileRepo(db pkgpostgres.Querier) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// RolesOf returns the actor's profile role. Unknown actors hold no roles.
func (r *ProfileRepo) RolesOf(ctx context.Context, actorID string) ([]string, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return nil, nil
	}

	var role string
	err := r.db.QueryRow(ctx, `SELECT role FROM profiles WHERE id = $1`, actorID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile role: %w", err)
	}
	return []string{role}, nil
}

package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	domain "github.com/bibbank/decision-engine/internal/domain/model"
	"github.com/bibbank/decision-engine/internal/domain/port"
)

//go:embed model.conf
var modelText string

const (
	ObjectLoan = "loan"

	ActionLoanDecide = "decide"
	ActionLoanView   = "view"

	RoleAdmin = "admin"
)

// defaultPolicies grants administrators access to every loan. Owners are
// matched directly by the model and need no policy row.
var defaultPolicies = [][]string{
	{RoleAdmin, ObjectLoan, ActionLoanDecide},
	{RoleAdmin, ObjectLoan, ActionLoanView},
}

// NewEnforcer builds an in-memory enforcer seeded with the default policies.
func NewEnforcer() (*casbin.SyncedEnforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("parse authorization model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}
	if _, err := enforcer.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("seed policies: %w", err)
	}
	return enforcer, nil
}

// Authorizer implements port.Authorizer: an actor may act on a loan it owns,
// or on any loan when it holds the admin role.
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
	roles    port.RoleDirectory
}

func NewAuthorizer(enforcer *casbin.SyncedEnforcer, roles port.RoleDirectory) *Authorizer {
	return &Authorizer{enforcer: enforcer, roles: roles}
}

func (a *Authorizer) IsOwnerOrAdmin(ctx context.Context, loan domain.LoanRecord, actorID string) (bool, error) {
	return a.Authorize(ctx, loan, actorID, ActionLoanDecide)
}

// Authorize evaluates action on loan for actorID.
func (a *Authorizer) Authorize(ctx context.Context, loan domain.LoanRecord, actorID, action string) (bool, error) {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return false, nil
	}
	if loan.IsOwnedBy(actorID) {
		return true, nil
	}

	roles, err := a.roles.RolesOf(ctx, actorID)
	if err != nil {
		return false, fmt.Errorf("resolve roles: %w", err)
	}
	for _, role := range roles {
		ok, err := a.enforcer.Enforce(actorID, loan.UserID(), strings.ToLower(role), ObjectLoan, action)
		if err != nil {
			return false, fmt.Errorf("enforce: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

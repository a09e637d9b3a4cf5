package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the JWT claims issued by the gateway. UserID is the actor on
// whose behalf a request runs.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Roles  []string  `json:"roles"`
}

// ActorID returns the authenticated user ID, falling back to the subject for
// tokens that omit user_id.
func (c Claims) ActorID() string {
	if c.UserID != uuid.Nil {
		return c.UserID.String()
	}
	return c.Subject
}

// HasRole checks if the claims include the specified role.
func (c Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/monterra-as/installer-api/internal/domain"
)

// UserContext is the authenticated identity attached to a request after
// token validation.
type UserContext struct {
	UserID      uuid.UUID
	Username    string
	DisplayName string
	Email       string
	Role        domain.Role
}

// IsAdmin reports whether the user carries administrative rights.
func (u *UserContext) IsAdmin() bool {
	return u.Role.IsAdmin()
}

// Can reports whether the user's role grants a capability.
func (u *UserContext) Can(capability Capability) bool {
	return RoleCan(u.Role, capability)
}

type ctxKey int

const userKey ctxKey = iota

// WithUserContext attaches the authenticated user to a context.
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// FromContext returns the authenticated user, if any.
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userKey).(*UserContext)
	return user, ok
}

package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/mateovidal/tradewind-backend/pkg/enums"
)

type contextKey string

const ctxIdentity contextKey = "identity"

// Identity carries the authenticated caller through the request context.
type Identity struct {
	UserID   uuid.UUID
	Email    string
	FullName string
	Role     enums.UserRole
}

// IdentityFromContext returns the authenticated caller, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	ident, ok := ctx.Value(ctxIdentity).(Identity)
	return ident, ok
}

// WithIdentity injects the caller identity into the context.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxIdentity, ident)
}

package controllers

import (
	"context"

	"github.com/mateovidal/tradewind-backend/api/middleware"
	pkgerrors "github.com/mateovidal/tradewind-backend/pkg/errors"
)

// callerIdentity pulls the authenticated caller or fails with 401. Handlers
// behind the auth middleware should never hit the error path.
func callerIdentity(ctx context.Context) (middleware.Identity, error) {
	identity, ok := middleware.IdentityFromContext(ctx)
	if !ok {
		return middleware.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return identity, nil
}

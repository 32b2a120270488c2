package auth

import (
	"context"

	"notepad/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the request identity, or nil for guests.
func IdentityFromContext(ctx context.Context) *models.Identity {
	id, ok := ctx.Value(identityKey).(models.Identity)
	if !ok {
		return nil
	}
	return &id
}

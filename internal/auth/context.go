package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/quillfeed/quillfeed/internal/model"
)

// Identity is the authenticated identity attached to a request after the
// resolver has verified a token and loaded the user row. It is published
// once, read-only, and does not outlive the request.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Role     model.Role
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityKey contextKey = "identity"

// ContextWithIdentity attaches an Identity to the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext retrieves the Identity from the context.
// The second return value is false for unauthenticated requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// MustIdentityFromContext retrieves the Identity from the context.
// Panics if absent (use only behind the Authenticate middleware).
func MustIdentityFromContext(ctx context.Context) Identity {
	id, ok := IdentityFromContext(ctx)
	if !ok {
		panic("identity not found in context - ensure auth middleware is applied")
	}
	return id
}

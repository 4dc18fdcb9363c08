package guard

import (
	"context"

	"github.com/denizatac/gatehouse/token"
)

// Identity is the request-scoped result of a successful verification.
// It lives only for the duration of the request that produced it and
// is never persisted.
type Identity struct {
	UserID   int64
	Email    string
	Username string
	IsAdmin  bool
}

func identityFromClaims(c *token.Claims) Identity {
	return Identity{
		UserID:   c.UserID,
		Email:    c.Email,
		Username: c.Username,
		IsAdmin:  c.IsAdmin,
	}
}

// contextKey is an unexported type for context keys to prevent collisions
type contextKey string

const (
	identityContextKey  contextKey = "github.com/denizatac/gatehouse/guard:identity"
	requestIDContextKey contextKey = "github.com/denizatac/gatehouse/guard:request_id"
)

// WithIdentity stores a verified identity in the request context.
// The identity is immutable and must not be modified downstream.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFrom retrieves the verified identity from the request context.
// Returns a zero Identity and false if no guard ran on this request.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	return id, ok
}

// MustIdentity retrieves the identity and panics if absent. Use only
// behind a guard that is known to have run.
func MustIdentity(ctx context.Context) Identity {
	id, ok := IdentityFrom(ctx)
	if !ok {
		panic("guard: identity not found in context")
	}
	return id
}

// WithRequestID stores a request ID in context for correlation
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFrom retrieves the request ID from the context
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDContextKey).(string)
	return id, ok
}

package auth

import (
	"context"

	"github.com/google/uuid"
)

var principalCtxKey = &contextKey{"principal"}
var requestIDCtxKey = &contextKey{"request-id"}

type contextKey struct {
	name string
}

// WithRequestID seeds the context with a correlation id. An empty id
// generates a fresh one.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.NewString()
	}
	return context.WithValue(ctx, requestIDCtxKey, id)
}

// RequestIDFromContext finds the correlation id in the context
func RequestIDFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(requestIDCtxKey).(string)
	return raw, ok
}

// EnsureRequestID returns a context that is guaranteed to carry a
// correlation id, along with the id itself.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id, ok := RequestIDFromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return context.WithValue(ctx, requestIDCtxKey, id), id
}

// WithPrincipal sets the authenticated user in the given context. The
// principal lives exactly as long as the request context does; it is never
// kept in process-wide state.
func WithPrincipal(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, principalCtxKey, user)
}

// PrincipalFromContext finds the authenticated user from the context
func PrincipalFromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(principalCtxKey).(*User)
	return raw, ok
}

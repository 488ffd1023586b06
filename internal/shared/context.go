package shared

import "context"

// Identity describes the authenticated caller injected per request.
type Identity struct {
	UserID   int64
	Username string
	IsAdmin  bool
}

type contextKey string

const identityKey contextKey = "identity"

// ContextWithIdentity stores the caller identity on the context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the caller identity, if present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

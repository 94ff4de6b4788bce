package auth

import "context"

// Identity is the authenticated caller attached to the request context.
type Identity struct {
	UserID int64
	Email  string
}

// identityContextKey is an unexported key type to avoid context key collisions.
type identityContextKey struct{}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the authenticated identity set by the
// auth middleware. The second return value reports whether one was set.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(Identity)
	return id, ok
}

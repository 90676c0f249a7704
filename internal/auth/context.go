package auth

import "context"

type ctxKey struct{}

// WithUsername stashes the authenticated username in the request context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ctxKey{}, username)
}

// UsernameFromContext returns the authenticated username, or "" when the
// request did not pass the middleware.
func UsernameFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}

package session

import "context"

type contextKey struct{}

// WithScope pins outbound calls made with the returned context to one
// session, overriding the default customer-first resolution.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, contextKey{}, scope)
}

// ScopeFromContext returns the pinned session scope, if any.
func ScopeFromContext(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(contextKey{}).(Scope)
	return scope, ok
}

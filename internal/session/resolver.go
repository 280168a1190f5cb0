package session

import "context"

// AuthorizationHeader resolves the bearer header for an outbound call.
//
// When the context pins a scope (WithScope), only that session is consulted.
// Otherwise the customer session takes precedence and the admin session is
// the fallback. If neither holds an access token, the call goes out
// unauthenticated. Pure read; no side effects.
func (s *Sessions) AuthorizationHeader(ctx context.Context) (string, bool) {
	if scope, ok := ScopeFromContext(ctx); ok {
		if set, ok := s.Get(ctx, scope); ok {
			return "Bearer " + set.AccessToken, true
		}
		return "", false
	}

	if set, ok := s.Get(ctx, ScopeCustomer); ok {
		return "Bearer " + set.AccessToken, true
	}
	if set, ok := s.Get(ctx, ScopeAdmin); ok {
		return "Bearer " + set.AccessToken, true
	}
	return "", false
}

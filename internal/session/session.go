// Package session tracks the two identity contexts the client can hold at
// once: a customer session for the storefront and an admin session for the
// management console. Both live in the same durable store under fixed keys
// shared with the legacy web client.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/ShopfrontGo/internal/domain"
	"github.com/utafrali/ShopfrontGo/internal/store"
)

// Scope identifies one of the two independent sessions.
type Scope string

const (
	ScopeCustomer Scope = "customer"
	ScopeAdmin    Scope = "admin"
)

// Storage keys. These must remain stable: other tools read the same store.
const (
	keyCustomerAccess  = "user_access_token"
	keyCustomerRefresh = "user_refresh_token"
	keyCustomerProfile = "user_info"

	// The admin keys double as the legacy shared token keys predating the
	// dual-session split.
	keyAdminAccess  = "access_token"
	keyAdminRefresh = "refresh_token"
	keyAdminProfile = "admin_user"
)

func keysFor(scope Scope) (access, refresh, profile string) {
	if scope == ScopeAdmin {
		return keyAdminAccess, keyAdminRefresh, keyAdminProfile
	}
	return keyCustomerAccess, keyCustomerRefresh, keyCustomerProfile
}

// Sessions exposes the credential store as two named credential sets.
type Sessions struct {
	store  store.Store
	logger *slog.Logger
}

// NewSessions creates a session view over the given store.
func NewSessions(st store.Store, logger *slog.Logger) *Sessions {
	return &Sessions{store: st, logger: logger}
}

// Get reads the credential set for the given scope. The boolean reports
// whether a usable access token is present; the returned set still carries
// whatever fields were found (a refresh token can outlive its access token).
func (s *Sessions) Get(ctx context.Context, scope Scope) (domain.CredentialSet, bool) {
	accessKey, refreshKey, profileKey := keysFor(scope)

	var set domain.CredentialSet
	set.AccessToken = s.read(ctx, accessKey)
	set.RefreshToken = s.read(ctx, refreshKey)

	if raw := s.read(ctx, profileKey); raw != "" {
		var profile domain.UserProfile
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			s.logger.Warn("discarding unreadable stored profile",
				slog.String("scope", string(scope)),
				slog.String("error", err.Error()),
			)
		} else {
			set.Profile = &profile
		}
	}

	return set, set.Present()
}

// Set persists a full credential set for the given scope.
func (s *Sessions) Set(ctx context.Context, scope Scope, set domain.CredentialSet) error {
	accessKey, refreshKey, profileKey := keysFor(scope)

	if err := s.store.Set(ctx, accessKey, set.AccessToken); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if err := s.store.Set(ctx, refreshKey, set.RefreshToken); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	if set.Profile != nil {
		raw, err := json.Marshal(set.Profile)
		if err != nil {
			return fmt.Errorf("encode profile: %w", err)
		}
		if err := s.store.Set(ctx, profileKey, string(raw)); err != nil {
			return fmt.Errorf("store profile: %w", err)
		}
	}
	return nil
}

// Clear removes all three fields of the given scope's credential set.
func (s *Sessions) Clear(ctx context.Context, scope Scope) error {
	accessKey, refreshKey, profileKey := keysFor(scope)

	var errs []error
	for _, key := range []string{accessKey, refreshKey, profileKey} {
		if err := s.store.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ClearAll destroys both sessions entirely.
func (s *Sessions) ClearAll(ctx context.Context) error {
	return errors.Join(
		s.Clear(ctx, ScopeCustomer),
		s.Clear(ctx, ScopeAdmin),
	)
}

// ApplyRefreshedTokens installs a refreshed access token under the customer
// key and mirrors it to the legacy shared access-token key, so any reader of
// either key observes the new credential. The refresh token is only replaced
// when the backend issued a new one.
func (s *Sessions) ApplyRefreshedTokens(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.store.Set(ctx, keyCustomerAccess, accessToken); err != nil {
		return fmt.Errorf("store refreshed access token: %w", err)
	}
	if err := s.store.Set(ctx, keyAdminAccess, accessToken); err != nil {
		return fmt.Errorf("mirror refreshed access token: %w", err)
	}
	if refreshToken != "" {
		if err := s.store.Set(ctx, keyCustomerRefresh, refreshToken); err != nil {
			return fmt.Errorf("store refreshed refresh token: %w", err)
		}
	}
	return nil
}

func (s *Sessions) read(ctx context.Context, key string) string {
	v, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("credential store read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return ""
	}
	return v
}

// Package auth owns the login/logout lifecycle for the two sessions. The
// controllers are consumers of the request gateway, not part of it: the
// gateway only reaches them indirectly, by clearing the store they own.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/utafrali/ShopfrontGo/internal/domain"
	"github.com/utafrali/ShopfrontGo/internal/session"
	"github.com/utafrali/ShopfrontGo/pkg/httpclient"
	"github.com/utafrali/ShopfrontGo/pkg/validator"
)

// Endpoints holds the absolute URLs of the auth endpoints.
type Endpoints struct {
	Login   string
	Logout  string
	Profile string
}

// Controller manages one session's login/logout lifecycle.
type Controller struct {
	client    session.Doer
	sessions  *session.Sessions
	scope     session.Scope
	staffOnly bool
	endpoints Endpoints
	logger    *slog.Logger
}

// NewAdminController creates the controller for the management console
// session. Logins are accepted only for ADMIN and MANAGER profiles.
func NewAdminController(client session.Doer, sessions *session.Sessions, endpoints Endpoints, logger *slog.Logger) *Controller {
	return &Controller{
		client:    client,
		sessions:  sessions,
		scope:     session.ScopeAdmin,
		staffOnly: true,
		endpoints: endpoints,
		logger:    logger,
	}
}

// NewCustomerController creates the controller for the storefront session.
// Any role may log in.
func NewCustomerController(client session.Doer, sessions *session.Sessions, endpoints Endpoints, logger *slog.Logger) *Controller {
	return &Controller{
		client:    client,
		sessions:  sessions,
		scope:     session.ScopeCustomer,
		endpoints: endpoints,
		logger:    logger,
	}
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login authenticates against the backend and persists the credential set.
//
// It returns (false, nil) when the backend confirmed the identity but the
// role-gating policy rejected it: valid credentials were issued, yet nothing
// is persisted. Credential or transport failures return an error.
func (c *Controller) Login(ctx context.Context, email, password string) (bool, error) {
	input := loginInput{Email: email, Password: password}
	if err := validator.Validate(input); err != nil {
		return false, err
	}

	// Pin the scope so an existing session on the other scope cannot leak
	// into the login exchange.
	ctx = session.WithScope(ctx, c.scope)

	accessToken, refreshToken, err := c.issueCredentials(ctx, input)
	if err != nil {
		return false, err
	}

	profile, err := c.fetchProfile(ctx, accessToken)
	if err != nil {
		return false, err
	}

	if c.staffOnly && !domain.IsStaffRole(profile.Role) {
		c.logger.Info("login rejected by role policy",
			slog.String("scope", string(c.scope)),
			slog.String("role", profile.Role),
		)
		return false, nil
	}

	set := domain.CredentialSet{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Profile:      profile,
	}
	if err := c.sessions.Set(ctx, c.scope, set); err != nil {
		return false, fmt.Errorf("persist session: %w", err)
	}

	c.logger.Info("login succeeded",
		slog.String("scope", string(c.scope)),
		slog.String("role", profile.Role),
	)
	return true, nil
}

// Logout best-effort revokes the refresh token at the backend, then
// unconditionally clears the local session regardless of the revocation
// outcome.
func (c *Controller) Logout(ctx context.Context) error {
	ctx = session.WithScope(ctx, c.scope)

	if set, _ := c.sessions.Get(ctx, c.scope); set.RefreshToken != "" {
		if err := c.revoke(ctx, set.RefreshToken); err != nil {
			c.logger.Warn("refresh token revocation failed, clearing local session anyway",
				slog.String("scope", string(c.scope)),
				slog.String("error", err.Error()),
			)
		}
	}

	return c.sessions.Clear(ctx, c.scope)
}

// Active reports whether this controller's session holds an access token.
// Route guards read this; they never inspect the token itself.
func (c *Controller) Active(ctx context.Context) bool {
	_, ok := c.sessions.Get(ctx, c.scope)
	return ok
}

// Profile returns the stored profile of this controller's session, if any.
func (c *Controller) Profile(ctx context.Context) (*domain.UserProfile, bool) {
	set, ok := c.sessions.Get(ctx, c.scope)
	if !ok || set.Profile == nil {
		return nil, false
	}
	return set.Profile, true
}

func (c *Controller) issueCredentials(ctx context.Context, input loginInput) (access, refresh string, err error) {
	resp, err := c.postJSON(ctx, c.endpoints.Login, input)
	if err != nil {
		return "", "", fmt.Errorf("login call: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", "", httpclient.ParseResponseError(resp, "login")
	}

	raw, err := readBody(resp)
	if err != nil {
		return "", "", err
	}

	access, refresh, err = session.DecodeTokenPair(raw)
	if err != nil {
		return "", "", err
	}
	if access == "" {
		return "", "", fmt.Errorf("login response carried no access token")
	}
	return access, refresh, nil
}

// fetchProfile loads the authenticated user's profile using the freshly
// issued access token, bypassing the resolver entirely.
func (c *Controller) fetchProfile(ctx context.Context, accessToken string) (*domain.UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoints.Profile, nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("profile call: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, "profile")
	}

	raw, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	// The profile arrives either wrapped in the data envelope or bare.
	var envelope struct {
		Data *domain.UserProfile `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil && envelope.Data.ID != "" {
		return envelope.Data, nil
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("profile response carried no user")
	}
	return &profile, nil
}

func (c *Controller) revoke(ctx context.Context, refreshToken string) error {
	resp, err := c.postJSON(ctx, c.endpoints.Logout, map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("revocation returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Controller) postJSON(ctx context.Context, url string, payload any) (*http.Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	return c.client.Do(ctx, req)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return raw, nil
}

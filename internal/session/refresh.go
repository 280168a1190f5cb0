package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// Doer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy this.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Refresher exchanges the stored customer refresh token for a new token pair.
//
// Only the customer session has a silent refresh path; an expired admin
// session requires a fresh login. Failures are never surfaced as errors, only
// as a false result, so callers escalate by policy rather than by exception.
type Refresher struct {
	sessions *Sessions
	client   Doer
	endpoint string
	logger   *slog.Logger

	group singleflight.Group
}

// NewRefresher creates a refresher posting to the given absolute endpoint URL.
func NewRefresher(sessions *Sessions, client Doer, endpoint string, logger *slog.Logger) *Refresher {
	return &Refresher{
		sessions: sessions,
		client:   client,
		endpoint: endpoint,
		logger:   logger,
	}
}

// Refresh attempts a silent token refresh and reports whether a new access
// token was obtained and stored.
//
// Concurrent callers share a single in-flight exchange: when several requests
// hit 401 at once, only the first issues the refresh call and the rest wait
// for its outcome. The shared exchange runs under the first caller's context.
func (r *Refresher) Refresh(ctx context.Context) bool {
	v, _, _ := r.group.Do("refresh", func() (any, error) {
		return r.refresh(ctx), nil
	})
	ok, _ := v.(bool)
	return ok
}

// tokenFields covers both field-naming conventions the backend has used.
type tokenFields struct {
	AccessToken     string `json:"accessToken"`
	RefreshToken    string `json:"refreshToken"`
	AccessTokenAlt  string `json:"access_token"`
	RefreshTokenAlt string `json:"refresh_token"`
}

func (f tokenFields) access() string {
	if f.AccessToken != "" {
		return f.AccessToken
	}
	return f.AccessTokenAlt
}

func (f tokenFields) refresh() string {
	if f.RefreshToken != "" {
		return f.RefreshToken
	}
	return f.RefreshTokenAlt
}

// tokenEnvelope tolerates tokens at the top level or under a data wrapper.
type tokenEnvelope struct {
	tokenFields
	Data *tokenFields `json:"data"`
}

func (e *tokenEnvelope) tokens() (access, refresh string) {
	access, refresh = e.access(), e.tokenFields.refresh()
	if access == "" && e.Data != nil {
		access, refresh = e.Data.access(), e.Data.refresh()
	}
	return access, refresh
}

// DecodeTokenPair extracts an access/refresh token pair from a response body,
// accepting camelCase or snake_case field names, top-level or nested under
// a data wrapper. The refresh token may legitimately be empty.
func DecodeTokenPair(body []byte) (access, refresh string, err error) {
	var envelope tokenEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", "", fmt.Errorf("decode token response: %w", err)
	}
	access, refresh = envelope.tokens()
	return access, refresh, nil
}

func (r *Refresher) refresh(ctx context.Context) bool {
	set, _ := r.sessions.Get(ctx, ScopeCustomer)
	if set.RefreshToken == "" {
		return false
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": set.RefreshToken})
	if err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		r.logger.Warn("build refresh request", slog.String("error", err.Error()))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		r.logger.Warn("token refresh call failed", slog.String("error", err.Error()))
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Info("token refresh rejected", slog.Int("status", resp.StatusCode))
		return false
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		r.logger.Warn("read refresh response", slog.String("error", err.Error()))
		return false
	}

	access, refresh, err := DecodeTokenPair(raw)
	if err != nil {
		r.logger.Warn("decode refresh response", slog.String("error", err.Error()))
		return false
	}
	if access == "" {
		return false
	}

	// The refreshed credential must be observable before any retry re-reads
	// the store, so a persist failure counts as a failed refresh.
	if err := r.sessions.ApplyRefreshedTokens(ctx, access, refresh); err != nil {
		r.logger.Error("persist refreshed tokens", slog.String("error", err.Error()))
		return false
	}

	r.logger.Debug("token refresh succeeded", slog.Bool("rotated_refresh_token", refresh != ""))
	return true
}

package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ShopfrontGo/internal/domain"
	"github.com/utafrali/ShopfrontGo/internal/session"
	"github.com/utafrali/ShopfrontGo/internal/store"
	apperrors "github.com/utafrali/ShopfrontGo/pkg/errors"
	"github.com/utafrali/ShopfrontGo/pkg/httpclient"
	"github.com/utafrali/ShopfrontGo/pkg/validator"
)

func newAuthFixture(t *testing.T, handler http.Handler) (Endpoints, *session.Sessions, store.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)
	sessions := session.NewSessions(st, slog.Default())

	endpoints := Endpoints{
		Login:   server.URL + "/api/v1/auth/login",
		Logout:  server.URL + "/api/v1/auth/logout",
		Profile: server.URL + "/api/v1/users/me",
	}
	return endpoints, sessions, st
}

func testClient() *httpclient.Client {
	return httpclient.New(httpclient.Config{Timeout: 5 * time.Second, MaxConnsPerHost: 10})
}

func backendWithRole(t *testing.T, role string) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var input struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&input))
		assert.NotEmpty(t, input.Email)
		assert.NotEmpty(t, input.Password)
		_, _ = w.Write([]byte(`{"accessToken":"at-1","refreshToken":"rt-1"}`))
	})
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": "u-1", "fullName": "Jane Doe", "email": "jane@example.com",
			"role": role, "active": true,
		})
	})
	return mux
}

func TestAdminLogin_StaffRoleSucceeds(t *testing.T) {
	endpoints, sessions, st := newAuthFixture(t, backendWithRole(t, domain.RoleManager))
	c := NewAdminController(testClient(), sessions, endpoints, slog.Default())

	ok, err := c.Login(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ctx := context.Background()
	for key, want := range map[string]string{
		"access_token":  "at-1",
		"refresh_token": "rt-1",
	} {
		v, err := st.Get(ctx, key)
		require.NoError(t, err, key)
		assert.Equal(t, want, v, key)
	}

	profile, ok := c.Profile(ctx)
	require.True(t, ok)
	assert.Equal(t, domain.RoleManager, profile.Role)
}

func TestAdminLogin_CustomerRoleRejectedWithoutError(t *testing.T) {
	endpoints, sessions, st := newAuthFixture(t, backendWithRole(t, domain.RoleUser))
	c := NewAdminController(testClient(), sessions, endpoints, slog.Default())

	ok, err := c.Login(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)
	assert.False(t, ok)

	// The backend issued valid tokens, but nothing may be persisted.
	ctx := context.Background()
	for _, key := range []string{"access_token", "refresh_token", "admin_user"} {
		_, err := st.Get(ctx, key)
		assert.ErrorIs(t, err, store.ErrNotFound, key)
	}
	assert.False(t, c.Active(ctx))
}

func TestCustomerLogin_AnyRoleSucceeds(t *testing.T) {
	endpoints, sessions, st := newAuthFixture(t, backendWithRole(t, domain.RoleUser))
	c := NewCustomerController(testClient(), sessions, endpoints, slog.Default())

	ok, err := c.Login(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := st.Get(context.Background(), "user_access_token")
	require.NoError(t, err)
	assert.Equal(t, "at-1", v)
}

func TestLogin_EnvelopedTokenResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"access_token":"at-1","refresh_token":"rt-1"}}`))
	})
	mux.HandleFunc("/api/v1/users/me", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"id":"u-1","role":"USER","active":true}}`))
	})

	endpoints, sessions, st := newAuthFixture(t, mux)
	c := NewCustomerController(testClient(), sessions, endpoints, slog.Default())

	ok, err := c.Login(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := st.Get(context.Background(), "user_access_token")
	require.NoError(t, err)
	assert.Equal(t, "at-1", v)
}

func TestLogin_InvalidCredentialsReturnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_CREDENTIALS","message":"bad password"}}`))
	})

	endpoints, sessions, st := newAuthFixture(t, mux)
	c := NewCustomerController(testClient(), sessions, endpoints, slog.Default())

	ok, err := c.Login(context.Background(), "jane@example.com", "wrong")
	assert.False(t, ok)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = st.Get(context.Background(), "user_access_token")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLogin_RejectsMalformedEmailLocally(t *testing.T) {
	var calls int32
	endpoints, sessions, _ := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	c := NewCustomerController(testClient(), sessions, endpoints, slog.Default())

	ok, err := c.Login(context.Background(), "not-an-email", "secret")
	assert.False(t, ok)

	var verr *validator.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestLogout_RevokesThenClears(t *testing.T) {
	var revoked struct {
		RefreshToken string `json:"refreshToken"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &revoked)
	})

	endpoints, sessions, st := newAuthFixture(t, mux)
	c := NewCustomerController(testClient(), sessions, endpoints, slog.Default())

	ctx := context.Background()
	require.NoError(t, sessions.Set(ctx, session.ScopeCustomer, domain.CredentialSet{AccessToken: "at-1", RefreshToken: "rt-1"}))

	require.NoError(t, c.Logout(ctx))

	assert.Equal(t, "rt-1", revoked.RefreshToken)
	_, err := st.Get(ctx, "user_access_token")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestLogout_ClearsEvenWhenRevocationFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	endpoints, sessions, st := newAuthFixture(t, mux)
	c := NewAdminController(testClient(), sessions, endpoints, slog.Default())

	ctx := context.Background()
	require.NoError(t, sessions.Set(ctx, session.ScopeAdmin, domain.CredentialSet{AccessToken: "at-1", RefreshToken: "rt-1"}))

	require.NoError(t, c.Logout(ctx))

	for _, key := range []string{"access_token", "refresh_token"} {
		_, err := st.Get(ctx, key)
		assert.ErrorIs(t, err, store.ErrNotFound, key)
	}
}

func TestLogout_NoSessionIsNoop(t *testing.T) {
	var calls int32
	endpoints, sessions, _ := newAuthFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	c := NewCustomerController(testClient(), sessions, endpoints, slog.Default())

	require.NoError(t, c.Logout(context.Background()))
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestActive(t *testing.T) {
	endpoints, sessions, _ := newAuthFixture(t, http.NewServeMux())
	c := NewCustomerController(testClient(), sessions, endpoints, slog.Default())

	ctx := context.Background()
	assert.False(t, c.Active(ctx))

	require.NoError(t, sessions.Set(ctx, session.ScopeCustomer, domain.CredentialSet{AccessToken: "at-1"}))
	assert.True(t, c.Active(ctx))
}

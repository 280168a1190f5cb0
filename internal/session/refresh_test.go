package session

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ShopfrontGo/internal/domain"
	"github.com/utafrali/ShopfrontGo/internal/store"
	"github.com/utafrali/ShopfrontGo/pkg/httpclient"
)

func newRefreshFixture(t *testing.T, handler http.HandlerFunc) (*Refresher, *Sessions, store.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)

	sessions := NewSessions(st, slog.Default())
	client := httpclient.New(httpclient.Config{Timeout: 5 * time.Second, MaxConnsPerHost: 10})
	refresher := NewRefresher(sessions, client, server.URL+"/api/v1/auth/refresh", slog.Default())
	return refresher, sessions, st
}

func TestRefresh_NoStoredTokenFailsWithoutNetworkCall(t *testing.T) {
	var calls int32
	refresher, _, _ := newRefreshFixture(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	assert.False(t, refresher.Refresh(context.Background()))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestRefresh_SuccessRotatesBothTokens(t *testing.T) {
	refresher, sessions, st := newRefreshFixture(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"accessToken":"at-2","refreshToken":"rt-2"}`))
	})

	ctx := context.Background()
	require.NoError(t, sessions.Set(ctx, ScopeCustomer, domain.CredentialSet{AccessToken: "at-1", RefreshToken: "rt-1"}))

	assert.True(t, refresher.Refresh(ctx))

	for key, want := range map[string]string{
		"user_access_token":  "at-2",
		"user_refresh_token": "rt-2",
		"access_token":       "at-2",
	} {
		v, err := st.Get(ctx, key)
		require.NoError(t, err, key)
		assert.Equal(t, want, v, key)
	}
}

func TestRefresh_AccessTokenOnlyKeepsStoredRefreshToken(t *testing.T) {
	refresher, sessions, st := newRefreshFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"accessToken":"at-2"}`))
	})

	ctx := context.Background()
	require.NoError(t, sessions.Set(ctx, ScopeCustomer, domain.CredentialSet{AccessToken: "at-1", RefreshToken: "rt-1"}))

	assert.True(t, refresher.Refresh(ctx))

	v, err := st.Get(ctx, "user_refresh_token")
	require.NoError(t, err)
	assert.Equal(t, "rt-1", v)
}

func TestRefresh_DataWrappedResponse(t *testing.T) {
	refresher, sessions, st := newRefreshFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"access_token":"at-2","refresh_token":"rt-2"}}`))
	})

	ctx := context.Background()
	require.NoError(t, sessions.Set(ctx, ScopeCustomer, domain.CredentialSet{AccessToken: "at-1", RefreshToken: "rt-1"}))

	assert.True(t, refresher.Refresh(ctx))

	v, err := st.Get(ctx, "user_access_token")
	require.NoError(t, err)
	assert.Equal(t, "at-2", v)
}

func TestRefresh_RejectedStatusReturnsFalse(t *testing.T) {
	refresher, sessions, st := newRefreshFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	ctx := context.Background()
	require.NoError(t, sessions.Set(ctx, ScopeCustomer, domain.CredentialSet{AccessToken: "at-1", RefreshToken: "rt-expired"}))

	assert.False(t, refresher.Refresh(ctx))

	// The stored credentials are untouched; teardown is the gateway's call.
	v, err := st.Get(ctx, "user_access_token")
	require.NoError(t, err)
	assert.Equal(t, "at-1", v)
}

func TestRefresh_ResponseWithoutAccessTokenReturnsFalse(t *testing.T) {
	refresher, sessions, _ := newRefreshFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"refreshToken":"rt-2"}`))
	})

	ctx := context.Background()
	require.NoError(t, sessions.Set(ctx, ScopeCustomer, domain.CredentialSet{AccessToken: "at-1", RefreshToken: "rt-1"}))

	assert.False(t, refresher.Refresh(ctx))
}

func TestRefresh_NetworkFailureReturnsFalse(t *testing.T) {
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, err)
	sessions := NewSessions(st, slog.Default())

	ctx := context.Background()
	require.NoError(t, sessions.Set(ctx, ScopeCustomer, domain.CredentialSet{AccessToken: "at-1", RefreshToken: "rt-1"}))

	client := httpclient.New(httpclient.Config{Timeout: time.Second, MaxConnsPerHost: 10})
	refresher := NewRefresher(sessions, client, "http://127.0.0.1:1/api/v1/auth/refresh", slog.Default())

	assert.False(t, refresher.Refresh(ctx))
}

func TestRefresh_ConcurrentCallsShareOneExchange(t *testing.T) {
	var calls int32
	refresher, sessions, _ := newRefreshFixture(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(150 * time.Millisecond)
		_, _ = w.Write([]byte(`{"accessToken":"at-2","refreshToken":"rt-2"}`))
	})

	ctx := context.Background()
	require.NoError(t, sessions.Set(ctx, ScopeCustomer, domain.CredentialSet{AccessToken: "at-1", RefreshToken: "rt-1"}))

	const concurrency = 5
	results := make([]bool, concurrency)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = refresher.Refresh(ctx)
		}(i)
	}
	wg.Wait()

	for i, ok := range results {
		assert.True(t, ok, "caller %d", i)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "concurrent callers should share one refresh exchange")
}

func TestDecodeTokenPair_Shapes(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantAccess  string
		wantRefresh string
	}{
		{"camel top-level", `{"accessToken":"a","refreshToken":"r"}`, "a", "r"},
		{"snake top-level", `{"access_token":"a","refresh_token":"r"}`, "a", "r"},
		{"camel data-wrapped", `{"data":{"accessToken":"a","refreshToken":"r"}}`, "a", "r"},
		{"snake data-wrapped", `{"data":{"access_token":"a","refresh_token":"r"}}`, "a", "r"},
		{"access only", `{"accessToken":"a"}`, "a", ""},
		{"empty object", `{}`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			access, refresh, err := DecodeTokenPair([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccess, access)
			assert.Equal(t, tt.wantRefresh, refresh)
		})
	}
}

func TestDecodeTokenPair_InvalidJSON(t *testing.T) {
	_, _, err := DecodeTokenPair([]byte("not json"))
	assert.Error(t, err)
}

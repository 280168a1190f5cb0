// Package gateway is the single chokepoint for outbound API calls: it
// attaches credentials, recovers transparently from expired access tokens,
// and tears the sessions down when recovery is impossible.
package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/ShopfrontGo/internal/session"
	"github.com/utafrali/ShopfrontGo/pkg/logger"
)

// Navigator abstracts the login surface the client redirects to on terminal
// auth failure. In the web client this was the browser location; here it is
// whatever the host application provides.
type Navigator interface {
	// Location returns the current route.
	Location() string

	// Redirect navigates to the given route.
	Redirect(route string)
}

// Config holds gateway behavior knobs.
type Config struct {
	// LoginRoute is the redirect target on terminal auth failure. The
	// redirect is suppressed when Location already matches it.
	LoginRoute string

	// Navigator receives the redirect. Nil disables redirects.
	Navigator Navigator
}

// Gateway wraps the transport with credential attachment and 401/403
// recovery. Construct it once at process start and inject it; Install
// additionally publishes it as the process-wide default.
type Gateway struct {
	transport  session.Doer
	sessions   *session.Sessions
	refresher  *session.Refresher
	nav        Navigator
	loginRoute string
	logger     *slog.Logger
	tracer     trace.Tracer
}

// New creates a gateway over the given transport.
func New(transport session.Doer, sessions *session.Sessions, refresher *session.Refresher, cfg Config, log *slog.Logger) *Gateway {
	return &Gateway{
		transport:  transport,
		sessions:   sessions,
		refresher:  refresher,
		nav:        cfg.Navigator,
		loginRoute: cfg.LoginRoute,
		logger:     log,
		tracer:     otel.Tracer("shopfront/gateway"),
	}
}

// Do issues the request, semantically a drop-in replacement for a plain HTTP
// call. Authorization is injected from the session resolver unless the caller
// set it; a JSON content type is defaulted for non-multipart bodies. On
// 401/403 a silent refresh is attempted and the request reissued at most
// once; when refresh is impossible both sessions are destroyed, a redirect to
// the login route is scheduled, and the original failing response is returned.
func (g *Gateway) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := bufferBody(req); err != nil {
		return nil, err
	}
	g.prepareHeaders(ctx, req)

	ctx, span := g.tracer.Start(ctx, "gateway.request", trace.WithAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("http.url", req.URL.Redacted()),
	))
	defer span.End()

	resp, err := g.transport.Do(ctx, req)
	if err != nil {
		requestsTotal.WithLabelValues(req.Method, "error", "first").Inc()
		return nil, err
	}
	requestsTotal.WithLabelValues(req.Method, codeClass(resp.StatusCode), "first").Inc()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	log := logger.WithContext(ctx, g.logger)
	log.Debug("authorization failure, attempting silent refresh",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
	)

	if !g.refresher.Refresh(ctx) {
		refreshTotal.WithLabelValues("failure").Inc()
		g.teardown(ctx, log)
		// The failing response is still the caller's answer; the redirect is
		// a side effect, not a substitute for it.
		return resp, nil
	}
	refreshTotal.WithLabelValues("success").Inc()

	drain(resp)

	retryReq, err := g.retryRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	retryResp, err := g.transport.Do(ctx, retryReq)
	if err != nil {
		requestsTotal.WithLabelValues(req.Method, "error", "retry").Inc()
		return nil, err
	}
	requestsTotal.WithLabelValues(req.Method, codeClass(retryResp.StatusCode), "retry").Inc()
	span.SetAttributes(attribute.Int("http.retry_status_code", retryResp.StatusCode))

	// The retry's result stands as-is, even if it failed with 401/403 again.
	return retryResp, nil
}

// prepareHeaders injects Authorization, the default content type, and a
// correlation ID without overriding anything the caller set explicitly.
func (g *Gateway) prepareHeaders(ctx context.Context, req *http.Request) {
	if req.Header.Get("Authorization") == "" {
		if header, ok := g.sessions.AuthorizationHeader(ctx); ok {
			req.Header.Set("Authorization", header)
		}
	}

	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	if req.Header.Get("X-Correlation-ID") == "" {
		id := logger.CorrelationIDFromContext(ctx)
		if id == "" {
			id = uuid.New().String()
		}
		req.Header.Set("X-Correlation-ID", id)
	}
}

// retryRequest clones the original request with a replayed body and an
// Authorization header recomputed from the now-refreshed resolver.
func (g *Gateway) retryRequest(ctx context.Context, req *http.Request) (*http.Request, error) {
	retry := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("replay request body: %w", err)
		}
		retry.Body = body
	}

	retry.Header.Del("Authorization")
	if header, ok := g.sessions.AuthorizationHeader(ctx); ok {
		retry.Header.Set("Authorization", header)
	}
	return retry, nil
}

// teardown destroys both sessions and schedules the login redirect.
func (g *Gateway) teardown(ctx context.Context, log *slog.Logger) {
	teardownTotal.Inc()
	log.Warn("token refresh impossible, clearing sessions")

	if err := g.sessions.ClearAll(ctx); err != nil {
		log.Error("clear sessions", slog.String("error", err.Error()))
	}

	if g.nav != nil && g.nav.Location() != g.loginRoute {
		go g.nav.Redirect(g.loginRoute)
	}
}

// bufferBody makes a one-shot request body replayable so the single auth
// retry can resend it.
func bufferBody(req *http.Request) error {
	if req.Body == nil || req.GetBody != nil {
		return nil
	}
	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return fmt.Errorf("buffer request body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	req.ContentLength = int64(len(data))
	return nil
}

// drain consumes a response that will not be returned so its connection can
// be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}

func codeClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

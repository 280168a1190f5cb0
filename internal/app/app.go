// Package app wires the client together. The gateway and its collaborators
// are constructed exactly once here and injected everywhere else; no other
// package builds its own transport.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/utafrali/ShopfrontGo/internal/api"
	"github.com/utafrali/ShopfrontGo/internal/auth"
	"github.com/utafrali/ShopfrontGo/internal/config"
	"github.com/utafrali/ShopfrontGo/internal/gateway"
	"github.com/utafrali/ShopfrontGo/internal/session"
	"github.com/utafrali/ShopfrontGo/internal/store"
	"github.com/utafrali/ShopfrontGo/internal/tracing"
	"github.com/utafrali/ShopfrontGo/pkg/httpclient"
)

// App holds the fully wired client.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Sessions *session.Sessions
	Gateway  *gateway.Gateway

	Admin    *auth.Controller
	Customer *auth.Controller

	Products   *api.ProductsClient
	Categories *api.CategoriesClient
	Promotions *api.PromotionsClient
	Inventory  *api.InventoryClient
	Orders     *api.OrdersClient
	Stats      *api.StatsClient

	Navigator *RouteTracker

	tracerShutdown func(context.Context) error
	redisStore     *store.RedisStore
}

// New builds the dependency graph once at process start.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    "shopfront-client",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{
		Config:         cfg,
		Logger:         logger,
		tracerShutdown: tracerShutdown,
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Sessions = session.NewSessions(st, logger)

	baseClient := httpclient.New(httpclient.Config{
		Timeout:         time.Duration(cfg.HTTPTimeoutSecs) * time.Second,
		MaxRetries:      cfg.HTTPMaxRetries,
		RetryWaitMin:    500 * time.Millisecond,
		RetryWaitMax:    5 * time.Second,
		MaxConnsPerHost: 100,
	})

	var transport session.Doer = baseClient
	if cfg.CBEnabled {
		cbCfg := httpclient.CircuitBreakerConfig{
			Name:         "shopfront-api",
			MaxRequests:  cfg.CBMaxRequests,
			Interval:     time.Duration(cfg.CBIntervalSecs) * time.Second,
			Timeout:      time.Duration(cfg.CBTimeoutSecs) * time.Second,
			FailureRatio: cfg.CBFailureRatio,
			MinRequests:  cfg.CBMinRequests,
		}
		transport = httpclient.NewCircuitBreakerClient(baseClient, cbCfg, logger)
		logger.Info("circuit breaker enabled", slog.String("name", cbCfg.Name))
	}

	refresher := session.NewRefresher(a.Sessions, transport, cfg.Endpoint(cfg.RefreshPath), logger)

	a.Navigator = NewRouteTracker(logger)
	a.Gateway = gateway.Install(gateway.New(transport, a.Sessions, refresher, gateway.Config{
		LoginRoute: cfg.LoginRoute,
		Navigator:  a.Navigator,
	}, logger))

	endpoints := auth.Endpoints{
		Login:   cfg.Endpoint(cfg.LoginPath),
		Logout:  cfg.Endpoint(cfg.LogoutPath),
		Profile: cfg.Endpoint(cfg.ProfilePath),
	}
	a.Admin = auth.NewAdminController(a.Gateway, a.Sessions, endpoints, logger)
	a.Customer = auth.NewCustomerController(a.Gateway, a.Sessions, endpoints, logger)

	apiClient := api.NewClient(a.Gateway, cfg.APIBaseURL, logger)
	a.Products = api.NewProductsClient(apiClient)
	a.Categories = api.NewCategoriesClient(apiClient)
	a.Promotions = api.NewPromotionsClient(apiClient)
	a.Inventory = api.NewInventoryClient(apiClient)
	a.Orders = api.NewOrdersClient(apiClient)
	a.Stats = api.NewStatsClient(apiClient)

	return a, nil
}

func (a *App) openStore(ctx context.Context) (store.Store, error) {
	switch a.Config.StorageBackend {
	case config.StorageRedis:
		rs, err := store.NewRedisStore(ctx, store.RedisConfig{
			Host:     a.Config.RedisHost,
			Port:     a.Config.RedisPort,
			Password: a.Config.RedisPassword,
			DB:       a.Config.RedisDB,
		}, a.Config.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("open redis credential store: %w", err)
		}
		a.redisStore = rs
		a.Logger.Info("credential store opened",
			slog.String("backend", "redis"),
			slog.String("addr", fmt.Sprintf("%s:%d", a.Config.RedisHost, a.Config.RedisPort)),
		)
		return rs, nil

	default:
		path := a.Config.StorageFile
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolve home directory: %w", err)
			}
			path = filepath.Join(home, ".shopfront", "credentials.json")
		}
		fs, err := store.NewFileStore(path)
		if err != nil {
			return nil, fmt.Errorf("open file credential store: %w", err)
		}
		a.Logger.Info("credential store opened",
			slog.String("backend", "file"),
			slog.String("path", path),
		)
		return fs, nil
	}
}

// Close flushes tracing and releases the store connection.
func (a *App) Close(ctx context.Context) error {
	if a.redisStore != nil {
		if err := a.redisStore.Close(); err != nil {
			a.Logger.Warn("close redis store", slog.String("error", err.Error()))
		}
	}
	if a.tracerShutdown != nil {
		return a.tracerShutdown(ctx)
	}
	return nil
}

// RouteTracker is the CLI's stand-in for browser navigation. It remembers
// the current route and surfaces gateway-scheduled redirects to the user.
type RouteTracker struct {
	logger *slog.Logger

	mu       sync.Mutex
	location string
	redirect string
}

// NewRouteTracker starts at the root route.
func NewRouteTracker(logger *slog.Logger) *RouteTracker {
	return &RouteTracker{logger: logger, location: "/"}
}

// Visit records the route the current command corresponds to.
func (t *RouteTracker) Visit(route string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.location = route
}

// Location returns the current route.
func (t *RouteTracker) Location() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.location
}

// Redirect records a gateway-initiated navigation and tells the user to log
// in again.
func (t *RouteTracker) Redirect(route string) {
	t.mu.Lock()
	t.location = route
	t.redirect = route
	t.mu.Unlock()

	t.logger.Warn("session expired, please log in again", slog.String("route", route))
}

// Redirected returns the last redirect target, if any.
func (t *RouteTracker) Redirected() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.redirect, t.redirect != ""
}

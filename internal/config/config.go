package config

import (
	"fmt"
	"net/url"
	"strings"

	pkgconfig "github.com/utafrali/ShopfrontGo/pkg/config"
)

// Storage backend names.
const (
	StorageFile  = "file"
	StorageRedis = "redis"
)

// Config holds all configuration for the storefront client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Backend API
	APIBaseURL  string `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	LoginPath   string `env:"AUTH_LOGIN_PATH" envDefault:"/api/v1/auth/login"`
	RefreshPath string `env:"AUTH_REFRESH_PATH" envDefault:"/api/v1/auth/refresh"`
	LogoutPath  string `env:"AUTH_LOGOUT_PATH" envDefault:"/api/v1/auth/logout"`
	ProfilePath string `env:"AUTH_PROFILE_PATH" envDefault:"/api/v1/auth/me"`

	// LoginRoute is where terminal auth failures send the user.
	LoginRoute string `env:"LOGIN_ROUTE" envDefault:"/login"`

	// Credential storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	StorageFile    string `env:"STORAGE_FILE" envDefault:""`
	RedisHost      string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort      int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword  string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix    string `env:"REDIS_KEY_PREFIX" envDefault:"shopfront"`

	// HTTP transport
	HTTPTimeoutSecs int `env:"HTTP_TIMEOUT_SECS" envDefault:"30"`
	HTTPMaxRetries  int `env:"HTTP_MAX_RETRIES" envDefault:"2"`

	// Circuit breaker
	CBEnabled      bool    `env:"CB_ENABLED" envDefault:"true"`
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBIntervalSecs int     `env:"CB_INTERVAL_SECS" envDefault:"60"`
	CBTimeoutSecs  int     `env:"CB_TIMEOUT_SECS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not an absolute URL", c.APIBaseURL)
	}

	switch c.StorageBackend {
	case StorageFile, StorageRedis:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q, got %q", StorageFile, StorageRedis, c.StorageBackend)
	}

	for name, p := range map[string]string{
		"AUTH_LOGIN_PATH":   c.LoginPath,
		"AUTH_REFRESH_PATH": c.RefreshPath,
		"AUTH_LOGOUT_PATH":  c.LogoutPath,
		"AUTH_PROFILE_PATH": c.ProfilePath,
		"LOGIN_ROUTE":       c.LoginRoute,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must start with '/', got %q", name, p)
		}
	}

	return nil
}

// Endpoint joins the API base URL with the given path.
func (c *Config) Endpoint(path string) string {
	return strings.TrimRight(c.APIBaseURL, "/") + path
}

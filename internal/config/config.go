package config

import (
	"fmt"
	"net/url"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/httpclient"
)

// Catalog snapshot backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds all configuration for the storefront engine and its CLI.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Commerce API
	APIURL             string `env:"STOREFRONT_API_URL" envDefault:"http://localhost:8082/api/v1"`
	HTTPTimeoutSeconds int    `env:"STOREFRONT_HTTP_TIMEOUT_SECONDS" envDefault:"10"`
	SearchDebounceMs   int    `env:"STOREFRONT_SEARCH_DEBOUNCE_MS" envDefault:"500"`

	// Session
	Token         string  `env:"STOREFRONT_TOKEN" envDefault:""`
	Username      string  `env:"STOREFRONT_USERNAME" envDefault:""`
	WalletBalance float64 `env:"STOREFRONT_WALLET_BALANCE" envDefault:"0"`

	// Circuit breaker around the commerce API
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// Catalog snapshot
	CatalogCacheBackend string `env:"CATALOG_CACHE_BACKEND" envDefault:"memory"`
	CatalogCacheTTLMins int    `env:"CATALOG_CACHE_TTL_MINUTES" envDefault:"15"`

	// Redis
	RedisAddr          string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass          string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB            int    `env:"REDIS_DB" envDefault:"0"`
	RedisSlowCommandMs int    `env:"REDIS_SLOW_COMMAND_MS" envDefault:"100"` // 0 disables

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("STOREFRONT_API_URL is required")
	}
	if _, err := url.ParseRequestURI(c.APIURL); err != nil {
		return fmt.Errorf("invalid STOREFRONT_API_URL %q: %w", c.APIURL, err)
	}
	if c.HTTPTimeoutSeconds < 1 {
		return fmt.Errorf("STOREFRONT_HTTP_TIMEOUT_SECONDS must be positive, got %d", c.HTTPTimeoutSeconds)
	}
	if c.SearchDebounceMs < 0 {
		return fmt.Errorf("STOREFRONT_SEARCH_DEBOUNCE_MS must not be negative, got %d", c.SearchDebounceMs)
	}
	if c.WalletBalance < 0 {
		return fmt.Errorf("STOREFRONT_WALLET_BALANCE must not be negative, got %f", c.WalletBalance)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1.0 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0.0, 1.0], got %f", c.CBFailureRatio)
	}
	switch c.CatalogCacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis catalog cache")
		}
	default:
		return fmt.Errorf("CATALOG_CACHE_BACKEND must be one of memory, redis; got %q", c.CatalogCacheBackend)
	}
	if c.RedisSlowCommandMs < 0 {
		return fmt.Errorf("REDIS_SLOW_COMMAND_MS must not be negative, got %d", c.RedisSlowCommandMs)
	}
	if c.CatalogCacheTTLMins < 0 {
		return fmt.Errorf("CATALOG_CACHE_TTL_MINUTES must not be negative, got %d", c.CatalogCacheTTLMins)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// HTTPClient returns the transport settings for the commerce API.
func (c *Config) HTTPClient() httpclient.Config {
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = time.Duration(c.HTTPTimeoutSeconds) * time.Second
	return cfg
}

// CircuitBreaker returns the breaker settings for the commerce API.
func (c *Config) CircuitBreaker() httpclient.CircuitBreakerConfig {
	return httpclient.CircuitBreakerConfig{
		Name:         "commerce-api",
		MaxRequests:  c.CBMaxRequests,
		Interval:     time.Duration(c.CBInterval) * time.Second,
		Timeout:      time.Duration(c.CBTimeout) * time.Second,
		FailureRatio: c.CBFailureRatio,
		MinRequests:  c.CBMinRequests,
	}
}

// RedisSlowCommand returns the slow Redis command logging threshold.
func (c *Config) RedisSlowCommand() time.Duration {
	return time.Duration(c.RedisSlowCommandMs) * time.Millisecond
}

// SearchDebounce returns the search quiescence window.
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMs) * time.Millisecond
}

// CatalogCacheTTL returns the lifetime of a stored catalog snapshot.
func (c *Config) CatalogCacheTTL() time.Duration {
	return time.Duration(c.CatalogCacheTTLMins) * time.Minute
}

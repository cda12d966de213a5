package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// MockAPIConfig holds configuration for the local fake commerce API.
type MockAPIConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	HTTPPort  int    `env:"MOCKAPI_HTTP_PORT" envDefault:"8082"`
	JWTSecret string `env:"MOCKAPI_JWT_SECRET" envDefault:"storefront-dev-secret"`

	// A token for DevUsername is minted and logged at startup.
	DevUsername   string `env:"MOCKAPI_DEV_USERNAME" envDefault:"shopper"`
	TokenTTLHours int    `env:"MOCKAPI_TOKEN_TTL_HOURS" envDefault:"24"`

	// Wallet balance given to every seeded user.
	SeedWalletBalance float64 `env:"MOCKAPI_SEED_WALLET_BALANCE" envDefault:"5000"`

	// Placed orders are published to OrderEventsTopic when brokers are set.
	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	OrderEventsTopic string   `env:"MOCKAPI_ORDER_EVENTS_TOPIC" envDefault:"storefront.order.placed"`

	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// LoadMockAPI reads the fake API's configuration from environment variables.
func LoadMockAPI() (*MockAPIConfig, error) {
	cfg := &MockAPIConfig{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load mockapi config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *MockAPIConfig) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if len(c.JWTSecret) < 8 {
		return fmt.Errorf("MOCKAPI_JWT_SECRET must be at least 8 characters")
	}
	if c.TokenTTLHours < 1 {
		return fmt.Errorf("MOCKAPI_TOKEN_TTL_HOURS must be positive, got %d", c.TokenTTLHours)
	}
	if c.SeedWalletBalance < 0 {
		return fmt.Errorf("MOCKAPI_SEED_WALLET_BALANCE must not be negative, got %f", c.SeedWalletBalance)
	}
	if len(c.KafkaBrokers) > 0 && c.OrderEventsTopic == "" {
		return fmt.Errorf("MOCKAPI_ORDER_EVENTS_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	return nil
}

// TokenTTL returns the lifetime of minted bearer tokens.
func (c *MockAPIConfig) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLHours) * time.Hour
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	APIURL   string        `env:"TEST_CFG_API_URL" envDefault:"http://localhost:8082"`
	Window   time.Duration `env:"TEST_CFG_WINDOW" envDefault:"500ms"`
	Balance  float64       `env:"TEST_CFG_BALANCE" envDefault:"0"`
	LogLevel string        `env:"TEST_CFG_LOG_LEVEL" envDefault:"info"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8082", cfg.APIURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Window)
	assert.Zero(t, cfg.Balance)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_API_URL", "http://api.example.com")
	t.Setenv("TEST_CFG_WINDOW", "250ms")
	t.Setenv("TEST_CFG_BALANCE", "5000")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", cfg.APIURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Window)
	assert.Equal(t, 5000.0, cfg.Balance)
}

type requiredConfig struct {
	Token string `env:"TEST_CFG_TOKEN,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_BALANCE", "lots")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_NamesEveryInvalidField(t *testing.T) {
	t.Setenv("TEST_CFG_BALANCE", "lots")
	t.Setenv("TEST_CFG_WINDOW", "soon")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
	assert.Contains(t, err.Error(), "Balance")
	assert.Contains(t, err.Error(), "Window")
}

func TestLoad_RejectsNonPointer(t *testing.T) {
	tests := []struct {
		name string
		cfg  any
	}{
		{"struct value", testConfig{}},
		{"nil pointer", (*testConfig)(nil)},
		{"pointer to non-struct", new(string)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Load(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "target must be a pointer to a struct")
		})
	}
}

package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Address())

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// CORS config
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.CORS.AllowCredentials)
	assert.Equal(t, 12*time.Hour, cfg.CORS.MaxAge)

	// Frame, catalog and script config
	assert.Equal(t, 60, cfg.Frame.Rate)
	assert.Empty(t, cfg.Catalog.Path)
	assert.False(t, cfg.Catalog.Watch)
	assert.Equal(t, 100*time.Millisecond, cfg.Script.Timeout)
	assert.Equal(t, uint32(3), cfg.Script.QuarantineAfter)
	assert.Equal(t, time.Minute, cfg.Catalog.PollInterval)

	assert.NoError(t, cfg.Validate())
}

func TestLoadOrDefault(t *testing.T) {
	// Should return default when no env vars set
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 60, cfg.Frame.Rate)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
		"FRAME_RATE":         "30",
		"CATALOG_PATH":       "/etc/ui/catalog",
		"CATALOG_WATCH":      "true",
		"SCRIPT_TIMEOUT":     "250ms",
		"SHUTDOWN_TIMEOUT":   "3s",

		"CATALOG_POLL_INTERVAL":   "10s",
		"SCRIPT_QUARANTINE_AFTER": "0",

		"CORS_ALLOWED_ORIGINS":   "http://localhost:5173,https://ui.example.com",
		"CORS_ALLOW_CREDENTIALS": "true",
	}

	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)

	assert.Equal(t, 30, cfg.Frame.Rate)
	assert.Equal(t, "/etc/ui/catalog", cfg.Catalog.Path)
	assert.True(t, cfg.Catalog.Watch)
	assert.Equal(t, 250*time.Millisecond, cfg.Script.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Catalog.PollInterval)
	assert.Zero(t, cfg.Script.QuarantineAfter)
	assert.Equal(t, []string{"http://localhost:5173", "https://ui.example.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.CORS.AllowCredentials)
}

func TestLoadWithInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
	}{
		{"non-numeric rps", "RATE_LIMIT_RPS", "invalid"},
		{"non-boolean watch", "CATALOG_WATCH", "maybe"},
		{"zero frame rate", "FRAME_RATE", "0"},
		{"huge frame rate", "FRAME_RATE", "5000"},
		{"bad duration", "SCRIPT_TIMEOUT", "soon"},
		{"negative quarantine", "SCRIPT_QUARANTINE_AFTER", "-1"},
		{"zero cooldown", "SCRIPT_QUARANTINE_COOLDOWN", "0s"},
		{"origin without scheme", "CORS_ALLOWED_ORIGINS", "localhost:5173"},
		{"credentials with any origin", "CORS_ALLOW_CREDENTIALS", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadOrDefaultFallsBack(t *testing.T) {
	require.NoError(t, os.Setenv("FRAME_RATE", "-1"))
	defer os.Unsetenv("FRAME_RATE")

	cfg := LoadOrDefault()
	assert.Equal(t, 60, cfg.Frame.Rate)
}

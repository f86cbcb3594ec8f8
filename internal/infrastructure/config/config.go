package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Frame     FrameConfig
	Catalog   CatalogConfig
	Script    ScriptConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds cross-origin settings for browser clients.
// "*" in AllowedOrigins allows any origin.
type CORSConfig struct {
	AllowedOrigins   []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

// FrameConfig holds frame loop configuration.
type FrameConfig struct {
	Rate int `envconfig:"FRAME_RATE" default:"60"`
}

// CatalogConfig holds template catalog configuration.
type CatalogConfig struct {
	Path         string        `envconfig:"CATALOG_PATH" default:""`
	Watch        bool          `envconfig:"CATALOG_WATCH" default:"false"`
	PollInterval time.Duration `envconfig:"CATALOG_POLL_INTERVAL" default:"1m"` // Remote catalogs only
}

// ScriptConfig holds script template configuration.
type ScriptConfig struct {
	Timeout            time.Duration `envconfig:"SCRIPT_TIMEOUT" default:"100ms"`
	QuarantineAfter    uint32        `envconfig:"SCRIPT_QUARANTINE_AFTER" default:"3"` // 0 disables quarantine
	QuarantineCooldown time.Duration `envconfig:"SCRIPT_QUARANTINE_COOLDOWN" default:"30s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values envconfig cannot express as types.
func (c *Config) Validate() error {
	if c.Frame.Rate <= 0 || c.Frame.Rate > 1000 {
		return fmt.Errorf("invalid FRAME_RATE %d: must be between 1 and 1000", c.Frame.Rate)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit needs positive RATE_LIMIT_RPS and RATE_LIMIT_BURST")
	}
	if c.CORS.AllowCredentials && slices.Contains(c.CORS.AllowedOrigins, "*") {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS needs explicit CORS_ALLOWED_ORIGINS")
	}
	for _, origin := range c.CORS.AllowedOrigins {
		if origin != "*" && !strings.Contains(origin, "://") {
			return fmt.Errorf("invalid CORS origin %q: must include a scheme", origin)
		}
	}
	if c.Script.Timeout <= 0 {
		return fmt.Errorf("invalid SCRIPT_TIMEOUT %s", c.Script.Timeout)
	}
	if c.Script.QuarantineAfter > 0 && c.Script.QuarantineCooldown <= 0 {
		return fmt.Errorf("invalid SCRIPT_QUARANTINE_COOLDOWN %s", c.Script.QuarantineCooldown)
	}
	if c.Catalog.Watch && c.Catalog.PollInterval <= 0 {
		return fmt.Errorf("invalid CATALOG_POLL_INTERVAL %s", c.Catalog.PollInterval)
	}
	return nil
}

// Address returns host:port for the HTTP listener.
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
			MaxAge:         12 * time.Hour,
		},
		Frame: FrameConfig{
			Rate: 60,
		},
		Catalog: CatalogConfig{
			PollInterval: time.Minute,
		},
		Script: ScriptConfig{
			Timeout:            100 * time.Millisecond,
			QuarantineAfter:    3,
			QuarantineCooldown: 30 * time.Second,
		},
	}
}

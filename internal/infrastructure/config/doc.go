// Package config loads host configuration from environment variables with envconfig.
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT: HTTP listener
//   - LOG_LEVEL, LOG_DEV: logging
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED: API rate limiting
//   - FRAME_RATE: frame loop ticks per second
//   - CATALOG_PATH, CATALOG_WATCH: template catalog directory, file or URL
//   - SCRIPT_TIMEOUT: per-hook budget for script templates
package config

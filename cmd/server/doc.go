// Package main is the entry point for the UI host server.
//
// The server owns the presentation layers (exclusive slot, panel stack and
// overlay set), drives them from a fixed-rate frame loop and exposes them
// over a REST control plane and a WebSocket event stream.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Serve a template catalog and reload it on change
//	./server -port 8000 -catalog ./catalog -watch
//
//	# Development mode (colored logs, debug level)
//	./server -dev -log-level debug
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown; every open instance is closed first
package main

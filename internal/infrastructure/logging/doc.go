// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Subsystems take a *zap.Logger obtained from Logger.Component so every
// entry carries a component field. The level can be changed at runtime.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Server starting", zap.String("port", "8000"))
//	manager := ui.NewManager(reg, logger.Component("ui"))
package logging

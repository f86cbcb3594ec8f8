// Package http provides the control-plane REST API for the UI host.
//
// Every handler that touches presentation state runs its work on the frame
// loop through frame.Loop.Do, so requests are serialized with frame ticks and
// scheduled callbacks. Registry endpoints call the registry directly; it is
// safe for concurrent use.
//
// Endpoints:
//   - Health: / and /health
//   - State: GET /ui, GET /ui/:id, DELETE /ui (reset)
//   - Exclusive: POST /ui/exclusive, DELETE /ui/exclusive
//   - Panels: POST /ui/panels, DELETE /ui/panels, DELETE /ui/panels/top, POST /ui/panels/resume
//   - Overlays: POST /ui/overlays
//   - Router: DELETE /ui/:id closes any live instance
//   - Templates: GET/POST /templates, GET/DELETE /templates/:tag, POST /templates/reload
//   - Renderer logs: POST /logs
//   - Metrics: /metrics (Prometheus), /metrics/json
//
// Error mapping:
//   - unknown template or instance: 404
//   - template not allowed on the layer, other construction failures: 422
//   - malformed input: 400
//   - quarantined template, stopped loop: 503
//
// Example Usage:
//
//	handlers := http.NewHandlers(loop, reg, metrics, breakers, logger)
//	handlers.RegisterRoutes(router)
package http

// Package types provides shared data structures for the UI host.
//
// These types cross package boundaries: the orchestrator reports through
// them, the registry loads them from catalog files, and the HTTP and
// WebSocket surfaces serialize them.
//
// Core Types:
//   - Layer: presentation group (exclusive, panel, overlay) with sort order
//   - State: instance lifecycle state (entering, active, paused, closing, destroyed)
//   - InstanceInfo, Snapshot, Stats: read-only views of the orchestrator
//   - Event: lifecycle transition notification
//   - Template: catalog entry binding a type tag to a behavior kind
//
// Request Types:
//   - OpenRequest, OpenResponse, CloseResponse, ErrorResponse: HTTP bodies
//   - WSMessage: event stream frames
package types

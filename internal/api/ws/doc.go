// Package ws streams UI lifecycle events to renderers over WebSocket.
//
// The Hub subscribes to the orchestrator's events (Manager.Subscribe) and
// fans each one out to every connected client. Publish never blocks the
// frame loop; a client whose send queue fills up is disconnected.
//
// Message Types (Client → Server):
//   - subscribe: restrict delivery to the given layers (empty filter = all)
//   - ping: keep-alive ping
//
// Message Types (Server → Client):
//   - system: welcome message
//   - state: current snapshot, sent once after the welcome
//   - event: lifecycle transition (entered, paused, resumed, closed, construct_failed)
//   - subscribe: filter acknowledgement
//   - pong, error
//
// Example Usage:
//
//	hub := ws.NewHub(logger).WithRecorder(metrics)
//	go hub.Run(ctx)
//	manager.Subscribe(hub.Publish)
//	router.GET("/stream", hub.HandleConnection)
package ws

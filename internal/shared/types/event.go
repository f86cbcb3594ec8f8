package types

import "time"

// EventType names a lifecycle transition
type EventType string

const (
	EventEntered         EventType = "entered"
	EventPaused          EventType = "paused"
	EventResumed         EventType = "resumed"
	EventClosed          EventType = "closed"
	EventConstructFailed EventType = "construct_failed"
)

// Event is emitted by the orchestrator after every lifecycle transition
type Event struct {
	Type       EventType `json:"type"`
	InstanceID string    `json:"instance_id,omitempty"`
	Tag        string    `json:"tag"`
	Layer      Layer     `json:"layer"`
	State      State     `json:"state,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

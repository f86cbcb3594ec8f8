package types

// OpenRequest asks the orchestrator to open a template on a layer
type OpenRequest struct {
	Tag  string                 `json:"tag" binding:"required"`
	Args map[string]interface{} `json:"args,omitempty"`
}

// OpenResponse reports the opened instance
type OpenResponse struct {
	Instance InstanceInfo `json:"instance"`
}

// CloseResponse reports the outcome of a close request
type CloseResponse struct {
	Success    bool   `json:"success"`
	InstanceID string `json:"instance_id,omitempty"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// WSMessage represents a WebSocket frame
type WSMessage struct {
	Type    string    `json:"type"`
	Message string    `json:"message,omitempty"`
	Event   *Event    `json:"event,omitempty"`
	State   *Snapshot `json:"state,omitempty"`
	Filter  []Layer   `json:"filter,omitempty"`
}

package types

import (
	"fmt"
	"time"
)

// Layer names the presentation group an instance lives in
type Layer string

const (
	LayerNone      Layer = "none"
	LayerExclusive Layer = "exclusive"
	LayerPanel     Layer = "panel"
	LayerOverlay   Layer = "overlay"
)

// Layers lists the three presentation groups bottom to top
var Layers = []Layer{LayerExclusive, LayerPanel, LayerOverlay}

// SortOrder returns the stacking order renderers should use for the layer
func (l Layer) SortOrder() int {
	switch l {
	case LayerExclusive:
		return 0
	case LayerPanel:
		return 100
	case LayerOverlay:
		return 200
	default:
		return -1
	}
}

// Valid reports whether l is one of the three presentation groups
func (l Layer) Valid() bool {
	return l == LayerExclusive || l == LayerPanel || l == LayerOverlay
}

// ParseLayer converts a string into a Layer
func ParseLayer(s string) (Layer, error) {
	l := Layer(s)
	if !l.Valid() {
		return LayerNone, fmt.Errorf("unknown layer %q", s)
	}
	return l, nil
}

// State represents UI instance lifecycle states
type State string

const (
	StateEntering  State = "entering"
	StateActive    State = "active"
	StatePaused    State = "paused"
	StateClosing   State = "closing"
	StateDestroyed State = "destroyed"
)

// Live reports whether an instance in this state is still a collection member
func (s State) Live() bool {
	return s == StateActive || s == StatePaused || s == StateEntering
}

// InstanceInfo is a point-in-time copy of a UI instance
type InstanceInfo struct {
	ID        string    `json:"id"`
	Tag       string    `json:"tag"`
	Layer     Layer     `json:"layer"`
	State     State     `json:"state"`
	SortOrder int       `json:"sort_order"`
	Depth     int       `json:"depth,omitempty"` // Position in the panel stack, 0 = bottom
	OpenedAt  time.Time `json:"opened_at"`
}

// Snapshot is the full presentation state in render order
type Snapshot struct {
	Exclusive *InstanceInfo  `json:"exclusive,omitempty"`
	Panels    []InstanceInfo `json:"panels"`   // Bottom to top
	Overlays  []InstanceInfo `json:"overlays"` // Open order
}

// Top returns the topmost panel, if any
func (s Snapshot) Top() *InstanceInfo {
	if len(s.Panels) == 0 {
		return nil
	}
	return &s.Panels[len(s.Panels)-1]
}

// Stats contains orchestrator statistics
type Stats struct {
	ExclusiveOccupied bool    `json:"exclusive_occupied"`
	ExclusiveTag      *string `json:"exclusive_tag,omitempty"`
	PanelDepth        int     `json:"panel_depth"`
	PausedPanels      int     `json:"paused_panels"`
	TopPanelID        *string `json:"top_panel_id,omitempty"`
	Overlays          int     `json:"overlays"`
	Opened            uint64  `json:"opened_total"`
	Closed            uint64  `json:"closed_total"`
	ConstructFailures uint64  `json:"construct_failures_total"`
}

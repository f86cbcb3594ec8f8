package ui

import (
	"time"

	"github.com/GriffinCanCode/uilayers/internal/shared/id"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

// Instance is one live, addressable piece of UI.
// Only the Manager mutates layer and state.
type Instance struct {
	id       id.InstanceID
	tag      string
	layer    types.Layer
	state    types.State
	args     any
	behavior Behavior
	openedAt time.Time
	router   Router
}

// ID returns the instance handle
func (i *Instance) ID() id.InstanceID { return i.id }

// Tag returns the type tag the instance was constructed from
func (i *Instance) Tag() string { return i.tag }

// Layer returns the collection the instance belongs to, or LayerNone
func (i *Instance) Layer() types.Layer { return i.layer }

// State returns the lifecycle state
func (i *Instance) State() types.State { return i.state }

// Behavior returns the hooks backing the instance
func (i *Instance) Behavior() Behavior { return i.behavior }

// OpenedAt returns when the instance was constructed
func (i *Instance) OpenedAt() time.Time { return i.openedAt }

// Args returns the payload passed at open time. It is only set while OnEnter runs.
func (i *Instance) Args() any { return i.args }

// Close asks the router to dismiss this instance. Safe to call more than once.
func (i *Instance) Close() {
	if i.router != nil {
		i.router.CloseUI(i)
	}
}

// Info returns a copy of the instance's observable fields
func (i *Instance) Info() types.InstanceInfo {
	return types.InstanceInfo{
		ID:        i.id.String(),
		Tag:       i.tag,
		Layer:     i.layer,
		State:     i.state,
		SortOrder: i.layer.SortOrder(),
		OpenedAt:  i.openedAt,
	}
}

func (i *Instance) gone() bool {
	return i.state == types.StateClosing || i.state == types.StateDestroyed
}

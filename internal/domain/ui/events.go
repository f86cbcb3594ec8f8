package ui

import (
	"sync"

	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

// Recorder receives orchestrator measurements. monitoring.Metrics implements it.
type Recorder interface {
	RecordOpen(layer types.Layer, tag string)
	RecordClose(layer types.Layer, tag string)
	RecordPause(tag string)
	RecordResume(tag string)
	RecordConstructFailure(layer types.Layer, tag string)
	SetOccupancy(exclusive bool, panels, overlays int)
}

type nopRecorder struct{}

func (nopRecorder) RecordOpen(types.Layer, string)             {}
func (nopRecorder) RecordClose(types.Layer, string)            {}
func (nopRecorder) RecordPause(string)                         {}
func (nopRecorder) RecordResume(string)                        {}
func (nopRecorder) RecordConstructFailure(types.Layer, string) {}
func (nopRecorder) SetOccupancy(bool, int, int)                {}

// observers is the only Manager state that may be touched from other
// goroutines: stream clients subscribe and leave on their own schedule.
type observers struct {
	mu   sync.RWMutex
	next int
	fns  map[int]func(types.Event)
}

func (o *observers) subscribe(fn func(types.Event)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fns == nil {
		o.fns = make(map[int]func(types.Event))
	}
	key := o.next
	o.next++
	o.fns[key] = fn

	return func() {
		o.mu.Lock()
		delete(o.fns, key)
		o.mu.Unlock()
	}
}

func (o *observers) publish(evt types.Event) {
	o.mu.RLock()
	fns := make([]func(types.Event), 0, len(o.fns))
	for _, fn := range o.fns {
		fns = append(fns, fn)
	}
	o.mu.RUnlock()

	for _, fn := range fns {
		fn(evt)
	}
}

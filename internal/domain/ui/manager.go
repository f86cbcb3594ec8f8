package ui

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/uilayers/internal/shared/id"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

var (
	// ErrNilBehavior is returned when a factory reports success without a behavior
	ErrNilBehavior = errors.New("factory returned nil behavior")
	// ErrClosedBeforeEnter is returned when an instance closes itself from Attach
	ErrClosedBeforeEnter = errors.New("instance closed before entering")
)

// Manager orchestrates the three presentation layers.
//
// Manager is not safe for concurrent use. Hooks run inline and may call back
// into the Manager, so it holds no lock; a single goroutine (the frame loop)
// must own it.
type Manager struct {
	factory   Factory
	logger    *zap.Logger
	recorder  Recorder
	observers observers
	now       func() time.Time

	exclusive exclusiveSlot
	panels    panelStack
	overlays  overlaySet
	live      map[id.InstanceID]*Instance

	opened   uint64
	closed   uint64
	failures uint64
}

// NewManager creates a new UI manager
func NewManager(factory Factory, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		factory:  factory,
		logger:   logger,
		recorder: nopRecorder{},
		now:      time.Now,
		overlays: newOverlaySet(),
		live:     make(map[id.InstanceID]*Instance),
	}
}

// WithRecorder adds metrics tracking to the manager
func (m *Manager) WithRecorder(r Recorder) *Manager {
	if r != nil {
		m.recorder = r
	}
	return m
}

// WithClock overrides the time source used for OpenedAt and event timestamps
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Subscribe registers fn for every lifecycle event and returns the unsubscribe func.
// Unlike the rest of Manager, Subscribe and the returned func may be called from any goroutine.
// fn runs on the owning goroutine and must not block.
func (m *Manager) Subscribe(fn func(types.Event)) func() {
	return m.observers.subscribe(fn)
}

// ============================================================================
// Exclusive layer
// ============================================================================

// OpenExclusive replaces the exclusive occupant with a new instance of tag.
// The previous occupant is closed before construction, so a failed open leaves the slot empty.
func (m *Manager) OpenExclusive(tag string, args any) (*Instance, error) {
	m.vacateExclusive()

	inst, err := m.construct(tag, types.LayerExclusive)
	if err != nil {
		return nil, err
	}

	// A close hook may have installed its own occupant in the meantime
	m.vacateExclusive()
	if inst.gone() {
		return nil, m.fail(tag, types.LayerExclusive, ErrClosedBeforeEnter)
	}

	m.exclusive.occupant = inst
	m.enter(inst, types.LayerExclusive, args)
	return inst, nil
}

// CloseExclusive closes the exclusive occupant, if any
func (m *Manager) CloseExclusive() {
	if inst := m.exclusive.take(); inst != nil {
		m.destroy(inst)
	}
}

// vacateExclusive empties the slot, including occupants installed by close hooks
func (m *Manager) vacateExclusive() {
	for old := m.exclusive.take(); old != nil; old = m.exclusive.take() {
		m.destroy(old)
	}
}

// Exclusive returns the exclusive occupant, or nil
func (m *Manager) Exclusive() *Instance {
	return m.exclusive.occupant
}

// ============================================================================
// Panel layer
// ============================================================================

// OpenPanel pushes a new instance of tag onto the panel stack.
// The current top is paused before construction; if construction fails it stays paused.
func (m *Manager) OpenPanel(tag string, args any) (*Instance, error) {
	m.pauseTop()

	inst, err := m.construct(tag, types.LayerPanel)
	if err != nil {
		return nil, err
	}

	// A pause hook may have pushed its own panel in the meantime
	m.pauseTop()
	if inst.gone() {
		return nil, m.fail(tag, types.LayerPanel, ErrClosedBeforeEnter)
	}

	m.panels.push(inst)
	m.enter(inst, types.LayerPanel, args)
	return inst, nil
}

// pauseTop pauses the top panel until the top is no longer active
func (m *Manager) pauseTop() {
	for top := m.panels.top(); top != nil && top.state == types.StateActive; top = m.panels.top() {
		m.pause(top)
	}
}

// ClosePanel removes inst from the stack and closes it. The new top is resumed
// only when inst was the top. Instances that are not panels go through CloseUI.
func (m *Manager) ClosePanel(inst *Instance) {
	if inst == nil || inst.gone() {
		return
	}

	idx := m.panels.indexOf(inst.id)
	if idx < 0 {
		m.CloseUI(inst)
		return
	}

	wasTop := idx == m.panels.len()-1
	removed := m.panels.removeAt(idx)
	m.destroy(removed)

	if wasTop {
		if top := m.panels.top(); top != nil {
			m.resume(top)
		}
	}
}

// CloseTopPanel closes the top of the stack, if any
func (m *Manager) CloseTopPanel() {
	if top := m.panels.top(); top != nil {
		m.ClosePanel(top)
	}
}

// CloseAllPanels closes panels one at a time from the top.
// Each intermediate panel is briefly resumed before it is closed.
func (m *Manager) CloseAllPanels() {
	for m.panels.len() > 0 {
		m.ClosePanel(m.panels.top())
	}
}

// ResumeTopPanel resumes the top panel if it was left paused by a failed open.
// It reports whether a resume happened.
func (m *Manager) ResumeTopPanel() bool {
	top := m.panels.top()
	if top == nil || top.state != types.StatePaused {
		return false
	}
	m.resume(top)
	return true
}

// TopPanel returns the top of the panel stack, or nil
func (m *Manager) TopPanel() *Instance {
	return m.panels.top()
}

// PanelDepth returns the number of panels on the stack
func (m *Manager) PanelDepth() int {
	return m.panels.len()
}

// ============================================================================
// Overlay layer
// ============================================================================

// OpenOverlay adds a new instance of tag to the overlay set. Nothing else is affected.
func (m *Manager) OpenOverlay(tag string, args any) (*Instance, error) {
	inst, err := m.construct(tag, types.LayerOverlay)
	if err != nil {
		return nil, err
	}
	if inst.gone() {
		return nil, m.fail(tag, types.LayerOverlay, ErrClosedBeforeEnter)
	}

	m.overlays.add(inst)
	m.enter(inst, types.LayerOverlay, args)
	return inst, nil
}

// OverlayCount returns the number of open overlays
func (m *Manager) OverlayCount() int {
	return m.overlays.len()
}

// ============================================================================
// Router
// ============================================================================

// CloseUI is the unified close entry point. It resolves the instance's
// collection by membership: panel stack first, then the exclusive slot, and
// anything else (overlays included) is torn down directly.
// Closing an instance that is already closed does nothing. An instance that
// has not entered yet is discarded without hooks and its open fails.
func (m *Manager) CloseUI(inst *Instance) {
	if inst == nil || inst.gone() {
		return
	}
	if inst.state == types.StateEntering {
		inst.state = types.StateDestroyed
		return
	}

	switch {
	case m.panels.indexOf(inst.id) >= 0:
		m.ClosePanel(inst)
	case m.exclusive.holds(inst.id):
		m.CloseExclusive()
	default:
		if member := m.overlays.remove(inst.id); member != nil {
			inst = member
		}
		m.destroy(inst)
	}
}

// CloseByID closes the live instance with handle h. It reports whether one was found.
func (m *Manager) CloseByID(h id.InstanceID) bool {
	inst, ok := m.live[h]
	if !ok {
		return false
	}
	m.CloseUI(inst)
	return true
}

// Get returns the live instance with handle h
func (m *Manager) Get(h id.InstanceID) (*Instance, bool) {
	inst, ok := m.live[h]
	return inst, ok
}

// Reset closes every overlay, every panel and the exclusive occupant
func (m *Manager) Reset() {
	for _, inst := range m.overlays.list() {
		m.CloseUI(inst)
	}
	m.CloseAllPanels()
	m.CloseExclusive()
}

// ============================================================================
// Inspection
// ============================================================================

// Snapshot returns the presentation state in render order
func (m *Manager) Snapshot() types.Snapshot {
	snap := types.Snapshot{
		Panels:   make([]types.InstanceInfo, 0, m.panels.len()),
		Overlays: make([]types.InstanceInfo, 0, m.overlays.len()),
	}

	if occ := m.exclusive.occupant; occ != nil {
		info := occ.Info()
		snap.Exclusive = &info
	}
	for depth, inst := range m.panels.items {
		info := inst.Info()
		info.Depth = depth
		snap.Panels = append(snap.Panels, info)
	}
	for _, inst := range m.overlays.list() {
		snap.Overlays = append(snap.Overlays, inst.Info())
	}
	return snap
}

// Describe returns inst's info with its panel depth filled in
func (m *Manager) Describe(inst *Instance) types.InstanceInfo {
	info := inst.Info()
	if inst.layer == types.LayerPanel {
		if i := m.panels.indexOf(inst.id); i >= 0 {
			info.Depth = i
		}
	}
	return info
}

// Stats returns manager statistics
func (m *Manager) Stats() types.Stats {
	stats := types.Stats{
		PanelDepth:        m.panels.len(),
		Overlays:          m.overlays.len(),
		Opened:            m.opened,
		Closed:            m.closed,
		ConstructFailures: m.failures,
	}

	if occ := m.exclusive.occupant; occ != nil {
		stats.ExclusiveOccupied = true
		tag := occ.tag
		stats.ExclusiveTag = &tag
	}
	for _, inst := range m.panels.items {
		if inst.state == types.StatePaused {
			stats.PausedPanels++
		}
	}
	if top := m.panels.top(); top != nil {
		h := top.id.String()
		stats.TopPanelID = &h
	}
	return stats
}

// ============================================================================
// Lifecycle transitions
// ============================================================================

func (m *Manager) construct(tag string, layer types.Layer) (*Instance, error) {
	behavior, err := m.factory.Construct(tag, layer)
	if err == nil && behavior == nil {
		err = ErrNilBehavior
	}
	if err != nil {
		return nil, m.fail(tag, layer, err)
	}

	inst := &Instance{
		id:       id.NewInstanceID(),
		tag:      tag,
		layer:    types.LayerNone,
		state:    types.StateEntering,
		behavior: behavior,
		openedAt: m.now(),
		router:   m,
	}
	if a, ok := behavior.(Attacher); ok {
		a.Attach(inst)
	}
	return inst, nil
}

// fail records a construction failure and wraps err for the caller
func (m *Manager) fail(tag string, layer types.Layer, err error) error {
	m.failures++
	m.recorder.RecordConstructFailure(layer, tag)
	m.logger.Warn("UI construction failed",
		zap.String("tag", tag),
		zap.String("layer", string(layer)),
		zap.Error(err))
	m.emit(types.Event{Type: types.EventConstructFailed, Tag: tag, Layer: layer, Error: err.Error()})
	return fmt.Errorf("open %s %q: %w", layer, tag, err)
}

// enter runs after inst has been placed in its collection
func (m *Manager) enter(inst *Instance, layer types.Layer, args any) {
	inst.layer = layer
	inst.state = types.StateActive
	inst.args = args
	m.live[inst.id] = inst
	m.opened++

	m.recorder.RecordOpen(layer, inst.tag)
	m.syncOccupancy()
	m.logger.Debug("UI opened",
		zap.String("id", inst.id.String()),
		zap.String("tag", inst.tag),
		zap.String("layer", string(layer)))
	m.emit(m.event(types.EventEntered, inst))

	inst.behavior.OnEnter(args)
	inst.args = nil
}

func (m *Manager) pause(inst *Instance) {
	if inst.state != types.StateActive {
		return
	}
	inst.state = types.StatePaused
	m.recorder.RecordPause(inst.tag)
	m.emit(m.event(types.EventPaused, inst))
	inst.behavior.OnPause()
}

func (m *Manager) resume(inst *Instance) {
	if inst.state != types.StatePaused {
		return
	}
	inst.state = types.StateActive
	m.recorder.RecordResume(inst.tag)
	m.emit(m.event(types.EventResumed, inst))
	inst.behavior.OnResume()
}

// destroy runs the close hook; inst must already be out of its collection
func (m *Manager) destroy(inst *Instance) {
	if inst.gone() {
		return
	}

	layer := inst.layer
	inst.state = types.StateClosing
	delete(m.live, inst.id)

	inst.behavior.OnClose()

	inst.state = types.StateDestroyed
	inst.layer = types.LayerNone
	m.closed++

	m.recorder.RecordClose(layer, inst.tag)
	m.syncOccupancy()
	m.logger.Debug("UI closed",
		zap.String("id", inst.id.String()),
		zap.String("tag", inst.tag),
		zap.String("layer", string(layer)))

	evt := m.event(types.EventClosed, inst)
	evt.Layer = layer
	m.emit(evt)
}

func (m *Manager) syncOccupancy() {
	m.recorder.SetOccupancy(m.exclusive.occupant != nil, m.panels.len(), m.overlays.len())
}

func (m *Manager) event(t types.EventType, inst *Instance) types.Event {
	return types.Event{
		Type:       t,
		InstanceID: inst.id.String(),
		Tag:        inst.tag,
		Layer:      inst.layer,
		State:      inst.state,
	}
}

func (m *Manager) emit(evt types.Event) {
	evt.Timestamp = m.now()
	m.observers.publish(evt)
}

package ui

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/uilayers/internal/shared/id"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

var errUnknownTag = errors.New("template not found")

// journal records hook calls across all instances in order
type journal struct {
	calls []string
}

func (j *journal) add(tag, hook string) {
	j.calls = append(j.calls, tag+"."+hook)
}

func (j *journal) reset() {
	j.calls = nil
}

// hookFunc lets a test call back into the manager from inside a hook
type hookFunc func(inst *Instance)

func (fn hookFunc) call(inst *Instance) {
	if fn != nil {
		fn(inst)
	}
}

type recordingBehavior struct {
	tag      string
	journal  *journal
	inst     *Instance
	onAttach hookFunc
	onEnter  hookFunc
	onPause  hookFunc
	onClose  hookFunc
	gotArgs  any
}

func (b *recordingBehavior) Attach(inst *Instance) {
	b.inst = inst
	b.onAttach.call(inst)
}

func (b *recordingBehavior) OnEnter(args any) {
	b.gotArgs = args
	b.journal.add(b.tag, "enter")
	b.onEnter.call(b.inst)
}

func (b *recordingBehavior) OnPause() {
	b.journal.add(b.tag, "pause")
	b.onPause.call(b.inst)
}

func (b *recordingBehavior) OnResume() { b.journal.add(b.tag, "resume") }

func (b *recordingBehavior) OnClose() {
	b.journal.add(b.tag, "close")
	b.onClose.call(b.inst)
}

type fixture struct {
	manager  *Manager
	journal  *journal
	onAttach map[string]hookFunc
	onEnter  map[string]hookFunc
	onPause  map[string]hookFunc
	onClose  map[string]hookFunc
	built    map[string]*recordingBehavior
}

func newFixture(tags ...string) *fixture {
	f := &fixture{
		journal:  &journal{},
		onAttach: make(map[string]hookFunc),
		onEnter:  make(map[string]hookFunc),
		onPause:  make(map[string]hookFunc),
		onClose:  make(map[string]hookFunc),
		built:    make(map[string]*recordingBehavior),
	}
	known := make(map[string]bool, len(tags))
	for _, tag := range tags {
		known[tag] = true
	}
	f.manager = NewManager(FactoryFunc(func(tag string, layer types.Layer) (Behavior, error) {
		if !known[tag] {
			return nil, errUnknownTag
		}
		b := &recordingBehavior{
			tag:      tag,
			journal:  f.journal,
			onAttach: f.onAttach[tag],
			onEnter:  f.onEnter[tag],
			onPause:  f.onPause[tag],
			onClose:  f.onClose[tag],
		}
		f.built[tag] = b
		return b, nil
	}), nil)
	return f
}

// checkInvariants asserts the collection and state invariants hold
func checkInvariants(t *testing.T, m *Manager) {
	t.Helper()

	seen := make(map[id.InstanceID]types.Layer)
	claim := func(inst *Instance, layer types.Layer) {
		prev, dup := seen[inst.id]
		assert.False(t, dup, "instance %s in %s and %s", inst.id, prev, layer)
		seen[inst.id] = layer
		assert.NotEqual(t, types.StateDestroyed, inst.state, "collection holds destroyed instance %s", inst.id)
		assert.Equal(t, layer, inst.layer)
	}

	if occ := m.exclusive.occupant; occ != nil {
		claim(occ, types.LayerExclusive)
		assert.Equal(t, types.StateActive, occ.state)
	}
	for i, inst := range m.panels.items {
		claim(inst, types.LayerPanel)
		if i == len(m.panels.items)-1 {
			assert.Equal(t, types.StateActive, inst.state, "top panel %s must be active", inst.tag)
			continue
		}
		assert.Equal(t, types.StatePaused, inst.state, "non-top panel %s must be paused", inst.tag)
	}
	for _, inst := range m.overlays.list() {
		claim(inst, types.LayerOverlay)
		assert.Equal(t, types.StateActive, inst.state)
	}
	assert.Equal(t, len(seen), len(m.live))
}

func TestCloseTopPanelResumesPanelBelow(t *testing.T) {
	f := newFixture("Inventory", "ItemDetail")
	m := f.manager

	inventory, err := m.OpenPanel("Inventory", nil)
	require.NoError(t, err)
	detail, err := m.OpenPanel("ItemDetail", nil)
	require.NoError(t, err)

	assert.Equal(t, types.StatePaused, inventory.State())
	assert.Equal(t, types.StateActive, detail.State())
	assert.Equal(t, 2, m.PanelDepth())
	checkInvariants(t, m)

	f.journal.reset()
	m.CloseTopPanel()

	assert.Equal(t, types.StateDestroyed, detail.State())
	assert.Equal(t, types.StateActive, inventory.State())
	assert.Same(t, inventory, m.TopPanel())
	assert.Equal(t, []string{"ItemDetail.close", "Inventory.resume"}, f.journal.calls)
	checkInvariants(t, m)
}

func TestOpenExclusiveReplacesOccupant(t *testing.T) {
	f := newFixture("MainMenu", "Settings")
	m := f.manager

	menu, err := m.OpenExclusive("MainMenu", nil)
	require.NoError(t, err)
	settings, err := m.OpenExclusive("Settings", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"MainMenu.enter", "MainMenu.close", "Settings.enter"}, f.journal.calls)
	assert.Equal(t, types.StateDestroyed, menu.State())
	assert.Same(t, settings, m.Exclusive())
	checkInvariants(t, m)
}

func TestClosePanelNonTopLeavesStatesAlone(t *testing.T) {
	f := newFixture("A", "B", "C")
	m := f.manager

	a, _ := m.OpenPanel("A", nil)
	b, _ := m.OpenPanel("B", nil)
	c, _ := m.OpenPanel("C", nil)
	f.journal.reset()

	m.ClosePanel(b)

	assert.Equal(t, []string{"B.close"}, f.journal.calls)
	assert.Equal(t, types.StatePaused, a.State())
	assert.Equal(t, types.StateActive, c.State())
	assert.Equal(t, types.StateDestroyed, b.State())

	snap := m.Snapshot()
	require.Len(t, snap.Panels, 2)
	assert.Equal(t, "A", snap.Panels[0].Tag)
	assert.Equal(t, "C", snap.Panels[1].Tag)
	checkInvariants(t, m)
}

func TestCloseAllPanelsResumesEachBeforeClosing(t *testing.T) {
	f := newFixture("A", "B", "C")
	m := f.manager

	m.OpenPanel("A", nil)
	m.OpenPanel("B", nil)
	m.OpenPanel("C", nil)
	f.journal.reset()

	m.CloseAllPanels()

	assert.Equal(t, []string{"C.close", "B.resume", "B.close", "A.resume", "A.close"}, f.journal.calls)
	assert.Equal(t, 0, m.PanelDepth())
	assert.Nil(t, m.TopPanel())
	checkInvariants(t, m)
}

func TestFailedPanelOpenLeavesTopPaused(t *testing.T) {
	f := newFixture("A")
	m := f.manager

	a, err := m.OpenPanel("A", nil)
	require.NoError(t, err)
	f.journal.reset()

	inst, err := m.OpenPanel("X", nil)
	assert.Nil(t, inst)
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnknownTag)

	assert.Equal(t, []string{"A.pause"}, f.journal.calls)
	assert.Equal(t, types.StatePaused, a.State())
	assert.Equal(t, 1, m.PanelDepth())
	assert.Equal(t, uint64(1), m.Stats().ConstructFailures)
	assert.Equal(t, 1, m.Stats().PausedPanels)

	// A second failed open must not pause A again
	_, err = m.OpenPanel("X", nil)
	require.Error(t, err)
	assert.Equal(t, []string{"A.pause"}, f.journal.calls)

	assert.True(t, m.ResumeTopPanel())
	assert.Equal(t, types.StateActive, a.State())
	assert.False(t, m.ResumeTopPanel())
	assert.Equal(t, []string{"A.pause", "A.resume"}, f.journal.calls)
	checkInvariants(t, m)
}

func TestPanelRoundTrip(t *testing.T) {
	const n = 5
	tags := make([]string, n)
	for i := range tags {
		tags[i] = fmt.Sprintf("P%d", i)
	}
	f := newFixture(tags...)
	m := f.manager

	bottom, err := m.OpenPanel(tags[0], nil)
	require.NoError(t, err)
	for _, tag := range tags[1:] {
		_, err := m.OpenPanel(tag, nil)
		require.NoError(t, err)
		checkInvariants(t, m)
	}

	for i := 0; i < n; i++ {
		m.CloseTopPanel()
		checkInvariants(t, m)
	}

	assert.Equal(t, 0, m.PanelDepth())
	assert.Equal(t, types.StateDestroyed, bottom.State())

	resumes := 0
	for _, call := range f.journal.calls {
		if call == tags[0]+".resume" {
			resumes++
		}
	}
	assert.Equal(t, 1, resumes)
}

func TestCloseTopPanelOnEmptyStack(t *testing.T) {
	f := newFixture()
	m := f.manager

	m.CloseTopPanel()
	m.CloseAllPanels()
	m.CloseExclusive()

	assert.Empty(t, f.journal.calls)
	assert.Equal(t, types.Stats{}, m.Stats())
}

func TestOpenExclusiveFailureLeavesSlotEmpty(t *testing.T) {
	f := newFixture("MainMenu")
	m := f.manager

	menu, err := m.OpenExclusive("MainMenu", nil)
	require.NoError(t, err)

	inst, err := m.OpenExclusive("Missing", nil)
	assert.Nil(t, inst)
	assert.ErrorIs(t, err, errUnknownTag)

	assert.Equal(t, types.StateDestroyed, menu.State())
	assert.Nil(t, m.Exclusive())
	assert.Equal(t, []string{"MainMenu.enter", "MainMenu.close"}, f.journal.calls)
	checkInvariants(t, m)
}

func TestFailedOverlayOpenHasNoSideEffects(t *testing.T) {
	f := newFixture("A")
	m := f.manager
	m.OpenPanel("A", nil)
	f.journal.reset()

	inst, err := m.OpenOverlay("Missing", nil)
	assert.Nil(t, inst)
	assert.Error(t, err)
	assert.Empty(t, f.journal.calls)
	assert.Equal(t, 0, m.OverlayCount())
}

func TestOverlaysAreIndependent(t *testing.T) {
	f := newFixture("Toast", "Panel", "Menu")
	m := f.manager

	m.OpenExclusive("Menu", nil)
	panel, _ := m.OpenPanel("Panel", nil)
	toast, err := m.OpenOverlay("Toast", nil)
	require.NoError(t, err)

	assert.Equal(t, types.StateActive, panel.State())
	assert.Equal(t, types.StateActive, toast.State())
	assert.Equal(t, 1, m.OverlayCount())
	checkInvariants(t, m)
}

func TestCloseUIRouting(t *testing.T) {
	t.Run("panel", func(t *testing.T) {
		f := newFixture("A", "B")
		m := f.manager
		a, _ := m.OpenPanel("A", nil)
		b, _ := m.OpenPanel("B", nil)
		f.journal.reset()

		m.CloseUI(b)

		assert.Equal(t, []string{"B.close", "A.resume"}, f.journal.calls)
		assert.Equal(t, types.StateActive, a.State())
		checkInvariants(t, m)
	})

	t.Run("exclusive", func(t *testing.T) {
		f := newFixture("Menu")
		m := f.manager
		menu, _ := m.OpenExclusive("Menu", nil)
		f.journal.reset()

		m.CloseUI(menu)

		assert.Equal(t, []string{"Menu.close"}, f.journal.calls)
		assert.Nil(t, m.Exclusive())
		checkInvariants(t, m)
	})

	t.Run("overlay", func(t *testing.T) {
		f := newFixture("Toast", "A")
		m := f.manager
		a, _ := m.OpenPanel("A", nil)
		toast, _ := m.OpenOverlay("Toast", nil)
		f.journal.reset()

		m.CloseUI(toast)

		assert.Equal(t, []string{"Toast.close"}, f.journal.calls)
		assert.Equal(t, types.StateActive, a.State())
		assert.Equal(t, 0, m.OverlayCount())
		checkInvariants(t, m)
	})

	t.Run("untracked", func(t *testing.T) {
		f := newFixture()
		m := f.manager
		j := &journal{}
		stray := &Instance{
			id:       id.NewInstanceID(),
			tag:      "Stray",
			state:    types.StateActive,
			behavior: &recordingBehavior{tag: "Stray", journal: j},
		}

		m.CloseUI(stray)

		assert.Equal(t, []string{"Stray.close"}, j.calls)
		assert.Equal(t, types.StateDestroyed, stray.State())
	})

	t.Run("nil", func(t *testing.T) {
		f := newFixture()
		assert.NotPanics(t, func() { f.manager.CloseUI(nil) })
	})
}

func TestClosePanelDelegatesNonMembers(t *testing.T) {
	f := newFixture("Menu", "A")
	m := f.manager
	m.OpenPanel("A", nil)
	menu, _ := m.OpenExclusive("Menu", nil)
	f.journal.reset()

	m.ClosePanel(menu)

	assert.Equal(t, []string{"Menu.close"}, f.journal.calls)
	assert.Nil(t, m.Exclusive())
	assert.Equal(t, 1, m.PanelDepth())
	checkInvariants(t, m)
}

func TestDoubleCloseIsNoop(t *testing.T) {
	f := newFixture("A", "B", "Toast", "Menu")
	m := f.manager
	a, _ := m.OpenPanel("A", nil)
	b, _ := m.OpenPanel("B", nil)
	toast, _ := m.OpenOverlay("Toast", nil)
	menu, _ := m.OpenExclusive("Menu", nil)

	for _, inst := range []*Instance{b, toast, menu} {
		inst.Close()
	}
	f.journal.reset()

	b.Close()
	m.ClosePanel(b)
	toast.Close()
	menu.Close()

	assert.Empty(t, f.journal.calls)
	assert.Equal(t, types.StateActive, a.State())
	assert.Equal(t, uint64(3), m.Stats().Closed)
	checkInvariants(t, m)
}

func TestSelfCloseDuringEnter(t *testing.T) {
	f := newFixture("A", "Flash")
	f.onEnter["Flash"] = func(inst *Instance) { inst.Close() }
	m := f.manager

	a, _ := m.OpenPanel("A", nil)
	flash, err := m.OpenPanel("Flash", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"A.enter", "A.pause", "Flash.enter", "Flash.close", "A.resume"}, f.journal.calls)
	assert.Equal(t, types.StateDestroyed, flash.State())
	assert.Equal(t, types.StateActive, a.State())
	checkInvariants(t, m)
}

func TestHookOpensAnotherPanel(t *testing.T) {
	f := newFixture("Shop", "Confirm")
	f.onEnter["Shop"] = func(inst *Instance) {
		_, err := inst.router.(*Manager).OpenPanel("Confirm", nil)
		require.NoError(t, err)
	}
	m := f.manager

	shop, err := m.OpenPanel("Shop", nil)
	require.NoError(t, err)

	assert.Equal(t, types.StatePaused, shop.State())
	assert.Equal(t, "Confirm", m.TopPanel().Tag())
	checkInvariants(t, m)
}

func TestArgsVisibleOnlyDuringEnter(t *testing.T) {
	f := newFixture("Detail")
	var during any
	f.onEnter["Detail"] = func(inst *Instance) { during = inst.Args() }
	m := f.manager

	args := map[string]interface{}{"item": "sword"}
	inst, err := m.OpenPanel("Detail", args)
	require.NoError(t, err)

	assert.Equal(t, args, during)
	assert.Equal(t, args, f.built["Detail"].gotArgs)
	assert.Nil(t, inst.Args())
}

func TestCloseByIDAndGet(t *testing.T) {
	f := newFixture("A", "B")
	m := f.manager
	a, _ := m.OpenPanel("A", nil)
	b, _ := m.OpenPanel("B", nil)

	got, ok := m.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	assert.True(t, m.CloseByID(b.ID()))
	assert.False(t, m.CloseByID(b.ID()))
	assert.False(t, m.CloseByID(id.NewInstanceID()))

	_, ok = m.Get(b.ID())
	assert.False(t, ok)
	assert.Equal(t, types.StateActive, a.State())
}

func TestReset(t *testing.T) {
	f := newFixture("Menu", "A", "B", "Toast")
	m := f.manager
	m.OpenExclusive("Menu", nil)
	m.OpenPanel("A", nil)
	m.OpenPanel("B", nil)
	m.OpenOverlay("Toast", nil)
	f.journal.reset()

	m.Reset()

	assert.Equal(t, []string{"Toast.close", "B.close", "A.resume", "A.close", "Menu.close"}, f.journal.calls)
	stats := m.Stats()
	assert.False(t, stats.ExclusiveOccupied)
	assert.Zero(t, stats.PanelDepth)
	assert.Zero(t, stats.Overlays)
	assert.Equal(t, stats.Opened, stats.Closed)
}

func TestSnapshotAndStats(t *testing.T) {
	f := newFixture("Menu", "A", "B", "Toast")
	m := f.manager
	m.OpenExclusive("Menu", nil)
	m.OpenPanel("A", nil)
	b, _ := m.OpenPanel("B", nil)
	m.OpenOverlay("Toast", nil)

	snap := m.Snapshot()
	require.NotNil(t, snap.Exclusive)
	assert.Equal(t, "Menu", snap.Exclusive.Tag)
	assert.Equal(t, 0, snap.Exclusive.SortOrder)
	require.Len(t, snap.Panels, 2)
	assert.Equal(t, 0, snap.Panels[0].Depth)
	assert.Equal(t, 1, snap.Panels[1].Depth)
	assert.Equal(t, types.StatePaused, snap.Panels[0].State)
	assert.Equal(t, 100, snap.Panels[1].SortOrder)
	require.Len(t, snap.Overlays, 1)
	assert.Equal(t, 200, snap.Overlays[0].SortOrder)
	assert.Equal(t, b.ID().String(), snap.Top().ID)
	assert.Equal(t, 1, m.Describe(b).Depth)
	assert.Equal(t, 0, m.Describe(m.Exclusive()).Depth)

	stats := m.Stats()
	assert.True(t, stats.ExclusiveOccupied)
	require.NotNil(t, stats.ExclusiveTag)
	assert.Equal(t, "Menu", *stats.ExclusiveTag)
	assert.Equal(t, 2, stats.PanelDepth)
	assert.Equal(t, 1, stats.PausedPanels)
	require.NotNil(t, stats.TopPanelID)
	assert.Equal(t, b.ID().String(), *stats.TopPanelID)
	assert.Equal(t, 1, stats.Overlays)
	assert.Equal(t, uint64(4), stats.Opened)
}

func TestNilBehaviorIsConstructionFailure(t *testing.T) {
	m := NewManager(FactoryFunc(func(string, types.Layer) (Behavior, error) {
		return nil, nil
	}), nil)

	inst, err := m.OpenOverlay("Ghost", nil)
	assert.Nil(t, inst)
	assert.ErrorIs(t, err, ErrNilBehavior)
}

func TestSubscribe(t *testing.T) {
	f := newFixture("A", "B")
	m := f.manager

	var events []types.Event
	unsubscribe := m.Subscribe(func(evt types.Event) {
		events = append(events, evt)
	})

	m.OpenPanel("A", nil)
	m.OpenPanel("B", nil)
	m.OpenPanel("Missing", nil)
	m.CloseTopPanel()

	got := make([]string, 0, len(events))
	for _, evt := range events {
		got = append(got, string(evt.Type)+":"+evt.Tag)
		assert.False(t, evt.Timestamp.IsZero())
	}
	assert.Equal(t, []string{
		"entered:A",
		"paused:A",
		"entered:B",
		"construct_failed:Missing",
		"closed:B",
		"resumed:A",
	}, got)
	assert.Equal(t, types.LayerPanel, events[4].Layer)
	assert.Equal(t, types.StateDestroyed, events[4].State)

	unsubscribe()
	m.CloseTopPanel()
	assert.Len(t, events, 6)
}

// mockBehavior verifies hook calls with testify
type mockBehavior struct {
	mock.Mock
}

func (b *mockBehavior) OnEnter(args any) { b.Called(args) }
func (b *mockBehavior) OnPause()         { b.Called() }
func (b *mockBehavior) OnResume()        { b.Called() }
func (b *mockBehavior) OnClose()         { b.Called() }

func TestBehaviorHooksInOrder(t *testing.T) {
	bottom := &mockBehavior{}
	top := &mockBehavior{}
	queue := []Behavior{bottom, top}

	m := NewManager(FactoryFunc(func(string, types.Layer) (Behavior, error) {
		b := queue[0]
		queue = queue[1:]
		return b, nil
	}), nil)

	mock.InOrder(
		bottom.On("OnEnter", "first").Return().Once(),
		bottom.On("OnPause").Return().Once(),
		top.On("OnEnter", nil).Return().Once(),
		top.On("OnClose").Return().Once(),
		bottom.On("OnResume").Return().Once(),
	)

	_, err := m.OpenPanel("bottom", "first")
	require.NoError(t, err)
	_, err = m.OpenPanel("top", nil)
	require.NoError(t, err)
	m.CloseTopPanel()

	bottom.AssertExpectations(t)
	top.AssertExpectations(t)
}

func TestPauseHookOpensPanel(t *testing.T) {
	f := newFixture("A", "X", "B")
	f.onPause["A"] = func(inst *Instance) {
		_, err := inst.router.(*Manager).OpenPanel("X", nil)
		require.NoError(t, err)
	}
	m := f.manager

	a, err := m.OpenPanel("A", nil)
	require.NoError(t, err)
	b, err := m.OpenPanel("B", nil)
	require.NoError(t, err)

	snap := m.Snapshot()
	require.Len(t, snap.Panels, 3)
	assert.Equal(t, "A", snap.Panels[0].Tag)
	assert.Equal(t, "X", snap.Panels[1].Tag)
	assert.Same(t, b, m.TopPanel())
	assert.Equal(t, types.StatePaused, a.State())
	assert.Equal(t, types.StatePaused, f.built["X"].inst.State())
	assert.Equal(t, []string{"A.enter", "A.pause", "X.enter", "X.pause", "B.enter"}, f.journal.calls)
	checkInvariants(t, m)
}

func TestCloseHookOpensExclusive(t *testing.T) {
	f := newFixture("A", "Y", "B")
	f.onClose["A"] = func(inst *Instance) {
		_, err := inst.router.(*Manager).OpenExclusive("Y", nil)
		require.NoError(t, err)
	}
	m := f.manager

	_, err := m.OpenExclusive("A", nil)
	require.NoError(t, err)
	b, err := m.OpenExclusive("B", nil)
	require.NoError(t, err)

	assert.Same(t, b, m.Exclusive())
	assert.Equal(t, types.StateDestroyed, f.built["Y"].inst.State())
	assert.Equal(t, []string{"A.enter", "A.close", "Y.enter", "Y.close", "B.enter"}, f.journal.calls)
	assert.Equal(t, m.Stats().Opened-1, m.Stats().Closed)
	checkInvariants(t, m)

	m.Reset()
	assert.Empty(t, m.live)
}

func TestCloseFromAttachFailsOpen(t *testing.T) {
	tests := []struct {
		name string
		open func(m *Manager) (*Instance, error)
	}{
		{"panel", func(m *Manager) (*Instance, error) { return m.OpenPanel("Gone", nil) }},
		{"exclusive", func(m *Manager) (*Instance, error) { return m.OpenExclusive("Gone", nil) }},
		{"overlay", func(m *Manager) (*Instance, error) { return m.OpenOverlay("Gone", nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture("Gone")
			f.onAttach["Gone"] = func(inst *Instance) { inst.Close() }
			m := f.manager

			inst, err := tt.open(m)
			assert.Nil(t, inst)
			assert.ErrorIs(t, err, ErrClosedBeforeEnter)

			assert.Empty(t, f.journal.calls)
			assert.Equal(t, types.StateDestroyed, f.built["Gone"].inst.State())
			assert.Equal(t, uint64(1), m.Stats().ConstructFailures)
			assert.Zero(t, m.Stats().Closed)
			checkInvariants(t, m)
		})
	}
}

func TestCloseFromAttachKeepsTopPaused(t *testing.T) {
	f := newFixture("A", "Gone")
	f.onAttach["Gone"] = func(inst *Instance) { inst.Close() }
	m := f.manager

	a, err := m.OpenPanel("A", nil)
	require.NoError(t, err)
	_, err = m.OpenPanel("Gone", nil)
	require.ErrorIs(t, err, ErrClosedBeforeEnter)

	assert.Equal(t, types.StatePaused, a.State())
	assert.Equal(t, 1, m.PanelDepth())
	assert.True(t, m.ResumeTopPanel())
	checkInvariants(t, m)
}

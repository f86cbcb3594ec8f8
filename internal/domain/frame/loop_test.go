package frame

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/uilayers/internal/domain/ui"
	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

func newTestLoop(t *testing.T) *Loop {
	t.Helper()

	manager := ui.NewManager(ui.FactoryFunc(func(tag string, _ types.Layer) (ui.Behavior, error) {
		if tag == "missing" {
			return nil, errors.New("not found")
		}
		return ui.Base{}, nil
	}), nil)

	loop := NewLoop(manager, NewScheduler(), nil, 200)
	loop.Start(context.Background())
	t.Cleanup(loop.Stop)
	return loop
}

func TestDoRunsOnLoop(t *testing.T) {
	loop := newTestLoop(t)
	ctx := context.Background()

	var depth int
	err := loop.Do(ctx, func(m *ui.Manager) error {
		if _, err := m.OpenPanel("a", nil); err != nil {
			return err
		}
		if _, err := m.OpenPanel("b", nil); err != nil {
			return err
		}
		depth = m.PanelDepth()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, depth)

	err = loop.Do(ctx, func(m *ui.Manager) error {
		_, err := m.OpenPanel("missing", nil)
		return err
	})
	assert.Error(t, err)
}

func TestDoRecoversPanic(t *testing.T) {
	loop := newTestLoop(t)

	err := loop.Do(context.Background(), func(*ui.Manager) error {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// Loop keeps running
	assert.NoError(t, loop.Do(context.Background(), func(*ui.Manager) error { return nil }))
}

func TestSchedulerTicksOnLoop(t *testing.T) {
	loop := newTestLoop(t)
	fired := make(chan struct{})

	err := loop.Do(context.Background(), func(*ui.Manager) error {
		loop.Scheduler().After(10*time.Millisecond, func() { close(fired) })
		return nil
	})
	require.NoError(t, err)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task did not fire")
	}
	assert.Greater(t, loop.Frames(), uint64(0))
}

func TestDoAfterStop(t *testing.T) {
	loop := newTestLoop(t)
	loop.Stop()

	err := loop.Do(context.Background(), func(*ui.Manager) error { return nil })
	assert.ErrorIs(t, err, ErrLoopStopped)
}

func TestStartIsSingleUse(t *testing.T) {
	loop := newTestLoop(t)

	assert.NotPanics(t, func() {
		loop.Start(context.Background())
		loop.Stop()
		loop.Start(context.Background())
	})

	<-loop.Done()
	err := loop.Do(context.Background(), func(*ui.Manager) error { return nil })
	assert.ErrorIs(t, err, ErrLoopStopped)
}

func TestDoHonorsContext(t *testing.T) {
	loop := newTestLoop(t)
	release := make(chan struct{})
	started := make(chan struct{})

	go loop.Do(context.Background(), func(*ui.Manager) error {
		close(started)
		<-release
		return nil
	})
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := loop.Do(ctx, func(*ui.Manager) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestNewLoopDefaults(t *testing.T) {
	loop := NewLoop(nil, nil, nil, 0)
	assert.Equal(t, time.Second/DefaultFrameRate, loop.Interval())
	assert.NotNil(t, loop.Scheduler())
}

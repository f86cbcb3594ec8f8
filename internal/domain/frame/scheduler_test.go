package frame

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 16 * time.Millisecond

func TestAfterFiresOnce(t *testing.T) {
	s := NewScheduler()
	fired := 0
	h := s.After(50*time.Millisecond, func() { fired++ })

	require.True(t, h.Active())
	assert.NotEmpty(t, h.ID())

	for i := 0; i < 3; i++ {
		s.Tick(frame)
	}
	assert.Equal(t, 0, fired)

	s.Tick(frame)
	assert.Equal(t, 1, fired)
	assert.False(t, h.Active())

	s.Tick(time.Second)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, s.Len())
}

func TestCancel(t *testing.T) {
	s := NewScheduler()
	fired := false
	h := s.After(frame, func() { fired = true })

	h.Cancel()
	s.Tick(time.Second)

	assert.False(t, fired)
	assert.False(t, h.Active())
	assert.Equal(t, 0, s.Len())
}

func TestPauseResume(t *testing.T) {
	s := NewScheduler()
	fired := false
	h := s.After(2*frame, func() { fired = true })

	s.Tick(frame)
	h.Pause()
	s.Tick(10 * frame)
	assert.False(t, fired)
	assert.InDelta(t, 0.5, h.Progress(), 0.001)

	h.Resume()
	s.Tick(frame)
	assert.True(t, fired)
}

func TestLoopedTask(t *testing.T) {
	s := NewScheduler()
	count := 0
	h := s.Register(TaskOptions{Duration: 2 * frame, Looped: true, OnComplete: func() { count++ }})

	for i := 0; i < 6; i++ {
		s.Tick(frame)
	}
	assert.Equal(t, 3, count)
	assert.True(t, h.Active())

	h.Cancel()
	s.Tick(10 * frame)
	assert.Equal(t, 3, count)
}

func TestOnUpdateProgress(t *testing.T) {
	s := NewScheduler()
	var progress []float64
	s.Register(TaskOptions{
		Duration: 4 * frame,
		OnUpdate: func(p float64) { progress = append(progress, p) },
	})

	for i := 0; i < 5; i++ {
		s.Tick(frame)
	}
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1}, progress)
}

func TestRegisterDuringTickStartsNextFrame(t *testing.T) {
	s := NewScheduler()
	var order []string

	s.After(0, func() {
		order = append(order, "outer")
		s.After(0, func() { order = append(order, "inner") })
	})

	s.Tick(frame)
	assert.Equal(t, []string{"outer"}, order)
	assert.Equal(t, 1, s.Len())

	s.Tick(frame)
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestCancelTagAndAll(t *testing.T) {
	s := NewScheduler()
	fired := map[string]int{}
	for _, tag := range []string{"toast", "toast", "fade"} {
		tag := tag
		s.Register(TaskOptions{Duration: frame, Tag: tag, OnComplete: func() { fired[tag]++ }})
	}

	assert.Equal(t, 2, s.CancelTag("toast"))
	s.Tick(frame)
	assert.Equal(t, map[string]int{"fade": 1}, fired)

	s.After(frame, func() { fired["late"]++ })
	s.CancelAll()
	s.Tick(frame)
	assert.Zero(t, fired["late"])
	assert.Equal(t, 0, s.Len())
}

func TestRecycledHandleIsInert(t *testing.T) {
	s := NewScheduler()
	old := s.After(0, func() {})
	s.Tick(frame)
	require.False(t, old.Active())

	fired := false
	fresh := s.After(frame, func() { fired = true })

	old.Cancel()
	old.Pause()
	s.Tick(frame)

	assert.True(t, fired)
	assert.False(t, fresh.Active())
	assert.Equal(t, float64(1), old.Progress())
}

func TestDelay(t *testing.T) {
	s := NewScheduler()
	fired := false
	cancel := s.Delay(frame, func() { fired = true })
	cancel()
	s.Tick(frame)
	assert.False(t, fired)
}

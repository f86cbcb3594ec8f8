package frame

import (
	"sync"
	"time"

	"github.com/GriffinCanCode/uilayers/internal/shared/id"
)

// TaskOptions describes a delayed or repeating task
type TaskOptions struct {
	Duration   time.Duration
	OnComplete func()
	OnUpdate   func(progress float64) // Called every frame with progress in [0, 1]
	Looped     bool
	Tag        string // Groups tasks for CancelTag
}

type task struct {
	id       id.TimerID
	gen      uint64
	opts     TaskOptions
	elapsed  time.Duration
	paused   bool
	finished bool
}

// Handle refers to one scheduled task. A handle whose task has finished or
// been recycled is inert.
type Handle struct {
	s   *Scheduler
	t   *task
	gen uint64
}

func (h Handle) live() bool {
	return h.t != nil && h.t.gen == h.gen && !h.t.finished
}

// ID returns the task identifier, or "" for an inert handle
func (h Handle) ID() id.TimerID {
	if !h.live() {
		return ""
	}
	return h.t.id
}

// Active reports whether the task is still scheduled
func (h Handle) Active() bool { return h.live() }

// Cancel stops the task without calling OnComplete
func (h Handle) Cancel() {
	if h.live() {
		h.t.finished = true
	}
}

// Pause freezes the task's elapsed time
func (h Handle) Pause() {
	if h.live() {
		h.t.paused = true
	}
}

// Resume continues a paused task
func (h Handle) Resume() {
	if h.live() {
		h.t.paused = false
	}
}

// Progress returns elapsed/duration in [0, 1]
func (h Handle) Progress() float64 {
	if !h.live() {
		return 1
	}
	return h.t.progress()
}

func (t *task) progress() float64 {
	if t.opts.Duration <= 0 {
		return 1
	}
	p := float64(t.elapsed) / float64(t.opts.Duration)
	if p > 1 {
		return 1
	}
	return p
}

// Scheduler runs delayed callbacks on frame ticks.
//
// Scheduler is not safe for concurrent use; it belongs to the frame loop
// goroutine. Tasks registered while a tick is running start on the next tick.
type Scheduler struct {
	active  []*task
	pending []*task
	ticking bool
	gen     uint64
	pool    sync.Pool
}

// NewScheduler creates an empty scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		pool: sync.Pool{New: func() any { return new(task) }},
	}
}

// Register schedules a task
func (s *Scheduler) Register(opts TaskOptions) Handle {
	t := s.pool.Get().(*task)
	s.gen++
	*t = task{
		id:   id.NewTimerID(),
		gen:  s.gen,
		opts: opts,
	}

	if s.ticking {
		s.pending = append(s.pending, t)
	} else {
		s.active = append(s.active, t)
	}
	return Handle{s: s, t: t, gen: t.gen}
}

// After calls fn once, d from now
func (s *Scheduler) After(d time.Duration, fn func()) Handle {
	return s.Register(TaskOptions{Duration: d, OnComplete: fn})
}

// Delay is After with a plain cancel func
func (s *Scheduler) Delay(d time.Duration, fn func()) func() {
	return s.After(d, fn).Cancel
}

// Tick advances every active task by dt and fires the ones that completed
func (s *Scheduler) Tick(dt time.Duration) {
	s.ticking = true

	for _, t := range s.active {
		if t.finished || t.paused {
			continue
		}

		t.elapsed += dt
		if t.opts.OnUpdate != nil {
			t.opts.OnUpdate(t.progress())
		}
		if t.finished || t.elapsed < t.opts.Duration {
			continue
		}

		if t.opts.Looped && t.opts.Duration > 0 {
			t.elapsed -= t.opts.Duration
		} else {
			t.finished = true
		}
		if t.opts.OnComplete != nil {
			t.opts.OnComplete()
		}
	}

	s.ticking = false
	s.compact()
}

// compact drops finished tasks and activates pending ones
func (s *Scheduler) compact() {
	kept := s.active[:0]
	for _, t := range s.active {
		if t.finished {
			s.recycle(t)
			continue
		}
		kept = append(kept, t)
	}
	for i := len(kept); i < len(s.active); i++ {
		s.active[i] = nil
	}
	s.active = append(kept, s.pending...)

	for i := range s.pending {
		s.pending[i] = nil
	}
	s.pending = s.pending[:0]
}

func (s *Scheduler) recycle(t *task) {
	t.gen = 0
	t.opts = TaskOptions{}
	s.pool.Put(t)
}

// CancelAll cancels every task, pending ones included
func (s *Scheduler) CancelAll() {
	for _, t := range s.active {
		t.finished = true
	}
	for _, t := range s.pending {
		t.finished = true
	}
	if !s.ticking {
		s.compact()
	}
}

// CancelTag cancels every task with the given tag and returns how many were cancelled
func (s *Scheduler) CancelTag(tag string) int {
	n := 0
	for _, list := range [][]*task{s.active, s.pending} {
		for _, t := range list {
			if !t.finished && t.opts.Tag == tag {
				t.finished = true
				n++
			}
		}
	}
	return n
}

// Len returns the number of scheduled tasks that have not finished
func (s *Scheduler) Len() int {
	n := 0
	for _, list := range [][]*task{s.active, s.pending} {
		for _, t := range list {
			if !t.finished {
				n++
			}
		}
	}
	return n
}

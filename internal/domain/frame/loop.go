package frame

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/uilayers/internal/domain/ui"
)

// ErrLoopStopped is returned by Do when the loop is not running
var ErrLoopStopped = errors.New("frame loop is not running")

// DefaultFrameRate is used when a non-positive rate is configured
const DefaultFrameRate = 60

// Recorder receives per-frame measurements. monitoring.Metrics implements it.
type Recorder interface {
	RecordFrame(work time.Duration, jobs int)
	SetScheduledTasks(n int)
}

type job struct {
	fn     func(*ui.Manager) error
	result chan error
}

// Loop owns the UI manager and its scheduler. Every mutation of either runs
// on the loop goroutine.
type Loop struct {
	manager   *ui.Manager
	scheduler *Scheduler
	logger    *zap.Logger
	recorder  Recorder
	interval  time.Duration

	work    chan job
	done    chan struct{}
	started atomic.Bool
	running atomic.Bool
	frames  atomic.Uint64
	stopMu  sync.Mutex
	cancel  context.CancelFunc
}

// NewLoop creates a loop ticking frameRate times per second
func NewLoop(manager *ui.Manager, scheduler *Scheduler, logger *zap.Logger, frameRate int) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	if frameRate <= 0 {
		frameRate = DefaultFrameRate
	}
	if scheduler == nil {
		scheduler = NewScheduler()
	}
	return &Loop{
		manager:   manager,
		scheduler: scheduler,
		logger:    logger,
		interval:  time.Second / time.Duration(frameRate),
		work:      make(chan job, 64),
		done:      make(chan struct{}),
	}
}

// WithRecorder adds frame metrics to the loop
func (l *Loop) WithRecorder(r Recorder) *Loop {
	l.recorder = r
	return l
}

// Scheduler returns the loop's scheduler. Use it only from inside Do or a task callback.
func (l *Loop) Scheduler() *Scheduler {
	return l.scheduler
}

// Interval returns the frame duration
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Frames returns the number of frames run so far
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Start runs the loop in a new goroutine until ctx is done or Stop is called.
// A Loop runs once; later calls to Start do nothing.
func (l *Loop) Start(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		l.logger.Warn("Frame loop already started")
		return
	}
	ctx, cancel := context.WithCancel(ctx)

	l.stopMu.Lock()
	l.cancel = cancel
	l.stopMu.Unlock()

	l.running.Store(true)
	go l.run(ctx)
}

// Stop halts the loop and waits for it to exit. Queued work is rejected.
func (l *Loop) Stop() {
	l.stopMu.Lock()
	cancel := l.cancel
	l.stopMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-l.done
}

// Done is closed once the loop has exited
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Do runs fn on the loop goroutine and waits for it to finish
func (l *Loop) Do(ctx context.Context, fn func(*ui.Manager) error) error {
	if !l.running.Load() {
		return ErrLoopStopped
	}

	j := job{fn: fn, result: make(chan error, 1)}
	select {
	case l.work <- j:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-j.result:
		return err
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)
	defer l.running.Store(false)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("Frame loop started", zap.Duration("interval", l.interval))
	last := time.Now()
	jobs := 0

	for {
		select {
		case <-ctx.Done():
			l.drain()
			l.logger.Info("Frame loop stopped", zap.Uint64("frames", l.frames.Load()))
			return

		case j := <-l.work:
			j.result <- l.exec(j.fn)
			jobs++

		case now := <-ticker.C:
			start := time.Now()
			l.tick(now.Sub(last))
			last = now

			if l.recorder != nil {
				l.recorder.RecordFrame(time.Since(start), jobs)
				l.recorder.SetScheduledTasks(l.scheduler.Len())
			}
			jobs = 0
		}
	}
}

func (l *Loop) tick(dt time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Panic in frame task", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	l.frames.Add(1)
	l.scheduler.Tick(dt)
}

// exec runs fn and converts a panic into an error
func (l *Loop) exec(fn func(*ui.Manager) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Panic in frame job", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("frame job panicked: %v", r)
		}
	}()
	return fn(l.manager)
}

// drain rejects work that was queued but never run
func (l *Loop) drain() {
	for {
		select {
		case j := <-l.work:
			j.result <- ErrLoopStopped
		default:
			return
		}
	}
}

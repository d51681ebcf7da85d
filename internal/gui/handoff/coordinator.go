// Package handoff moves frames from producer goroutines onto the UI
// goroutine. It keeps at most one undelivered frame: a newer frame replaces a
// stale one instead of queueing behind it.
package handoff

import (
	"context"
	"sync"
	"sync/atomic"

	"cvview/internal/logger"
	"cvview/internal/models"

	"fyne.io/fyne/v2"
)

// FrameSink receives frames on the UI goroutine.
type FrameSink interface {
	SetFrame(*models.Frame) error
}

// UIRunner runs fn on the UI goroutine and returns once it has completed.
type UIRunner func(fn func())

type Stats struct {
	Submitted uint64
	Delivered uint64
	Dropped   uint64
	Rejected  uint64
}

type Coordinator struct {
	sink   FrameSink
	logger logger.Logger
	run    UIRunner

	mu      sync.Mutex
	pending *models.Frame
	wake    chan struct{}
	done    chan struct{}
	stop    sync.Once

	submitted atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	rejected  atomic.Uint64
}

// NewCoordinator delivers through fyne.DoAndWait, so the next frame is only
// picked up after the previous one was applied.
func NewCoordinator(sink FrameSink, log logger.Logger) *Coordinator {
	return NewCoordinatorWithRunner(sink, log, fyne.DoAndWait)
}

func NewCoordinatorWithRunner(sink FrameSink, log logger.Logger, run UIRunner) *Coordinator {
	if log == nil {
		log = logger.NoOpLogger{}
	}
	return &Coordinator{
		sink:   sink,
		logger: log,
		run:    run,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Submit never blocks. Safe to call from any goroutine.
func (c *Coordinator) Submit(f *models.Frame) {
	if f == nil {
		return
	}
	c.submitted.Add(1)

	c.mu.Lock()
	if c.pending != nil {
		c.dropped.Add(1)
	}
	c.pending = f
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Run delivers frames until ctx is cancelled or Stop is called. A delivery
// already queued on the UI goroutine keeps Run alive until the UI runs it or
// quits, so Run may return after Stop; a frame delivered after Stop is
// discarded.
func (c *Coordinator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-c.wake:
			if f := c.take(); f != nil {
				c.deliver(f)
			}
		}
	}
}

func (c *Coordinator) take() *models.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.pending
	c.pending = nil
	return f
}

func (c *Coordinator) stopped() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Coordinator) deliver(f *models.Frame) {
	if c.stopped() {
		return
	}
	var err error
	applied := false
	c.run(func() {
		if c.stopped() {
			return
		}
		applied = true
		err = c.sink.SetFrame(f)
	})
	if !applied {
		return
	}
	if err != nil {
		c.rejected.Add(1)
		c.logger.Debug("frame rejected by sink", map[string]interface{}{
			"seq":   f.Seq,
			"error": err.Error(),
		})
		return
	}
	c.delivered.Add(1)
}

// Stop ends Run. It is safe to call more than once.
func (c *Coordinator) Stop() {
	c.stop.Do(func() { close(c.done) })
}

// Shutdown satisfies shutdown.Shutdownable.
func (c *Coordinator) Shutdown() {
	c.Stop()
}

func (c *Coordinator) Stats() Stats {
	return Stats{
		Submitted: c.submitted.Load(),
		Delivered: c.delivered.Load(),
		Dropped:   c.dropped.Load(),
		Rejected:  c.rejected.Load(),
	}
}

package engine

import (
	"io"
	"log/slog"
)

// VirtualClock is a discrete-event scheduler driven purely by virtual frames.
//
// Work is queued with Schedule or ScheduleAt and executed by Run in
// (due frame, sequence) order. Run advances Now to each action's due frame
// before executing it. Nothing in the clock consults wall-clock time.
//
// Work executed by Run may schedule further work; it is inserted into the
// same queue and drained by the same Run call.
//
// Thread-safety: a VirtualClock belongs to a single test and must only be
// used from one goroutine.
type VirtualClock struct {
	now      int64
	seq      *Sequence
	queue    *actionQueue
	started  bool
	running  bool
	maxFrame int64
	logger   *slog.Logger
}

// ClockOption configures a VirtualClock.
type ClockOption func(*VirtualClock)

// WithMaxFrame bounds how far Run advances. Actions due after frame are
// discarded when Run reaches them. Zero (the default) means unbounded.
func WithMaxFrame(frame int64) ClockOption {
	return func(c *VirtualClock) {
		c.maxFrame = frame
	}
}

// WithLogger sets the logger used for per-action debug output.
func WithLogger(logger *slog.Logger) ClockOption {
	return func(c *VirtualClock) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewVirtualClock creates a clock at frame 0 with an empty queue.
func NewVirtualClock(opts ...ClockOption) *VirtualClock {
	c := &VirtualClock{
		seq:    NewSequence(),
		queue:  newActionQueue(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the current virtual frame.
func (c *VirtualClock) Now() int64 {
	return c.now
}

// Started reports whether Run has been called.
func (c *VirtualClock) Started() bool {
	return c.started
}

// Running reports whether Run is currently draining the queue.
func (c *VirtualClock) Running() bool {
	return c.running
}

// Pending returns the number of queued actions.
func (c *VirtualClock) Pending() int {
	return c.queue.Len()
}

// Schedule queues work to run at the current frame, after any work already
// queued for that frame.
func (c *VirtualClock) Schedule(work func()) *Handle {
	return c.enqueue(work, c.now)
}

// ScheduleAt queues work to run when the clock reaches frame.
//
// Once Run has started, a frame earlier than Now is rejected with an
// INVALID_SCHEDULE RuntimeError. Before Run, any frame is accepted; work due
// before frame 0 runs first, at frame 0.
func (c *VirtualClock) ScheduleAt(work func(), frame int64) (*Handle, error) {
	if c.started && frame < c.now {
		return nil, NewInvalidScheduleError(frame, c.now)
	}
	return c.enqueue(work, frame), nil
}

func (c *VirtualClock) enqueue(work func(), frame int64) *Handle {
	a := &action{due: frame, seq: c.seq.Next(), work: work}
	c.queue.enqueue(a)
	return &Handle{clock: c, action: a}
}

// Run drains the queue, executing each action at its due frame.
//
// Run returns when the queue is empty, or when the next action lies beyond
// the configured max frame. Calling Run from inside a running action is an
// error; calling it again after it returned drains whatever was queued since.
func (c *VirtualClock) Run() error {
	if c.running {
		return NewReentrantRunError(c.now)
	}
	c.started = true
	c.running = true
	defer func() { c.running = false }()

	executed := 0
	for {
		a, ok := c.queue.peek()
		if !ok {
			break
		}
		if c.maxFrame > 0 && a.due > c.maxFrame {
			dropped := c.queue.Len()
			c.queue = newActionQueue()
			c.logger.Debug("max frame reached, discarding actions",
				"max_frame", c.maxFrame,
				"dropped", dropped,
			)
			break
		}

		c.queue.dequeue()
		if a.due > c.now {
			c.now = a.due
		}
		c.logger.Debug("executing action", "frame", c.now, "seq", a.seq)
		a.work()
		executed++
	}

	c.logger.Debug("clock drained", "frame", c.now, "executed", executed)
	return nil
}

// Handle refers to one scheduled action.
type Handle struct {
	clock    *VirtualClock
	action   *action
	disposed bool
}

// Due returns the frame the action is scheduled for.
func (h *Handle) Due() int64 {
	return h.action.due
}

// Dispose cancels the action if it has not fired yet.
// It is idempotent: later calls are no-ops.
func (h *Handle) Dispose() {
	if h.disposed {
		return
	}
	h.disposed = true
	h.clock.queue.remove(h.action)
}

// Disposed reports whether Dispose has been called.
func (h *Handle) Disposed() bool {
	return h.disposed
}

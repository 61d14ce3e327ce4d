package testutil

import (
	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/ir"
)

// Recorder is an observer that stamps every notification with the clock's
// current frame.
//
// Thread-safety: like the clock it reads, a Recorder belongs to one test
// goroutine.
type Recorder struct {
	clock  *engine.VirtualClock
	Events ir.Timeline
}

// NewRecorder creates a recorder reading frames from clock.
func NewRecorder(clock *engine.VirtualClock) *Recorder {
	return &Recorder{clock: clock}
}

// Observer returns the observer to pass to Subscribe.
func (r *Recorder) Observer() ir.Observer {
	return ir.Observer{
		OnNext:     func(v any) { r.record(ir.Next(v)) },
		OnError:    func(err any) { r.record(ir.Error(err)) },
		OnComplete: func() { r.record(ir.Complete()) },
	}
}

func (r *Recorder) record(n ir.Notification) {
	r.Events = append(r.Events, ir.TimedEvent{Frame: r.clock.Now(), Notification: n})
}

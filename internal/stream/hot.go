package stream

import (
	"slices"

	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/ir"
)

// Hot plays its timeline once on the shared virtual timeline, independent of
// who is subscribed.
//
// A subscriber only sees events that fire while it is subscribed; events
// that already fired are never replayed.
type Hot struct {
	clock       *engine.VirtualClock
	timeline    ir.Timeline
	logs        []ir.SubscriptionLog
	subscribers []*hotSubscriber
	started     bool
}

type hotSubscriber struct {
	sub      Subscription
	observer ir.Observer
}

// NewHot creates a hot source driven by clock. Nothing is scheduled until
// Start is called.
func NewHot(clock *engine.VirtualClock, timeline ir.Timeline) *Hot {
	return &Hot{
		clock:    clock,
		timeline: append(ir.Timeline(nil), timeline...),
	}
}

// Start schedules every event at its absolute frame. Events before frame 0
// precede any possible subscription and are skipped. Start is idempotent.
func (h *Hot) Start() error {
	if h.started {
		return nil
	}
	for _, ev := range h.timeline {
		if ev.Frame < 0 {
			continue
		}
		n := ev.Notification
		if _, err := h.clock.ScheduleAt(func() { h.emit(n) }, ev.Frame); err != nil {
			return err
		}
	}
	h.started = true
	return nil
}

// Started reports whether Start has scheduled the timeline.
func (h *Hot) Started() bool {
	return h.started
}

// Timeline returns a copy of the authored timeline.
func (h *Hot) Timeline() ir.Timeline {
	return append(ir.Timeline{}, h.timeline...)
}

// Subscriptions returns a snapshot of every subscription log so far.
func (h *Hot) Subscriptions() []ir.SubscriptionLog {
	return append([]ir.SubscriptionLog{}, h.logs...)
}

// Subscribe attaches o from the current frame on.
func (h *Hot) Subscribe(o ir.Observer) Subscription {
	idx := len(h.logs)
	h.logs = append(h.logs, ir.NewSubscriptionLog(h.clock.Now()))

	s := &hotSubscriber{observer: o}
	s.sub = NewSubscription(func() {
		h.subscribers = slices.DeleteFunc(h.subscribers, func(x *hotSubscriber) bool { return x == s })
		h.logs[idx].Unsubscribed = h.clock.Now()
	})
	h.subscribers = append(h.subscribers, s)
	return s.sub
}

func (h *Hot) emit(n ir.Notification) {
	// Snapshot: deliveries may subscribe or unsubscribe.
	current := append([]*hotSubscriber(nil), h.subscribers...)
	for _, s := range current {
		deliver(s.sub, s.observer, n)
	}
}

package stream

import (
	"fmt"

	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/ir"
)

// Cold replays its whole timeline to every subscriber, starting at the
// frame that subscriber subscribed at.
//
// Each subscription gets an independent, identically timed replay.
type Cold struct {
	clock    *engine.VirtualClock
	timeline ir.Timeline
	logs     []ir.SubscriptionLog
}

// NewCold creates a cold source driven by clock.
// Frames are relative to the subscription and must not be negative.
func NewCold(clock *engine.VirtualClock, timeline ir.Timeline) (*Cold, error) {
	for _, ev := range timeline {
		if ev.Frame < 0 {
			return nil, fmt.Errorf("cold source event at negative frame %d", ev.Frame)
		}
	}
	return &Cold{
		clock:    clock,
		timeline: append(ir.Timeline(nil), timeline...),
	}, nil
}

// Timeline returns a copy of the authored timeline.
func (c *Cold) Timeline() ir.Timeline {
	return append(ir.Timeline{}, c.timeline...)
}

// Nested presents the authored timeline as a nested-stream value.
func (c *Cold) Nested() ir.Nested {
	return ir.Nested{Events: c.Timeline()}
}

// Subscriptions returns a snapshot of every subscription log so far.
func (c *Cold) Subscriptions() []ir.SubscriptionLog {
	return append([]ir.SubscriptionLog{}, c.logs...)
}

// Subscribe schedules a replay of the timeline for o, offset by the current
// frame. Unsubscribing cancels deliveries that have not fired yet.
func (c *Cold) Subscribe(o ir.Observer) Subscription {
	idx := len(c.logs)
	start := c.clock.Now()
	c.logs = append(c.logs, ir.NewSubscriptionLog(start))

	handles := make([]*engine.Handle, 0, len(c.timeline))
	sub := NewSubscription(func() {
		for _, h := range handles {
			h.Dispose()
		}
		c.logs[idx].Unsubscribed = c.clock.Now()
	})

	for _, ev := range c.timeline {
		n := ev.Notification
		// start+frame is never before Now, so scheduling cannot fail.
		h, err := c.clock.ScheduleAt(func() { deliver(sub, o, n) }, start+ev.Frame)
		if err != nil {
			panic(err)
		}
		handles = append(handles, h)
	}
	return sub
}

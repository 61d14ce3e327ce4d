package stream

import (
	"github.com/roach88/marbles/internal/ir"
)

// Source is anything a consumer can subscribe to.
//
// The harness treats the stream runtime as external: this interface is the
// whole contract it relies on.
type Source interface {
	Subscribe(o ir.Observer) Subscription
}

// Subscription is the disposal capability returned by Subscribe.
type Subscription interface {
	// Unsubscribe stops further delivery. Calling it more than once is a no-op.
	Unsubscribe()

	// Closed reports whether the subscription has been torn down.
	Closed() bool
}

// SubscriptionSource is implemented by sources that keep a log of every
// subscription made to them.
type SubscriptionSource interface {
	Subscriptions() []ir.SubscriptionLog
}

// SourceFunc adapts a function to Source.
type SourceFunc func(o ir.Observer) Subscription

// Subscribe calls f(o).
func (f SourceFunc) Subscribe(o ir.Observer) Subscription {
	return f(o)
}

// subscription runs its teardown exactly once.
type subscription struct {
	closed   bool
	teardown func()
}

// NewSubscription returns a Subscription whose first Unsubscribe runs teardown.
func NewSubscription(teardown func()) Subscription {
	return &subscription{teardown: teardown}
}

func (s *subscription) Unsubscribe() {
	if s.closed {
		return
	}
	s.closed = true
	if s.teardown != nil {
		s.teardown()
	}
}

func (s *subscription) Closed() bool {
	return s.closed
}

// deliver hands n to o unless sub is already closed. A terminal notification
// tears the subscription down after delivery.
func deliver(sub Subscription, o ir.Observer, n ir.Notification) {
	if sub.Closed() {
		return
	}
	n.Deliver(o)
	if n.IsTerminal() {
		sub.Unsubscribe()
	}
}

// FromNotification returns a source that replays n synchronously to each
// subscriber: a next notification is followed by completion, an error or a
// completion is delivered alone.
func FromNotification(n ir.Notification) Source {
	return SourceFunc(func(o ir.Observer) Subscription {
		sub := NewSubscription(nil)
		deliver(sub, o, n)
		if n.Kind == ir.KindNext {
			deliver(sub, o, ir.Complete())
		}
		return sub
	})
}

package testutil

import (
	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/ir"
	"github.com/roach88/marbles/internal/stream"
)

// Map returns a source that applies fn to every value of src.
func Map(src stream.Source, fn func(any) any) stream.Source {
	return stream.SourceFunc(func(o ir.Observer) stream.Subscription {
		return src.Subscribe(ir.Observer{
			OnNext: func(v any) {
				if o.OnNext != nil {
					o.OnNext(fn(v))
				}
			},
			OnError:    o.OnError,
			OnComplete: o.OnComplete,
		})
	})
}

// Take returns a source that completes after the first n values of src and
// unsubscribes from it.
func Take(src stream.Source, n int) stream.Source {
	return stream.SourceFunc(func(o ir.Observer) stream.Subscription {
		var upstream stream.Subscription
		done := false
		seen := 0
		complete := func() {
			if done {
				return
			}
			done = true
			if upstream != nil {
				upstream.Unsubscribe()
			}
			if o.OnComplete != nil {
				o.OnComplete()
			}
		}
		if n <= 0 {
			complete()
			return stream.NewSubscription(nil)
		}
		upstream = src.Subscribe(ir.Observer{
			OnNext: func(v any) {
				if done {
					return
				}
				seen++
				if o.OnNext != nil {
					o.OnNext(v)
				}
				if seen >= n {
					complete()
				}
			},
			OnError: func(err any) {
				if done {
					return
				}
				done = true
				if o.OnError != nil {
					o.OnError(err)
				}
			},
			OnComplete: complete,
		})
		// src may have terminated synchronously.
		if done {
			upstream.Unsubscribe()
		}
		return stream.NewSubscription(func() {
			done = true
			upstream.Unsubscribe()
		})
	})
}

// Delay returns a source that re-emits every notification of src frames
// later on clock.
func Delay(clock *engine.VirtualClock, src stream.Source, frames int64) stream.Source {
	return stream.SourceFunc(func(o ir.Observer) stream.Subscription {
		var pending []*engine.Handle
		later := func(n ir.Notification) {
			h, err := clock.ScheduleAt(func() { n.Deliver(o) }, clock.Now()+frames)
			if err != nil {
				panic(err)
			}
			pending = append(pending, h)
		}
		upstream := src.Subscribe(ir.Observer{
			OnNext:     func(v any) { later(ir.Next(v)) },
			OnError:    func(err any) { later(ir.Error(err)) },
			OnComplete: func() { later(ir.Complete()) },
		})
		return stream.NewSubscription(func() {
			upstream.Unsubscribe()
			for _, h := range pending {
				h.Dispose()
			}
		})
	})
}

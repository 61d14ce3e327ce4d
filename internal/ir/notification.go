package ir

import (
	"fmt"
)

// Kind distinguishes the three notification variants.
type Kind string

const (
	// KindNext carries a value.
	KindNext Kind = "N"
	// KindError carries an error payload and terminates the stream.
	KindError Kind = "E"
	// KindComplete terminates the stream without a payload.
	KindComplete Kind = "C"
)

// Notification is one signal delivered by a stream.
//
// Value is only meaningful for KindNext and Err only for KindError.
// Notifications are plain values: copying one never shares mutable state.
type Notification struct {
	Kind  Kind `json:"kind"`
	Value any  `json:"value,omitempty"`
	Err   any  `json:"error,omitempty"`
}

// Next creates a KindNext notification.
func Next(v any) Notification {
	return Notification{Kind: KindNext, Value: v}
}

// Error creates a KindError notification.
// err may be any payload; marble diagrams default to the string "error".
func Error(err any) Notification {
	return Notification{Kind: KindError, Err: err}
}

// Complete creates a KindComplete notification.
func Complete() Notification {
	return Notification{Kind: KindComplete}
}

// IsTerminal reports whether no further notification may follow this one.
func (n Notification) IsTerminal() bool {
	return n.Kind == KindError || n.Kind == KindComplete
}

// Observer is the capability set a consumer exposes.
// Any capability may be nil; delivering to a nil capability is a no-op.
type Observer struct {
	OnNext     func(v any)
	OnError    func(err any)
	OnComplete func()
}

// Deliver invokes the capability of o that matches n's kind.
// This is the only path by which a notification payload reaches a consumer.
func (n Notification) Deliver(o Observer) {
	switch n.Kind {
	case KindNext:
		if o.OnNext != nil {
			o.OnNext(n.Value)
		}
	case KindError:
		if o.OnError != nil {
			o.OnError(n.Err)
		}
	case KindComplete:
		if o.OnComplete != nil {
			o.OnComplete()
		}
	}
}

// String renders n for diagnostics.
func (n Notification) String() string {
	switch n.Kind {
	case KindNext:
		return fmt.Sprintf("next(%v)", n.Value)
	case KindError:
		return fmt.Sprintf("error(%v)", n.Err)
	case KindComplete:
		return "complete"
	default:
		return fmt.Sprintf("unknown(%s)", string(n.Kind))
	}
}

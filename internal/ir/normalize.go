package ir

import (
	"fmt"
)

// ErrorInfo is the comparable projection of a Go error: its dynamic type name
// and message. Wrapping chains and any captured stack are not part of it.
type ErrorInfo struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// InfoOf reduces err to its ErrorInfo.
func InfoOf(err error) ErrorInfo {
	return ErrorInfo{Name: fmt.Sprintf("%T", err), Message: err.Error()}
}

// Normalize prepares a value for structural comparison.
//
// Error payloads that are Go errors become ErrorInfo, recursively through
// nested timelines. Values of other types are returned unchanged.
func Normalize(v any) any {
	switch val := v.(type) {
	case Timeline:
		return normalizeTimeline(val)
	case Notification:
		return normalizeNotification(val)
	case Nested:
		return Nested{Events: normalizeTimeline(val.Events)}
	default:
		return v
	}
}

func normalizeTimeline(t Timeline) Timeline {
	if t == nil {
		return Timeline{}
	}
	out := make(Timeline, len(t))
	for i, ev := range t {
		out[i] = TimedEvent{Frame: ev.Frame, Notification: normalizeNotification(ev.Notification)}
	}
	return out
}

func normalizeNotification(n Notification) Notification {
	switch n.Kind {
	case KindError:
		if err, ok := n.Err.(error); ok {
			return Notification{Kind: KindError, Err: InfoOf(err)}
		}
	case KindNext:
		if nested, ok := n.Value.(Nested); ok {
			return Notification{Kind: KindNext, Value: Nested{Events: normalizeTimeline(nested.Events)}}
		}
	}
	return n
}

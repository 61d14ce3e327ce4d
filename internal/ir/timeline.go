package ir

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Infinity marks a frame that never happens ("+∞").
const Infinity int64 = math.MaxInt64

// TimedEvent is a notification stamped with the virtual frame it occurs at.
type TimedEvent struct {
	Frame        int64        `json:"frame"`
	Notification Notification `json:"notification"`
}

// Timeline is an ordered sequence of timed events.
//
// Ordering is by frame ascending; events sharing a frame keep the order in
// which they were authored or observed.
type Timeline []TimedEvent

// Sort orders the timeline by frame, preserving insertion order for ties.
func (t Timeline) Sort() {
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].Frame < t[j].Frame
	})
}

// String renders one event per line.
func (t Timeline) String() string {
	var b strings.Builder
	for _, ev := range t {
		fmt.Fprintf(&b, "%d: %s\n", ev.Frame, ev.Notification)
	}
	return b.String()
}

// Nested tags a timeline emitted as the value of an outer stream.
//
// The tag is what marks a value as a stream of streams; the compiler and the
// expectation recorder never inspect arbitrary values for stream-like shape.
type Nested struct {
	Events Timeline `json:"events"`
}

// NestedSource is implemented by sources that were compiled from a diagram
// and can present their authored timeline as a Nested value. Implementing it
// is the explicit opt-in for stream-of-streams diagrams.
type NestedSource interface {
	Nested() Nested
}

// String renders the nested timeline inline.
func (n Nested) String() string {
	parts := make([]string, len(n.Events))
	for i, ev := range n.Events {
		parts[i] = fmt.Sprintf("%d:%s", ev.Frame, ev.Notification)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

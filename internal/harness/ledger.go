package harness

import (
	"errors"
	"fmt"

	"github.com/roach88/marbles/internal/compiler"
	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/ir"
	"github.com/roach88/marbles/internal/stream"
)

// entry is one pending expectation.
//
// The actual side is read lazily so that sources and recorders can keep
// mutating it until the clock has drained.
type entry struct {
	kind     string
	label    string
	ready    bool
	err      error
	actual   func() any
	expected any
}

// Ledger collects expectations registered before the clock runs and
// resolves them in one pass afterwards.
type Ledger struct {
	entries    []*entry
	comparator Comparator
	factor     int64
}

// NewLedger creates an empty ledger. A nil comparator means DefaultComparator.
func NewLedger(comparator Comparator, factor int64) *Ledger {
	if comparator == nil {
		comparator = DefaultComparator
	}
	if factor <= 0 {
		factor = compiler.FrameTimeFactor
	}
	return &Ledger{comparator: comparator, factor: factor}
}

// Len returns the number of registered expectations.
func (l *Ledger) Len() int {
	return len(l.entries)
}

func (l *Ledger) add(kind string, actual func() any) *entry {
	e := &entry{kind: kind, actual: actual}
	l.entries = append(l.entries, e)
	return e
}

// Resolve compares every ready expectation and drains the ledger.
//
// Mismatches come back as *MismatchError, expectations never given an
// expected value as *UnresolvedError, and expectations whose diagrams failed
// to compile with their compile error. All failures are joined.
func (l *Ledger) Resolve() error {
	var errs []error
	for i, e := range l.entries {
		switch {
		case e.err != nil:
			errs = append(errs, fmt.Errorf("expectation #%d: %w", i, e.err))
		case !e.ready:
			errs = append(errs, &UnresolvedError{Index: i, Kind: e.kind, Label: e.label})
		default:
			actual := ir.Normalize(e.actual())
			expected := ir.Normalize(e.expected)
			if !l.comparator(actual, expected) {
				errs = append(errs, newMismatchError(i, e.kind, e.label, actual, expected, l.factor))
			}
		}
	}
	l.entries = nil
	return errors.Join(errs...)
}

// ObservableRecorder is returned by ExpectObservable. It holds the timeline
// observed from a source until ToBe supplies the expected one.
type ObservableRecorder struct {
	entry   *entry
	capture *capture
	factor  int64
}

// Named labels the expectation in failure reports.
func (r *ObservableRecorder) Named(label string) *ObservableRecorder {
	r.entry.label = label
	return r
}

// ToBe declares the expected timeline.
//
// Values implementing ir.NestedSource (such as a *stream.Cold) are compared
// as the nested timeline they were authored with.
func (r *ObservableRecorder) ToBe(diagram string, values map[string]any, errorValue any) error {
	if r.entry.err != nil {
		return r.entry.err
	}
	expected, err := compiler.ParseValueDiagram(diagram, compiler.Options{
		Values:            values,
		ErrorValue:        errorValue,
		MaterializeNested: true,
		FrameTimeFactor:   r.factor,
	})
	if err != nil {
		r.entry.err = err
		return err
	}
	r.entry.expected = expected
	r.entry.ready = true
	return nil
}

// Actual returns the timeline recorded so far.
func (r *ObservableRecorder) Actual() ir.Timeline {
	if r.capture == nil {
		return ir.Timeline{}
	}
	return r.capture.timeline()
}

// SubscriptionRecorder is returned by ExpectSubscriptions.
type SubscriptionRecorder struct {
	entry  *entry
	source stream.SubscriptionSource
	factor int64
}

// Named labels the expectation in failure reports.
func (r *SubscriptionRecorder) Named(label string) *SubscriptionRecorder {
	r.entry.label = label
	return r
}

// ToBe declares one subscription diagram per expected subscription, in
// subscription order. A diagram with neither ^ nor ! stands for a
// subscription that never happened and adds no entry, so ToBe() and ToBe("")
// both expect no subscriptions at all.
func (r *SubscriptionRecorder) ToBe(diagrams ...string) error {
	if r.entry.err != nil {
		return r.entry.err
	}
	expected := []ir.SubscriptionLog{}
	for _, diagram := range diagrams {
		log, err := compiler.ParseSubscriptionDiagramWithFactor(diagram, r.factor)
		if err != nil {
			r.entry.err = err
			return err
		}
		if log == compiler.NoSubscription() {
			continue
		}
		expected = append(expected, log)
	}
	r.entry.expected = expected
	r.entry.ready = true
	return nil
}

// Actual returns the subscription logs of the source.
func (r *SubscriptionRecorder) Actual() []ir.SubscriptionLog {
	if r.source == nil {
		return []ir.SubscriptionLog{}
	}
	return r.source.Subscriptions()
}

// recorded is one delivered notification. When the value was itself a
// source, inner holds what that source emitted.
type recorded struct {
	frame int64
	n     ir.Notification
	inner *capture
}

// capture observes a source on the clock, stamping each notification with
// its frame relative to origin.
type capture struct {
	clock  *engine.VirtualClock
	origin int64
	events []recorded
}

func newCapture(clock *engine.VirtualClock, origin int64) *capture {
	return &capture{clock: clock, origin: origin}
}

func (c *capture) observer() ir.Observer {
	return ir.Observer{
		OnNext: func(v any) {
			rec := recorded{frame: c.clock.Now() - c.origin, n: ir.Next(v)}
			if src, ok := v.(stream.Source); ok {
				rec.inner = newCapture(c.clock, c.clock.Now())
				src.Subscribe(rec.inner.observer())
			}
			c.events = append(c.events, rec)
		},
		OnError: func(err any) {
			c.events = append(c.events, recorded{frame: c.clock.Now() - c.origin, n: ir.Error(err)})
		},
		OnComplete: func() {
			c.events = append(c.events, recorded{frame: c.clock.Now() - c.origin, n: ir.Complete()})
		},
	}
}

// timeline materializes the capture, turning inner sources into ir.Nested.
func (c *capture) timeline() ir.Timeline {
	out := make(ir.Timeline, 0, len(c.events))
	for _, rec := range c.events {
		n := rec.n
		if rec.inner != nil {
			n = ir.Next(ir.Nested{Events: rec.inner.timeline()})
		}
		out = append(out, ir.TimedEvent{Frame: rec.frame, Notification: n})
	}
	return out
}

package harness

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/assert"

	"github.com/roach88/marbles/internal/compiler"
	"github.com/roach88/marbles/internal/ir"
)

// Comparator reports whether an actual value equals the expected one.
// Both sides have already been passed through ir.Normalize.
type Comparator func(actual, expected any) bool

// DefaultComparator is deep equality as testify's assert.Equal defines it.
func DefaultComparator(actual, expected any) bool {
	return assert.ObjectsAreEqual(expected, actual)
}

// Expectation kinds.
const (
	KindObservable    = "observable"
	KindSubscriptions = "subscriptions"
)

// MismatchError is returned when an actual timeline or set of subscription
// logs differs from the expected one.
type MismatchError struct {
	Index int    // registration order of the expectation
	Kind  string // KindObservable or KindSubscriptions
	Label string // optional caller-supplied name

	// Canonical JSON renderings of both sides.
	Expected string
	Actual   string

	// Marble renderings of both sides, when they can be drawn.
	ExpectedDiagram string
	ActualDiagram   string

	// Unified diff of the per-event renderings.
	Diff string
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "expectation %s: %s mismatch\n", e.name(), e.Kind)
	if e.ExpectedDiagram != "" || e.ActualDiagram != "" {
		fmt.Fprintf(&buf, "  expected diagram: %s\n", e.ExpectedDiagram)
		fmt.Fprintf(&buf, "  actual diagram:   %s\n", e.ActualDiagram)
	}
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual:   %s\n", e.Actual)
	if e.Diff != "" {
		buf.WriteString("\n")
		buf.WriteString(e.Diff)
	}
	return buf.String()
}

func (e *MismatchError) name() string {
	if e.Label != "" {
		return fmt.Sprintf("#%d (%s)", e.Index, e.Label)
	}
	return fmt.Sprintf("#%d", e.Index)
}

// UnresolvedError is returned when an expectation was registered but ToBe
// was never called for it.
type UnresolvedError struct {
	Index int
	Kind  string
	Label string
}

// Error implements the error interface.
func (e *UnresolvedError) Error() string {
	name := fmt.Sprintf("#%d", e.Index)
	if e.Label != "" {
		name = fmt.Sprintf("#%d (%s)", e.Index, e.Label)
	}
	return fmt.Sprintf("expectation %s: %s expectation was never given an expected value", name, e.Kind)
}

// IsMismatch reports whether err contains a MismatchError.
func IsMismatch(err error) bool {
	var e *MismatchError
	return errors.As(err, &e)
}

// IsUnresolved reports whether err contains an UnresolvedError.
func IsUnresolved(err error) bool {
	var e *UnresolvedError
	return errors.As(err, &e)
}

// newMismatchError renders both sides of a failed comparison.
func newMismatchError(index int, kind, label string, actual, expected any, factor int64) *MismatchError {
	e := &MismatchError{
		Index:    index,
		Kind:     kind,
		Label:    label,
		Expected: canonicalString(expected),
		Actual:   canonicalString(actual),
	}
	e.ExpectedDiagram = diagramOf(expected, factor)
	e.ActualDiagram = diagramOf(actual, factor)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(linesOf(expected)),
		B:        difflib.SplitLines(linesOf(actual)),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	if err == nil {
		e.Diff = diff
	}
	return e
}

func canonicalString(v any) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func diagramOf(v any, factor int64) string {
	switch val := v.(type) {
	case ir.Timeline:
		diagram, legend := compiler.Render(val, factor)
		if len(legend) == 0 {
			return diagram
		}
		return diagram + " " + canonicalString(legend)
	case []ir.SubscriptionLog:
		parts := make([]string, len(val))
		for i, log := range val {
			parts[i] = compiler.RenderSubscription(log, factor)
			if parts[i] == "" && log.Subscribed != ir.Infinity {
				return ""
			}
		}
		return strings.Join(parts, " , ")
	}
	return ""
}

func linesOf(v any) string {
	switch val := v.(type) {
	case ir.Timeline:
		return val.String()
	case []ir.SubscriptionLog:
		var b strings.Builder
		for _, log := range val {
			b.WriteString(log.String())
			b.WriteString("\n")
		}
		return b.String()
	}
	return canonicalString(v) + "\n"
}

package compiler

import (
	"strings"
	"unicode/utf8"

	"github.com/roach88/marbles/internal/ir"
)

const reservedChars = "-()|#^! "

// MaxRenderSlots is the widest diagram Render and RenderSubscription draw.
// Wider timelines render as "".
const MaxRenderSlots = 1024

// Render draws a timeline back into a value diagram.
//
// Single-character string values draw as themselves. Every other value is
// assigned a free lowercase letter and reported in the returned legend. An
// error payload is reported under "#". Frames are floored to the nearest
// slot, and events before frame 0 are drawn ahead of a ^ marker. A timeline
// spanning more than MaxRenderSlots slots renders as "" with an empty legend.
func Render(timeline ir.Timeline, factor int64) (string, map[string]any) {
	if factor <= 0 {
		factor = FrameTimeFactor
	}
	legend := map[string]any{}
	if len(timeline) == 0 {
		return "", legend
	}

	minSlot, maxSlot := int64(0), int64(0)
	for _, ev := range timeline {
		slot := floorDiv(ev.Frame, factor)
		minSlot = min(minSlot, slot)
		maxSlot = max(maxSlot, slot)
	}
	if !drawable(minSlot, maxSlot) {
		return "", legend
	}

	used := map[rune]bool{}
	for _, ev := range timeline {
		if r, ok := selfSymbol(ev.Notification); ok {
			used[r] = true
		}
	}

	symbols := map[string]string{}
	next := 'a'
	symbolFor := func(n ir.Notification) string {
		switch n.Kind {
		case ir.KindComplete:
			return "|"
		case ir.KindError:
			legend["#"] = n.Err
			return "#"
		}
		if r, ok := selfSymbol(n); ok {
			return string(r)
		}
		key := canonicalKey(n.Value)
		if sym, ok := symbols[key]; ok {
			return sym
		}
		for used[next] && next <= 'z' {
			next++
		}
		sym := "?"
		if next <= 'z' {
			sym = string(next)
			used[next] = true
		}
		symbols[key] = sym
		legend[sym] = n.Value
		return sym
	}

	bySlot := map[int64][]string{}
	for _, ev := range timeline {
		slot := floorDiv(ev.Frame, factor)
		bySlot[slot] = append(bySlot[slot], symbolFor(ev.Notification))
	}

	var b strings.Builder
	for s := minSlot; s <= maxSlot; s++ {
		syms := bySlot[s]
		switch {
		case s == 0 && minSlot < 0 && len(syms) == 0:
			b.WriteByte('^')
		case len(syms) == 0:
			b.WriteByte('-')
		case len(syms) == 1:
			b.WriteString(syms[0])
		default:
			b.WriteByte('(')
			b.WriteString(strings.Join(syms, ""))
			b.WriteByte(')')
		}
	}
	return b.String(), legend
}

// RenderSubscription draws a subscription log as a subscription diagram.
// Never-subscribed logs and logs wider than MaxRenderSlots render as "".
func RenderSubscription(log ir.SubscriptionLog, factor int64) string {
	if factor <= 0 {
		factor = FrameTimeFactor
	}
	if log.Subscribed == ir.Infinity {
		return ""
	}
	sub := floorDiv(log.Subscribed, factor)
	last := sub
	if log.Unsubscribed != ir.Infinity {
		last = max(last, floorDiv(log.Unsubscribed, factor))
	}
	if !drawable(min(sub, 0), last) {
		return ""
	}
	var b strings.Builder
	b.WriteString(strings.Repeat("-", int(max(sub, 0))))
	if log.Unsubscribed == ir.Infinity {
		b.WriteByte('^')
		return b.String()
	}
	unsub := floorDiv(log.Unsubscribed, factor)
	if unsub == sub {
		b.WriteString("(^!)")
		return b.String()
	}
	b.WriteByte('^')
	b.WriteString(strings.Repeat("-", int(max(unsub-sub-1, 0))))
	b.WriteByte('!')
	return b.String()
}

// drawable reports whether slots lo..hi fit in MaxRenderSlots.
func drawable(lo, hi int64) bool {
	return hi-lo < MaxRenderSlots && hi-lo >= 0
}

func selfSymbol(n ir.Notification) (rune, bool) {
	if n.Kind != ir.KindNext {
		return 0, false
	}
	s, ok := n.Value.(string)
	if !ok || utf8.RuneCountInString(s) != 1 || strings.Contains(reservedChars, s) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, true
}

func canonicalKey(v any) string {
	out, err := ir.MarshalCanonical(v)
	if err != nil {
		return "?"
	}
	return string(out)
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

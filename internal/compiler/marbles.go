package compiler

import (
	"strings"
	"unicode/utf8"

	"github.com/roach88/marbles/internal/ir"
)

// FrameTimeFactor is the default number of virtual time units per diagram
// character.
const FrameTimeFactor int64 = 10

// DefaultErrorValue is the payload of # when no error value is supplied.
const DefaultErrorValue = "error"

// Options configures value diagram compilation.
type Options struct {
	// Values maps diagram characters to emitted values. When nil, every
	// emission character emits itself as a one-character string. Characters
	// missing from a non-nil map also emit themselves.
	Values map[string]any

	// ErrorValue is the payload emitted by #. Nil means DefaultErrorValue.
	ErrorValue any

	// MaterializeNested replaces mapped values implementing ir.NestedSource
	// with their Nested timeline. Without it such values are emitted as-is.
	MaterializeNested bool

	// FrameTimeFactor overrides the time units per character. Zero means
	// the package default.
	FrameTimeFactor int64
}

func (o Options) factor() int64 {
	if o.FrameTimeFactor > 0 {
		return o.FrameTimeFactor
	}
	return FrameTimeFactor
}

func (o Options) value(c string) any {
	if o.Values == nil {
		return c
	}
	v, ok := o.Values[c]
	if !ok {
		return c
	}
	if src, ok := v.(ir.NestedSource); ok && o.MaterializeNested {
		return src.Nested()
	}
	return v
}

// token is one diagram character positioned on the frame axis.
type token struct {
	index int
	char  rune
	frame int64
}

// scan walks diagram and assigns each character its frame.
//
// Outside a group every character occupies one frame slot. Characters inside
// ( ) all share the frame of the (, and the whole group occupies one slot.
func scan(diagram string, factor int64) ([]token, error) {
	tokens := make([]token, 0, len(diagram))
	var cursor int64
	inGroup := false
	var groupFrame int64

	for i, c := range diagram {
		switch {
		case c == '(':
			if inGroup {
				return nil, newFormatError(ErrCodeUnbalancedGroup, diagram, i, c, "nested group")
			}
			inGroup = true
			groupFrame = cursor
			tokens = append(tokens, token{index: i, char: c, frame: groupFrame})
		case c == ')':
			if !inGroup {
				return nil, newFormatError(ErrCodeUnbalancedGroup, diagram, i, c, "group closed without opening")
			}
			inGroup = false
			tokens = append(tokens, token{index: i, char: c, frame: groupFrame})
			cursor += factor
		case inGroup:
			tokens = append(tokens, token{index: i, char: c, frame: groupFrame})
		default:
			tokens = append(tokens, token{index: i, char: c, frame: cursor})
			cursor += factor
		}
	}
	if inGroup {
		return nil, newFormatError(ErrCodeUnbalancedGroup, diagram, -1, 0, "group not closed")
	}
	return tokens, nil
}

// ParseValueDiagram compiles a value diagram into a timeline.
//
// Grammar: - and space are idle frames, ( ) groups simultaneous emissions,
// | completes, # errors, ^ marks the subscription origin (frame 0 of the
// output) and any other character emits a value. ! is illegal.
//
// Events are ordered by frame, then by diagram position.
func ParseValueDiagram(diagram string, opts Options) (ir.Timeline, error) {
	if i := strings.IndexRune(diagram, '!'); i >= 0 {
		return nil, newFormatError(ErrCodeUnsubscribeInValues, diagram, i, '!',
			"conventional marble diagrams cannot have the unsubscription marker \"!\"")
	}

	tokens, err := scan(diagram, opts.factor())
	if err != nil {
		return nil, err
	}

	var offset int64
	for _, tok := range tokens {
		if tok.char == '^' {
			offset = -tok.frame
			break
		}
	}

	errorValue := opts.ErrorValue
	if errorValue == nil {
		errorValue = DefaultErrorValue
	}

	timeline := ir.Timeline{}
	for _, tok := range tokens {
		var n ir.Notification
		switch tok.char {
		case '-', ' ', '(', ')', '^':
			continue
		case '|':
			n = ir.Complete()
		case '#':
			n = ir.Error(errorValue)
		default:
			n = ir.Next(opts.value(string(tok.char)))
		}
		timeline = append(timeline, ir.TimedEvent{Frame: tok.frame + offset, Notification: n})
	}

	timeline.Sort()
	return timeline, nil
}

// NoSubscription is the log expected when a source is never subscribed.
func NoSubscription() ir.SubscriptionLog {
	return ir.SubscriptionLog{Subscribed: ir.Infinity, Unsubscribed: ir.Infinity}
}

// ParseSubscriptionDiagram compiles a subscription diagram into a log.
//
// Grammar: - and space are idle frames, ( ) groups, ^ subscribes and !
// unsubscribes. Each marker may appear at most once; a missing ! leaves the
// subscription open (Infinity).
func ParseSubscriptionDiagram(diagram string) (ir.SubscriptionLog, error) {
	return parseSubscriptionDiagram(diagram, FrameTimeFactor)
}

// ParseSubscriptionDiagramWithFactor is ParseSubscriptionDiagram with a
// custom frame time factor.
func ParseSubscriptionDiagramWithFactor(diagram string, factor int64) (ir.SubscriptionLog, error) {
	if factor <= 0 {
		factor = FrameTimeFactor
	}
	return parseSubscriptionDiagram(diagram, factor)
}

func parseSubscriptionDiagram(diagram string, factor int64) (ir.SubscriptionLog, error) {
	log := NoSubscription()

	tokens, err := scan(diagram, factor)
	if err != nil {
		return log, err
	}

	unsubIndex := -1
	for _, tok := range tokens {
		switch tok.char {
		case '-', ' ', '(', ')':
		case '^':
			if log.Subscribed != ir.Infinity {
				return NoSubscription(), newFormatError(ErrCodeDuplicateMarker, diagram, tok.index, tok.char,
					"found a second subscription point \"^\" in a subscription marble diagram")
			}
			log.Subscribed = tok.frame
		case '!':
			if log.Unsubscribed != ir.Infinity {
				return NoSubscription(), newFormatError(ErrCodeDuplicateMarker, diagram, tok.index, tok.char,
					"found a second unsubscription point \"!\" in a subscription marble diagram")
			}
			log.Unsubscribed = tok.frame
			unsubIndex = tok.index
		default:
			return NoSubscription(), newFormatError(ErrCodeIllegalChar, diagram, tok.index, tok.char,
				"there can only be \"^\" and \"!\" markers in a subscription marble diagram, found %q", string(tok.char))
		}
	}
	if log.Subscribed != ir.Infinity && log.Unsubscribed != ir.Infinity && log.Unsubscribed < log.Subscribed {
		return NoSubscription(), newFormatError(ErrCodeUnsubscribeBeforeSubscribe, diagram, unsubIndex, '!',
			"unsubscription point \"!\" comes before subscription point \"^\"")
	}
	return log, nil
}

// CreateTime returns the character index of the first | in diagram, times
// the frame time factor. Every character counts, including group brackets.
func CreateTime(diagram string) (int64, error) {
	return CreateTimeWithFactor(diagram, FrameTimeFactor)
}

// CreateTimeWithFactor is CreateTime with a custom frame time factor.
func CreateTimeWithFactor(diagram string, factor int64) (int64, error) {
	if factor <= 0 {
		factor = FrameTimeFactor
	}
	if !strings.ContainsRune(diagram, '|') {
		return 0, newFormatError(ErrCodeMissingCompletion, diagram, -1, 0,
			"marble diagram for time should have a completion marker \"|\"")
	}
	i := strings.IndexRune(diagram, '|')
	return int64(utf8.RuneCountInString(diagram[:i])) * factor, nil
}

// CheckCold rejects diagrams that cannot describe a cold source: a cold
// source has no fixed subscription origin and no authored unsubscription.
func CheckCold(diagram string) error {
	if i := strings.IndexRune(diagram, '^'); i >= 0 {
		return newFormatError(ErrCodeSubscriptionInCold, diagram, i, '^',
			"cold observable cannot have subscription offset \"^\"")
	}
	if i := strings.IndexRune(diagram, '!'); i >= 0 {
		return newFormatError(ErrCodeUnsubscribeInValues, diagram, i, '!',
			"cold observable cannot have unsubscription marker \"!\"")
	}
	return nil
}

// CheckHot rejects diagrams that cannot describe a hot source.
func CheckHot(diagram string) error {
	if i := strings.IndexRune(diagram, '!'); i >= 0 {
		return newFormatError(ErrCodeUnsubscribeInValues, diagram, i, '!',
			"hot observable cannot have unsubscription marker \"!\"")
	}
	return nil
}

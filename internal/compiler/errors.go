package compiler

import (
	"errors"
	"fmt"
)

// FormatErrorCode categorizes malformed marble diagrams.
type FormatErrorCode string

const (
	// ErrCodeIllegalChar indicates a character not allowed in the diagram flavour.
	ErrCodeIllegalChar FormatErrorCode = "ILLEGAL_CHAR"

	// ErrCodeDuplicateMarker indicates a second ^ or ! in a subscription diagram.
	ErrCodeDuplicateMarker FormatErrorCode = "DUPLICATE_MARKER"

	// ErrCodeMissingCompletion indicates a time diagram without |.
	ErrCodeMissingCompletion FormatErrorCode = "MISSING_COMPLETION"

	// ErrCodeUnsubscribeInValues indicates ! inside a value diagram.
	ErrCodeUnsubscribeInValues FormatErrorCode = "UNSUBSCRIBE_IN_VALUES"

	// ErrCodeSubscriptionInCold indicates ^ inside a cold source diagram.
	ErrCodeSubscriptionInCold FormatErrorCode = "SUBSCRIPTION_IN_COLD"

	// ErrCodeUnsubscribeBeforeSubscribe indicates a ! on an earlier frame than ^.
	ErrCodeUnsubscribeBeforeSubscribe FormatErrorCode = "UNSUBSCRIBE_BEFORE_SUBSCRIBE"

	// ErrCodeUnbalancedGroup indicates a nested ( or a ) without a matching (.
	ErrCodeUnbalancedGroup FormatErrorCode = "UNBALANCED_GROUP"
)

// FormatError reports a malformed marble diagram.
//
// It is raised synchronously at parse or construction time and is always
// fatal to the test that produced it.
type FormatError struct {
	// Code identifies the error category.
	Code FormatErrorCode

	// Diagram is the offending diagram.
	Diagram string

	// Index is the byte offset of the offending character, or -1.
	Index int

	// Char is the offending character, or 0.
	Char rune

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: %s (diagram %q, index %d)", e.Code, e.Message, e.Diagram, e.Index)
	}
	return fmt.Sprintf("%s: %s (diagram %q)", e.Code, e.Message, e.Diagram)
}

// IsFormatError returns true if err is, or wraps, a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

func newFormatError(code FormatErrorCode, diagram string, index int, char rune, format string, args ...any) *FormatError {
	return &FormatError{
		Code:    code,
		Diagram: diagram,
		Index:   index,
		Char:    char,
		Message: fmt.Sprintf(format, args...),
	}
}

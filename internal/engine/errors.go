package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a misuse of the virtual clock.
//
// These indicate a harness bug rather than a failing test: scheduling into
// the past once the clock is running, or re-entering Run.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Frame is the frame the caller asked for, when relevant.
	Frame int64

	// Now is the clock's frame when the error was raised.
	Now int64
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeInvalidSchedule indicates work was scheduled before Now after Run started.
	ErrCodeInvalidSchedule RuntimeErrorCode = "INVALID_SCHEDULE"

	// ErrCodeReentrantRun indicates Run was called from inside a running action.
	ErrCodeReentrantRun RuntimeErrorCode = "REENTRANT_RUN"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s (now=%d)", e.Code, e.Message, e.Now)
}

// IsInvalidSchedule returns true if err is an INVALID_SCHEDULE runtime error.
// Uses errors.As to handle wrapped errors.
func IsInvalidSchedule(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeInvalidSchedule
	}
	return false
}

// IsReentrantRun returns true if err is a REENTRANT_RUN runtime error.
func IsReentrantRun(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeReentrantRun
	}
	return false
}

// NewInvalidScheduleError creates a RuntimeError for scheduling into the past.
func NewInvalidScheduleError(frame, now int64) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidSchedule,
		Message: fmt.Sprintf("cannot schedule at frame %d before current frame", frame),
		Frame:   frame,
		Now:     now,
	}
}

// NewReentrantRunError creates a RuntimeError for a nested Run call.
func NewReentrantRunError(now int64) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeReentrantRun,
		Message: "Run called while the clock is already running",
		Now:     now,
	}
}

package store

import "errors"

// ErrRunNotFound is returned when no run matches a lookup.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded scenario execution.
type Run struct {
	Seq            int64  `json:"seq"`
	ID             string `json:"id"`
	Scenario       string `json:"scenario"`
	Pass           bool   `json:"pass"`
	Digest         string `json:"digest"`
	Frame          int64  `json:"frame"`
	HarnessVersion string `json:"harness_version"`
	FormatVersion  string `json:"format_version"`

	// Trace and Errors are only populated by ReadRun.
	Trace  []TraceRecord `json:"trace,omitempty"`
	Errors []string      `json:"errors,omitempty"`
}

// TraceRecord is one observed expectation, stored as canonical JSON.
type TraceRecord struct {
	Source string `json:"source"`
	Kind   string `json:"kind"`
	Body   string `json:"body"`
}

package ir

// Version constants recorded alongside stored runs.
const (
	// FormatVersion is the canonical trace format version.
	FormatVersion = "1"

	// HarnessVersion is the marbles harness version.
	HarnessVersion = "0.1.0"
)

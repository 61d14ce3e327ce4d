package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a passing run with one trace record.
func createTestRun(id, scenario, digest string) Run {
	return Run{
		ID:             id,
		Scenario:       scenario,
		Pass:           true,
		Digest:         digest,
		Frame:          80,
		HarnessVersion: "0.1.0",
		FormatVersion:  "1",
		Trace: []TraceRecord{
			{Source: "a", Kind: "observable", Body: `[{"frame":80,"notification":{"kind":"C"}}]`},
		},
	}
}

package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/marbles/internal/ir"
)

// GoldenDir is where scenario traces are stored, relative to the test's
// package directory.
const GoldenDir = "testdata/golden"

// TraceJSON renders a result's trace as canonical JSON.
func TraceJSON(name string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(canonicalTrace(name, result.Trace))
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := RunScenario(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	traceJSON, err := TraceJSON(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, traceJSON)
	return nil
}

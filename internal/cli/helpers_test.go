package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and the
// returned error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

// writeScenario writes a scenario file into dir and returns its path.
func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const passingScenario = `name: cold_pass
description: a cold source replays its timeline
sources:
  - name: c
    kind: cold
    diagram: "-a-b|"
expect:
  - source: c
    diagram: "-a-b|"
subscriptions:
  - source: c
    diagrams: ["^---!"]
`

const failingScenario = `name: cold_fail
description: expects the wrong value
sources:
  - name: c
    kind: cold
    diagram: "-a|"
expect:
  - source: c
    diagram: "-b|"
`

const malformedScenario = `name: cold_origin
description: a cold source cannot carry a subscription origin
sources:
  - name: c
    kind: cold
    diagram: "-^a|"
expect:
  - source: c
    diagram: "-a|"
`

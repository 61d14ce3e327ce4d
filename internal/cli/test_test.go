package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/store"
)

// runTestsDirect calls runTests with opts on a bare command so tests can
// inject a run ID generator.
func runTestsDirect(t *testing.T, opts *TestOptions, dir string) (string, error) {
	t.Helper()

	if opts.RootOptions == nil {
		opts.RootOptions = &RootOptions{Format: "text"}
	}
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetContext(context.Background())
	err := runTests(opts, dir, cmd)
	return out.String(), err
}

func TestTest_AllPass(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "cold_pass", passingScenario)

	out, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ cold_pass")
	assert.Contains(t, out, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTest_Failure(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "cold_pass", passingScenario)
	writeScenario(t, dir, "cold_fail", failingScenario)

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ cold_fail")
	assert.Contains(t, out, "observable mismatch")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTest_MalformedScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "cold_origin", malformedScenario)

	out, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "execution failed")
	assert.Contains(t, out, "SUBSCRIPTION_IN_COLD")
}

func TestTest_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "cold_pass", passingScenario)
	writeScenario(t, dir, "cold_fail", failingScenario)

	out, err := execute(t, "test", dir, "--filter", "*_pass", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Total)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "cold_pass", resp.Data.Scenarios[0].Name)
	assert.Len(t, resp.Data.Scenarios[0].Digest, 64)
}

func TestTest_NoScenarios(t *testing.T) {
	out, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTest_MissingDirectory(t *testing.T) {
	_, err := execute(t, "test", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_GoldenUpdateThenCompare(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "cold_pass", passingScenario)

	out, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ cold_pass (golden updated)")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "cold_pass.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), `"scenario":"cold_pass"`)

	_, err = execute(t, "test", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "cold_pass.golden"), []byte(`{"scenario":"cold_pass","trace":[]}`), 0644))
	out, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTest_RecordsRuns(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "cold_pass", passingScenario)
	writeScenario(t, dir, "cold_fail", failingScenario)
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	opts := &TestOptions{
		RootOptions: &RootOptions{Format: "json"},
		Database:    dbPath,
		RunIDs:      engine.NewFixedGenerator("run-1", "run-2"),
	}
	out, err := runTestsDirect(t, opts, dir)
	require.Error(t, err)

	var resp struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Scenarios, 2)
	ids := map[string]string{}
	for _, s := range resp.Data.Scenarios {
		ids[s.Name] = s.RunID
	}

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, runs, 2)

	failed, err := st.ReadRun(context.Background(), ids["cold_fail"])
	require.NoError(t, err)
	assert.False(t, failed.Pass)
	assert.Equal(t, int64(20), failed.Frame)
	require.Len(t, failed.Errors, 1)
	assert.Contains(t, failed.Errors[0], "observable mismatch")
	require.Len(t, failed.Trace, 1)
	assert.Equal(t, "c", failed.Trace[0].Source)
	assert.Equal(t, `[{"frame":10,"notification":{"kind":"N","value":"a"}},{"frame":20,"notification":{"kind":"C"}}]`, failed.Trace[0].Body)

	passed, err := st.ReadRun(context.Background(), ids["cold_pass"])
	require.NoError(t, err)
	assert.True(t, passed.Pass)
	require.Len(t, passed.Trace, 2)
	assert.Equal(t, "subscriptions", passed.Trace[1].Kind)
	assert.Equal(t, `[{"subscribed":0,"unsubscribed":40}]`, passed.Trace[1].Body)
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a", passingScenario)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte(passingScenario), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(dir, "[")
	require.Error(t, err)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "hot.golden"), goldenFilePath(filepath.Join("scenarios", "hot.yaml")))
}

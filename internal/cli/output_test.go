package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(TimeResult{Diagram: "--|", Frame: 20})
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"diagram": "--|", "frame": float64(20)}, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeFormat, "malformed marble diagram", map[string]any{"index": 3})
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeFormat, resp.Error.Code)
	assert.Equal(t, "malformed marble diagram", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success(TimeResult{Frame: 50})
	require.NoError(t, err)
	assert.Equal(t, "50\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			err := formatter.Error(ErrCodeNotFound, "no recorded run", map[string]string{"scenario": "x"})
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "Error [E_NOT_FOUND]: no recorded run")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details:")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			errOut := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: errOut,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Validating %s", "cold.yaml")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Contains(t, errOut.String(), "Validating cold.yaml")
			} else {
				assert.Empty(t, errOut.String())
			}
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"exit error", NewExitError(ExitCommandError, "bad path"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "failed", errors.New("inner"))), ExitFailure},
		{"plain error", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	inner := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "failed to open database", inner)

	assert.Equal(t, "failed to open database: no such file", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "bad path", NewExitError(ExitCommandError, "bad path").Error())
}

func compileResponseSchema(t *testing.T) *jsonschema.Schema {
	t.Helper()

	path, err := filepath.Abs(filepath.Join("testdata", "response.schema.json"))
	require.NoError(t, err)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	compiler := jsonschema.NewCompiler()
	require.NoError(t, compiler.AddResource(path, f))
	schema, err := compiler.Compile(path)
	require.NoError(t, err)
	return schema
}

// Every command writes the same envelope in json format, whether it
// succeeds or fails.
func TestJSONResponse_Contract(t *testing.T) {
	schema := compileResponseSchema(t)

	dir := t.TempDir()
	writeScenario(t, dir, "cold_pass", passingScenario)
	failDir := t.TempDir()
	writeScenario(t, failDir, "cold_fail", failingScenario)
	badDir := t.TempDir()
	writeScenario(t, badDir, "cold_origin", malformedScenario)

	tests := []struct {
		name       string
		args       []string
		wantStatus string
	}{
		{"parse", []string{"parse", "--values", "a=1", "--format", "json", "--", "-a-(bc)-|"}, "ok"},
		{"parse subscription", []string{"parse", "^--!", "--subscription", "--format", "json"}, "ok"},
		{"parse malformed", []string{"parse", "--format", "json", "--", "-a!"}, "error"},
		{"time", []string{"time", "--format", "json", "--", "---|"}, "ok"},
		{"time without completion", []string{"time", "--format", "json", "--", "---"}, "error"},
		{"test passing", []string{"test", dir, "--format", "json"}, "ok"},
		{"test failing", []string{"test", failDir, "--format", "json"}, "error"},
		{"validate", []string{"validate", dir, "--format", "json"}, "ok"},
		{"validate malformed", []string{"validate", badDir, "--format", "json"}, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := execute(t, tt.args...)

			var payload any
			require.NoError(t, json.Unmarshal([]byte(out), &payload), "output: %s", out)
			require.NoError(t, schema.Validate(payload))
			assert.Equal(t, tt.wantStatus, payload.(map[string]any)["status"])
		})
	}
}

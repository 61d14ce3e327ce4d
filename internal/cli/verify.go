package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/marbles/internal/harness"
	"github.com/roach88/marbles/internal/store"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database string
}

// VerifyResult compares a fresh run with the last recorded one.
type VerifyResult struct {
	Scenario       string `json:"scenario"`
	RecordedRunID  string `json:"recorded_run_id"`
	RecordedDigest string `json:"recorded_digest"`
	Digest         string `json:"digest"`
	Match          bool   `json:"match"`
}

// String renders the result for text output.
func (r VerifyResult) String() string {
	if r.Match {
		return fmt.Sprintf("✓ %s: trace matches run %s (%s)", r.Scenario, r.RecordedRunID, r.Digest)
	}
	return fmt.Sprintf("✗ %s: digest %s differs from run %s (%s)", r.Scenario, r.Digest, r.RecordedRunID, r.RecordedDigest)
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <scenario-file>",
		Short: "Re-run a scenario and compare with its last recorded run",
		Long: `Re-run a scenario and compare the digest of its canonical trace with the
digest of the last run recorded for it. A difference means the harness or
the sources under test stopped being deterministic.

Exit codes:
  0 - Digests match
  1 - Digests differ
  2 - Command error (no recorded run, invalid paths, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runVerify(opts *VerifyOptions, scenarioFile string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	st, err := openExistingStore(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	recorded, err := st.LastRun(cmd.Context(), scenario.Name)
	if errors.Is(err, store.ErrRunNotFound) {
		_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
		return WrapExitError(ExitCommandError, "nothing to verify against", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read last run", err)
	}

	runner := harness.NewRunner(harness.WithRunnerLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	result, err := runner.Run(scenario)
	if err != nil {
		return WrapExitError(ExitFailure, "scenario execution failed", err)
	}
	digest, err := harness.Digest(scenario.Name, result)
	if err != nil {
		return WrapExitError(ExitFailure, "digest failed", err)
	}

	vr := VerifyResult{
		Scenario:       scenario.Name,
		RecordedRunID:  recorded.ID,
		RecordedDigest: recorded.Digest,
		Digest:         digest,
		Match:          digest == recorded.Digest,
	}
	if vr.Match {
		return formatter.Success(vr)
	}

	if opts.Format == "json" {
		_ = formatter.encode(CLIResponse{
			Status: "error",
			Data:   vr,
			Error:  &CLIError{Code: ErrCodeDrift, Message: "trace digest differs from recorded run"},
		})
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), vr)
	}
	return NewExitError(ExitFailure, "trace digest differs from recorded run")
}

// openExistingStore opens a database that must already exist.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

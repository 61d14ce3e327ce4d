package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/marbles/internal/harness"
)

// FileValidation is the outcome of validating one scenario file.
type FileValidation struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// String renders the result for text output.
func (r ValidationResult) String() string {
	return fmt.Sprintf("✓ %d scenario file(s) valid", len(r.Files))
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir>",
		Short: "Validate scenarios without running them",
		Long: `Validate YAML scenario files without running them.

Each file is checked against the scenario schema, decoded strictly, and
every marble diagram in it is compiled.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("scenarios directory not found: %s", scenariosDir), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	files, err := findScenarioFiles(scenariosDir, "")
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		formatter.VerboseLog("Validating %s", file)
		fv := validateFile(file)
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if result.Valid {
		return formatter.Success(result)
	}

	if opts.Format == "json" {
		_ = formatter.encode(CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: ErrCodeSchema, Message: "one or more scenario files are invalid"},
		})
	} else {
		w := cmd.OutOrStdout()
		for _, fv := range result.Files {
			if fv.Valid {
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", filepath.Base(fv.File))
			for _, e := range fv.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}
	return NewExitError(ExitFailure, "validation failed")
}

// validateFile runs the schema, strict decoding and diagram compilation in
// that order, stopping at the first stage that fails.
func validateFile(file string) FileValidation {
	fv := FileValidation{File: file, Valid: true}
	fail := func(err error) FileValidation {
		fv.Valid = false
		fv.Errors = append(fv.Errors, err.Error())
		return fv
	}

	if err := harness.ValidateScenarioFile(file); err != nil {
		return fail(err)
	}
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return fail(err)
	}
	if err := scenario.Compile(); err != nil {
		return fail(err)
	}
	return fv
}

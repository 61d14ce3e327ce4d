package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/marbles/internal/compiler"
)

// TimeOptions holds flags for the time command.
type TimeOptions struct {
	*RootOptions
	Factor int64
}

// TimeResult is the time command's payload.
type TimeResult struct {
	Diagram string `json:"diagram"`
	Frame   int64  `json:"frame"`
}

// String renders the frame alone for text output.
func (r TimeResult) String() string {
	return strconv.FormatInt(r.Frame, 10)
}

// NewTimeCommand creates the time command.
func NewTimeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TimeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "time <diagram>",
		Short: "Print the frame of the | marker",
		Long: `Print the virtual frame at which the diagram's | marker falls.

Example:
  marbles time "-----|"     # 50`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
			frame, err := compiler.CreateTimeWithFactor(args[0], opts.Factor)
			if err != nil {
				return outputFormatError(formatter, err)
			}
			return formatter.Success(TimeResult{Diagram: args[0], Frame: frame})
		},
	}

	cmd.Flags().Int64Var(&opts.Factor, "factor", compiler.FrameTimeFactor, "time units per diagram character")

	return cmd
}

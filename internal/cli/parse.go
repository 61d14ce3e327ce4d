package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/marbles/internal/compiler"
	"github.com/roach88/marbles/internal/ir"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Values       string // "a=1,b=x"
	Error        string // payload of #
	Subscription bool   // parse as a subscription diagram
	Factor       int64
}

// ParseResult is the parse command's payload.
type ParseResult struct {
	Diagram      string              `json:"diagram"`
	Events       ir.Timeline         `json:"events,omitempty"`
	Subscription *ir.SubscriptionLog `json:"subscription,omitempty"`
}

// String renders the result for text output.
func (r ParseResult) String() string {
	if r.Subscription != nil {
		return r.Subscription.String()
	}
	if len(r.Events) == 0 {
		return "(no events)"
	}
	return strings.TrimSuffix(r.Events.String(), "\n")
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <diagram>",
		Short: "Compile a marble diagram",
		Long: `Compile a value diagram into its timed events, or a subscription diagram
into its subscription log.

Values map emission characters to YAML scalars, so "a=1" emits the
integer 1 and "a=x" the string "x".

Examples:
  marbles parse "--a--b--|"
  marbles parse "-a-(bc)-|" --values a=1,b=true,c=hello
  marbles parse "^---!" --subscription
  marbles parse "--a--#" --error boom --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Values, "values", "", "comma-separated char=value pairs")
	cmd.Flags().StringVar(&opts.Error, "error", "", "error value emitted by #")
	cmd.Flags().BoolVar(&opts.Subscription, "subscription", false, "parse a subscription diagram")
	cmd.Flags().Int64Var(&opts.Factor, "factor", compiler.FrameTimeFactor, "time units per diagram character")

	return cmd
}

func runParse(opts *ParseOptions, diagram string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.Subscription {
		log, err := compiler.ParseSubscriptionDiagramWithFactor(diagram, opts.Factor)
		if err != nil {
			return outputFormatError(formatter, err)
		}
		return formatter.Success(ParseResult{Diagram: diagram, Subscription: &log})
	}

	values, err := parseValues(opts.Values)
	if err != nil {
		_ = formatter.Error(ErrCodeValues, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --values", err)
	}

	var errorValue any
	if opts.Error != "" {
		errorValue = opts.Error
	}
	events, err := compiler.ParseValueDiagram(diagram, compiler.Options{
		Values:          values,
		ErrorValue:      errorValue,
		FrameTimeFactor: opts.Factor,
	})
	if err != nil {
		return outputFormatError(formatter, err)
	}

	formatter.VerboseLog("compiled %d event(s) from %q", len(events), diagram)
	return formatter.Success(ParseResult{Diagram: diagram, Events: events})
}

// parseValues turns "a=1,b=x" into a value map. Each value is decoded as a
// YAML scalar. Empty pairs yield nil, so every character emits itself.
func parseValues(pairs string) (map[string]any, error) {
	if strings.TrimSpace(pairs) == "" {
		return nil, nil
	}
	values := map[string]any{}
	for _, pair := range strings.Split(pairs, ",") {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || len([]rune(key)) != 1 {
			return nil, fmt.Errorf("invalid pair %q: want a single character, '=' and a value", pair)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", key, err)
		}
		values[key] = v
	}
	return values, nil
}

// outputFormatError reports a diagram error and maps it to ExitFailure.
func outputFormatError(formatter *OutputFormatter, err error) error {
	var details any
	var fe *compiler.FormatError
	if errors.As(err, &fe) {
		details = map[string]any{"code": string(fe.Code), "index": fe.Index}
	}
	_ = formatter.Error(ErrCodeFormat, err.Error(), details)
	return WrapExitError(ExitFailure, "malformed marble diagram", err)
}

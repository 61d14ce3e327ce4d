package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/marbles/internal/ir"
	"github.com/roach88/marbles/internal/stream"
)

// Runner executes scenarios, each on a fresh TestScheduler.
type Runner struct {
	logger *slog.Logger
	opts   []Option
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger for the runner and every scheduler it
// creates.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithSchedulerOptions passes opts to every scheduler the runner creates.
func WithSchedulerOptions(opts ...Option) RunnerOption {
	return func(r *Runner) {
		r.opts = append(r.opts, opts...)
	}
}

// NewRunner creates a runner. Logs are discarded unless a logger is given.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScenario runs a scenario with default options.
func RunScenario(scenario *Scenario) (*Result, error) {
	return NewRunner().Run(scenario)
}

// Run executes a scenario and returns the result.
//
// Malformed diagrams are returned as errors. Mismatching and unresolved
// expectations are reported in the result, which still carries the full
// trace.
func (r *Runner) Run(scenario *Scenario) (*Result, error) {
	opts := append([]Option{WithLogger(r.logger)}, r.opts...)
	s := New(opts...)

	sources := make(map[string]stream.Source, len(scenario.Sources))
	for _, def := range scenario.Sources {
		src, err := buildSource(s, def)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", def.Name, err)
		}
		sources[def.Name] = src
	}

	result := NewResult()
	var observed []*ObservableRecorder
	for i, exp := range scenario.Expect {
		var sub []string
		if exp.Subscription != "" {
			sub = append(sub, exp.Subscription)
		}
		rec := s.ExpectObservable(sources[exp.Source], sub...).Named(exp.Source)
		if err := rec.ToBe(exp.Diagram, exp.Values, errorValue(exp.Error)); err != nil {
			return nil, fmt.Errorf("expect[%d]: %w", i, err)
		}
		observed = append(observed, rec)
	}

	var subscribed []*SubscriptionRecorder
	for i, exp := range scenario.Subscriptions {
		logs, ok := sources[exp.Source].(stream.SubscriptionSource)
		if !ok {
			return nil, fmt.Errorf("subscriptions[%d]: source %q does not record subscriptions", i, exp.Source)
		}
		rec := s.ExpectSubscriptions(logs).Named(exp.Source)
		if err := rec.ToBe(exp.Diagrams...); err != nil {
			return nil, fmt.Errorf("subscriptions[%d]: %w", i, err)
		}
		subscribed = append(subscribed, rec)
	}

	if err := s.Flush(); err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				result.AddError(e.Error())
			}
		} else {
			result.AddError(err.Error())
		}
	}
	result.Frame = s.Clock().Now()

	for i, rec := range observed {
		result.Trace = append(result.Trace, TraceEntry{
			Source: scenario.Expect[i].Source,
			Kind:   KindObservable,
			Events: rec.Actual(),
		})
	}
	for i, rec := range subscribed {
		result.Trace = append(result.Trace, TraceEntry{
			Source:        scenario.Subscriptions[i].Source,
			Kind:          KindSubscriptions,
			Subscriptions: rec.Actual(),
		})
	}

	r.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"frame", result.Frame,
	)
	return result, nil
}

func buildSource(s *TestScheduler, def SourceDef) (stream.Source, error) {
	switch def.Kind {
	case SourceCold:
		return s.Cold(def.Diagram, def.Values, errorValue(def.Error))
	case SourceHot:
		return s.Hot(def.Diagram, def.Values, errorValue(def.Error))
	default:
		return nil, fmt.Errorf("unknown source kind %q", def.Kind)
	}
}

// errorValue maps an empty scenario error field to the compiler default.
func errorValue(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Digest hashes the canonical trace of a result. Identical scenarios run
// on identical code produce identical digests.
func Digest(name string, result *Result) (string, error) {
	return ir.Digest(canonicalTrace(name, result.Trace))
}

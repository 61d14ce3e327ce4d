package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/marbles/internal/compiler"
	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/ir"
	"github.com/roach88/marbles/internal/stream"
)

// ErrFlushed is returned when a TestScheduler is used after Flush.
var ErrFlushed = errors.New("scheduler already flushed")

// TestScheduler composes a virtual clock, the marble compiler, timed sources
// and an expectation ledger behind one surface.
//
// A test creates sources and registers expectations, then calls Flush
// exactly once. Nothing runs until Flush.
type TestScheduler struct {
	clock      *engine.VirtualClock
	ledger     *Ledger
	hots       []*stream.Hot
	comparator Comparator
	logger     *slog.Logger
	factor     int64
	maxFrame   int64
	flushed    bool
}

// Option configures a TestScheduler.
type Option func(*TestScheduler)

// WithComparator replaces the deep-equality comparator.
func WithComparator(c Comparator) Option {
	return func(s *TestScheduler) {
		s.comparator = c
	}
}

// WithLogger sets the logger for scheduler and clock debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *TestScheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFrameTimeFactor sets the virtual time units per diagram character.
func WithFrameTimeFactor(factor int64) Option {
	return func(s *TestScheduler) {
		if factor > 0 {
			s.factor = factor
		}
	}
}

// WithMaxFrame stops the clock at frame; later actions never run.
func WithMaxFrame(frame int64) Option {
	return func(s *TestScheduler) {
		s.maxFrame = frame
	}
}

// New creates a TestScheduler at frame 0.
func New(opts ...Option) *TestScheduler {
	s := &TestScheduler{
		comparator: DefaultComparator,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		factor:     compiler.FrameTimeFactor,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.clock = engine.NewVirtualClock(
		engine.WithMaxFrame(s.maxFrame),
		engine.WithLogger(s.logger),
	)
	s.ledger = NewLedger(s.comparator, s.factor)
	return s
}

// Clock exposes the underlying virtual clock, for operators under test that
// need to schedule work.
func (s *TestScheduler) Clock() *engine.VirtualClock {
	return s.clock
}

// FrameTimeFactor returns the time units per diagram character.
func (s *TestScheduler) FrameTimeFactor() int64 {
	return s.factor
}

// CreateTime returns the frame of the | in diagram.
func (s *TestScheduler) CreateTime(diagram string) (int64, error) {
	return compiler.CreateTimeWithFactor(diagram, s.factor)
}

// Cold compiles diagram into a cold source. Values map emission characters to
// values; errorValue is the payload of #. Either may be nil.
func (s *TestScheduler) Cold(diagram string, values map[string]any, errorValue any) (*stream.Cold, error) {
	if s.flushed {
		return nil, ErrFlushed
	}
	if err := compiler.CheckCold(diagram); err != nil {
		return nil, err
	}
	timeline, err := s.parse(diagram, values, errorValue)
	if err != nil {
		return nil, err
	}
	return stream.NewCold(s.clock, timeline)
}

// Hot compiles diagram into a hot source. Its timeline is scheduled on
// Flush, after every subscription registered before Flush.
func (s *TestScheduler) Hot(diagram string, values map[string]any, errorValue any) (*stream.Hot, error) {
	if s.flushed {
		return nil, ErrFlushed
	}
	if err := compiler.CheckHot(diagram); err != nil {
		return nil, err
	}
	timeline, err := s.parse(diagram, values, errorValue)
	if err != nil {
		return nil, err
	}
	hot := stream.NewHot(s.clock, timeline)
	s.hots = append(s.hots, hot)
	return hot, nil
}

func (s *TestScheduler) parse(diagram string, values map[string]any, errorValue any) (ir.Timeline, error) {
	return compiler.ParseValueDiagram(diagram, compiler.Options{
		Values:          values,
		ErrorValue:      errorValue,
		FrameTimeFactor: s.factor,
	})
}

// ExpectObservable subscribes to src when the clock runs and records every
// notification it delivers.
//
// The optional subscription diagram moves the subscription to its ^ frame
// and forces an unsubscription at its ! frame. A malformed diagram is
// reported by ToBe and again by Flush.
func (s *TestScheduler) ExpectObservable(src stream.Source, subscription ...string) *ObservableRecorder {
	c := newCapture(s.clock, 0)
	e := s.ledger.add(KindObservable, func() any { return c.timeline() })
	rec := &ObservableRecorder{entry: e, capture: c, factor: s.factor}
	if s.flushed {
		e.err = ErrFlushed
		return rec
	}

	log := compiler.NoSubscription()
	if len(subscription) > 0 && subscription[0] != "" {
		parsed, err := compiler.ParseSubscriptionDiagramWithFactor(subscription[0], s.factor)
		if err != nil {
			e.err = err
			return rec
		}
		log = parsed
	}

	subscribeAt := s.clock.Now()
	if log.Subscribed != ir.Infinity {
		subscribeAt = log.Subscribed
	}

	var sub stream.Subscription
	if _, err := s.clock.ScheduleAt(func() { sub = src.Subscribe(c.observer()) }, subscribeAt); err != nil {
		e.err = err
		return rec
	}
	if log.Unsubscribed != ir.Infinity {
		_, err := s.clock.ScheduleAt(func() {
			if sub != nil {
				sub.Unsubscribe()
			}
		}, log.Unsubscribed)
		if err != nil {
			e.err = err
		}
	}
	return rec
}

// ExpectTimeline registers an expectation against a timeline that was
// captured elsewhere. The slice is read when the ledger resolves.
func (s *TestScheduler) ExpectTimeline(actual *ir.Timeline) *ObservableRecorder {
	e := s.ledger.add(KindObservable, func() any {
		if actual == nil {
			return ir.Timeline{}
		}
		return *actual
	})
	return &ObservableRecorder{entry: e, factor: s.factor}
}

// ExpectSubscriptions registers an expectation on the subscription logs of
// src. The logs are read when the ledger resolves.
func (s *TestScheduler) ExpectSubscriptions(src stream.SubscriptionSource) *SubscriptionRecorder {
	rec := &SubscriptionRecorder{source: src, factor: s.factor}
	rec.entry = s.ledger.add(KindSubscriptions, func() any { return rec.Actual() })
	return rec
}

// Flush starts every hot source, runs the clock until its queue is empty and
// resolves all expectations. It may be called once.
func (s *TestScheduler) Flush() error {
	if s.flushed {
		return ErrFlushed
	}
	s.flushed = true

	s.logger.Debug("flushing",
		"hot_sources", len(s.hots),
		"expectations", s.ledger.Len(),
	)

	for i, hot := range s.hots {
		if err := hot.Start(); err != nil {
			return fmt.Errorf("starting hot source %d: %w", i, err)
		}
	}
	if err := s.clock.Run(); err != nil {
		return fmt.Errorf("running clock: %w", err)
	}

	err := s.ledger.Resolve()
	s.logger.Debug("flushed", "frame", s.clock.Now(), "failed", err != nil)
	return err
}

// Run creates a TestScheduler, hands it to body and flushes it, reporting
// any failure on t.
func Run(t testing.TB, body func(s *TestScheduler), opts ...Option) {
	t.Helper()
	s := New(opts...)
	body(s)
	if err := s.Flush(); err != nil {
		t.Error(err)
	}
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *TestScheduler) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the TestScheduler carried by ctx, if any.
func FromContext(ctx context.Context) (*TestScheduler, bool) {
	s, ok := ctx.Value(contextKey{}).(*TestScheduler)
	return s, ok
}

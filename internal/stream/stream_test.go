package stream_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/marbles/internal/compiler"
	"github.com/roach88/marbles/internal/engine"
	"github.com/roach88/marbles/internal/ir"
	"github.com/roach88/marbles/internal/stream"
	"github.com/roach88/marbles/internal/testutil"
)

func mustParse(t *testing.T, diagram string) ir.Timeline {
	t.Helper()
	tl, err := compiler.ParseValueDiagram(diagram, compiler.Options{})
	require.NoError(t, err)
	return tl
}

func subscribeAt(t *testing.T, clock *engine.VirtualClock, src stream.Source, frame int64) *testutil.Recorder {
	t.Helper()
	rec := testutil.NewRecorder(clock)
	_, err := clock.ScheduleAt(func() { src.Subscribe(rec.Observer()) }, frame)
	require.NoError(t, err)
	return rec
}

func ev(frame int64, n ir.Notification) ir.TimedEvent {
	return ir.TimedEvent{Frame: frame, Notification: n}
}

func TestCold_ReplaysPerSubscriber(t *testing.T) {
	clock := engine.NewVirtualClock()
	cold, err := stream.NewCold(clock, mustParse(t, "--a--b--|"))
	require.NoError(t, err)

	first := subscribeAt(t, clock, cold, 0)
	second := subscribeAt(t, clock, cold, 30)
	require.NoError(t, clock.Run())

	assert.Equal(t, ir.Timeline{
		ev(20, ir.Next("a")), ev(50, ir.Next("b")), ev(80, ir.Complete()),
	}, first.Events)
	assert.Equal(t, ir.Timeline{
		ev(50, ir.Next("a")), ev(80, ir.Next("b")), ev(110, ir.Complete()),
	}, second.Events)
	assert.Equal(t, []ir.SubscriptionLog{
		{Subscribed: 0, Unsubscribed: 80},
		{Subscribed: 30, Unsubscribed: 110},
	}, cold.Subscriptions())
}

func TestHot_LateSubscriberMissesEarlierEvents(t *testing.T) {
	clock := engine.NewVirtualClock()
	hot := stream.NewHot(clock, mustParse(t, "--a--b--|"))
	require.NoError(t, hot.Start())

	late := subscribeAt(t, clock, hot, 30)
	require.NoError(t, clock.Run())

	assert.Equal(t, ir.Timeline{
		ev(50, ir.Next("b")), ev(80, ir.Complete()),
	}, late.Events)
	assert.Equal(t, []ir.SubscriptionLog{{Subscribed: 30, Unsubscribed: 80}}, hot.Subscriptions())
}

func TestHot_SameDiagramDiffersFromCold(t *testing.T) {
	diagram := "--a--b--|"

	clock := engine.NewVirtualClock()
	hot := stream.NewHot(clock, mustParse(t, diagram))
	require.NoError(t, hot.Start())
	hotRec := subscribeAt(t, clock, hot, 30)
	require.NoError(t, clock.Run())

	clock = engine.NewVirtualClock()
	cold, err := stream.NewCold(clock, mustParse(t, diagram))
	require.NoError(t, err)
	coldRec := subscribeAt(t, clock, cold, 30)
	require.NoError(t, clock.Run())

	assert.Len(t, hotRec.Events, 2)
	assert.Len(t, coldRec.Events, 3)
	assert.Equal(t, int64(50), coldRec.Events[0].Frame)
}

func TestHot_NegativeFramesNeverDelivered(t *testing.T) {
	clock := engine.NewVirtualClock()
	hot := stream.NewHot(clock, mustParse(t, "a-^-b-|"))
	require.NoError(t, hot.Start())

	rec := subscribeAt(t, clock, hot, 0)
	require.NoError(t, clock.Run())

	assert.Equal(t, ir.Timeline{
		ev(20, ir.Next("b")), ev(40, ir.Complete()),
	}, rec.Events)
}

func TestHot_StartIsIdempotent(t *testing.T) {
	clock := engine.NewVirtualClock()
	hot := stream.NewHot(clock, mustParse(t, "-a|"))
	require.NoError(t, hot.Start())
	require.NoError(t, hot.Start())
	assert.True(t, hot.Started())

	rec := subscribeAt(t, clock, hot, 0)
	require.NoError(t, clock.Run())
	assert.Len(t, rec.Events, 2)
}

func TestHot_StartAfterClockAdvancedFails(t *testing.T) {
	clock := engine.NewVirtualClock()
	_, err := clock.ScheduleAt(func() {}, 50)
	require.NoError(t, err)
	require.NoError(t, clock.Run())

	hot := stream.NewHot(clock, mustParse(t, "-a|"))
	err = hot.Start()
	require.Error(t, err)
	assert.True(t, engine.IsInvalidSchedule(err))
}

func TestSubscription_UnsubscribeIsIdempotent(t *testing.T) {
	clock := engine.NewVirtualClock()
	cold, err := stream.NewCold(clock, mustParse(t, "--a--b--|"))
	require.NoError(t, err)

	rec := testutil.NewRecorder(clock)
	var sub stream.Subscription
	_, err = clock.ScheduleAt(func() { sub = cold.Subscribe(rec.Observer()) }, 0)
	require.NoError(t, err)
	_, err = clock.ScheduleAt(func() { sub.Unsubscribe() }, 30)
	require.NoError(t, err)
	_, err = clock.ScheduleAt(func() { sub.Unsubscribe() }, 40)
	require.NoError(t, err)
	require.NoError(t, clock.Run())

	assert.True(t, sub.Closed())
	assert.Equal(t, ir.Timeline{ev(20, ir.Next("a"))}, rec.Events)
	assert.Equal(t, []ir.SubscriptionLog{{Subscribed: 0, Unsubscribed: 30}}, cold.Subscriptions())
	assert.Equal(t, 0, clock.Pending())
}

func TestCold_ErrorClosesSubscription(t *testing.T) {
	clock := engine.NewVirtualClock()
	boom := errors.New("boom")
	cold, err := stream.NewCold(clock, ir.Timeline{
		ev(10, ir.Next("a")),
		ev(20, ir.Error(boom)),
		ev(30, ir.Next("late")),
	})
	require.NoError(t, err)

	rec := subscribeAt(t, clock, cold, 0)
	require.NoError(t, clock.Run())

	assert.Equal(t, ir.Timeline{ev(10, ir.Next("a")), ev(20, ir.Error(boom))}, rec.Events)
	assert.Equal(t, []ir.SubscriptionLog{{Subscribed: 0, Unsubscribed: 20}}, cold.Subscriptions())
}

func TestCold_OpenSubscriptionStaysOpen(t *testing.T) {
	clock := engine.NewVirtualClock()
	cold, err := stream.NewCold(clock, mustParse(t, "--a--"))
	require.NoError(t, err)

	subscribeAt(t, clock, cold, 10)
	require.NoError(t, clock.Run())

	logs := cold.Subscriptions()
	require.Len(t, logs, 1)
	assert.True(t, logs[0].Open())
	assert.Equal(t, int64(10), logs[0].Subscribed)
}

func TestNewCold_RejectsNegativeFrames(t *testing.T) {
	_, err := stream.NewCold(engine.NewVirtualClock(), ir.Timeline{ev(-10, ir.Next("a"))})
	require.Error(t, err)
}

func TestCold_NestedExposesTimeline(t *testing.T) {
	tl := mustParse(t, "-x|")
	cold, err := stream.NewCold(engine.NewVirtualClock(), tl)
	require.NoError(t, err)

	var src ir.NestedSource = cold
	assert.Equal(t, ir.Nested{Events: tl}, src.Nested())
}

func TestFromNotification(t *testing.T) {
	tests := []struct {
		name string
		n    ir.Notification
		want ir.Timeline
	}{
		{"next then complete", ir.Next(1), ir.Timeline{ev(0, ir.Next(1)), ev(0, ir.Complete())}},
		{"error alone", ir.Error("bad"), ir.Timeline{ev(0, ir.Error("bad"))}},
		{"complete alone", ir.Complete(), ir.Timeline{ev(0, ir.Complete())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := engine.NewVirtualClock()
			rec := testutil.NewRecorder(clock)
			sub := stream.FromNotification(tt.n).Subscribe(rec.Observer())
			assert.Equal(t, tt.want, rec.Events)
			assert.True(t, sub.Closed())
		})
	}
}

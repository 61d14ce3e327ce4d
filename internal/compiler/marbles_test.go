package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/marbles/internal/ir"
)

func TestParseValueDiagram_Basic(t *testing.T) {
	got, err := ParseValueDiagram("--1-2---3-|", Options{})
	require.NoError(t, err)

	assert.Equal(t, ir.Timeline{
		{Frame: 20, Notification: ir.Next("1")},
		{Frame: 40, Notification: ir.Next("2")},
		{Frame: 80, Notification: ir.Next("3")},
		{Frame: 100, Notification: ir.Complete()},
	}, got)
}

func TestParseValueDiagram_Group(t *testing.T) {
	got, err := ParseValueDiagram("(ab)-c", Options{})
	require.NoError(t, err)

	assert.Equal(t, ir.Timeline{
		{Frame: 0, Notification: ir.Next("a")},
		{Frame: 0, Notification: ir.Next("b")},
		{Frame: 20, Notification: ir.Next("c")},
	}, got)
}

func TestParseValueDiagram_GroupWithCompletion(t *testing.T) {
	got, err := ParseValueDiagram("-(a|)", Options{})
	require.NoError(t, err)

	assert.Equal(t, ir.Timeline{
		{Frame: 10, Notification: ir.Next("a")},
		{Frame: 10, Notification: ir.Complete()},
	}, got)
}

func TestParseValueDiagram_ValuesMapping(t *testing.T) {
	got, err := ParseValueDiagram("-a-b|", Options{Values: map[string]any{"a": 1, "b": map[string]any{"k": true}}})
	require.NoError(t, err)

	assert.Equal(t, ir.Timeline{
		{Frame: 10, Notification: ir.Next(1)},
		{Frame: 30, Notification: ir.Next(map[string]any{"k": true})},
		{Frame: 40, Notification: ir.Complete()},
	}, got)
}

func TestParseValueDiagram_MissingMappingFallsBackToIdentity(t *testing.T) {
	got, err := ParseValueDiagram("ab", Options{Values: map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, ir.Next("b"), got[1].Notification)
}

func TestParseValueDiagram_Error(t *testing.T) {
	got, err := ParseValueDiagram("--#", Options{})
	require.NoError(t, err)
	assert.Equal(t, ir.Timeline{{Frame: 20, Notification: ir.Error("error")}}, got)

	boom := errors.New("boom")
	got, err = ParseValueDiagram("#", Options{ErrorValue: boom})
	require.NoError(t, err)
	assert.Equal(t, ir.Timeline{{Frame: 0, Notification: ir.Error(boom)}}, got)
}

func TestParseValueDiagram_SubscriptionOffset(t *testing.T) {
	got, err := ParseValueDiagram("a-^-b-|", Options{})
	require.NoError(t, err)

	assert.Equal(t, ir.Timeline{
		{Frame: -20, Notification: ir.Next("a")},
		{Frame: 20, Notification: ir.Next("b")},
		{Frame: 40, Notification: ir.Complete()},
	}, got)
}

func TestParseValueDiagram_SpacesAreIdleFrames(t *testing.T) {
	got, err := ParseValueDiagram("a b", Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(20), got[1].Frame)
}

func TestParseValueDiagram_Empty(t *testing.T) {
	got, err := ParseValueDiagram("", Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestParseValueDiagram_FrameTimeFactor(t *testing.T) {
	got, err := ParseValueDiagram("-a|", Options{FrameTimeFactor: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got[0].Frame)
	assert.Equal(t, int64(2), got[1].Frame)
}

func TestParseValueDiagram_RejectsUnsubscription(t *testing.T) {
	_, err := ParseValueDiagram("--a--!", Options{})
	require.Error(t, err)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrCodeUnsubscribeInValues, fe.Code)
	assert.Equal(t, 5, fe.Index)
}

func TestParseValueDiagram_UnbalancedGroups(t *testing.T) {
	for _, d := range []string{"(ab", "a)b", "((a))"} {
		_, err := ParseValueDiagram(d, Options{})
		var fe *FormatError
		require.ErrorAs(t, err, &fe, d)
		assert.Equal(t, ErrCodeUnbalancedGroup, fe.Code, d)
	}
}

type nestedStub struct{ tl ir.Timeline }

func (n nestedStub) Nested() ir.Nested { return ir.Nested{Events: n.tl} }

func TestParseValueDiagram_MaterializeNested(t *testing.T) {
	inner := nestedStub{tl: ir.Timeline{{Frame: 10, Notification: ir.Next("x")}}}
	values := map[string]any{"x": inner}

	got, err := ParseValueDiagram("-x", Options{Values: values, MaterializeNested: true})
	require.NoError(t, err)
	assert.Equal(t, ir.Next(ir.Nested{Events: inner.tl}), got[0].Notification)

	got, err = ParseValueDiagram("-x", Options{Values: values})
	require.NoError(t, err)
	assert.Equal(t, ir.Next(inner), got[0].Notification, "without materialization the value is emitted as-is")
}

func TestParseSubscriptionDiagram(t *testing.T) {
	tests := []struct {
		diagram string
		want    ir.SubscriptionLog
	}{
		{"-^--!", ir.SubscriptionLog{Subscribed: 10, Unsubscribed: 40}},
		{"-^", ir.SubscriptionLog{Subscribed: 10, Unsubscribed: ir.Infinity}},
		{"^", ir.SubscriptionLog{Subscribed: 0, Unsubscribed: ir.Infinity}},
		{"--(^!)", ir.SubscriptionLog{Subscribed: 20, Unsubscribed: 20}},
		{"", ir.SubscriptionLog{Subscribed: ir.Infinity, Unsubscribed: ir.Infinity}},
		{"  ^ !", ir.SubscriptionLog{Subscribed: 20, Unsubscribed: 40}},
	}
	for _, tt := range tests {
		t.Run(tt.diagram, func(t *testing.T) {
			got, err := ParseSubscriptionDiagram(tt.diagram)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSubscriptionDiagram_Errors(t *testing.T) {
	tests := []struct {
		diagram string
		code    FormatErrorCode
		char    rune
	}{
		{"^-^", ErrCodeDuplicateMarker, '^'},
		{"^-!-!", ErrCodeDuplicateMarker, '!'},
		{"^-a-!", ErrCodeIllegalChar, 'a'},
		{"^-|", ErrCodeIllegalChar, '|'},
		{"#", ErrCodeIllegalChar, '#'},
		{"--!-^", ErrCodeUnsubscribeBeforeSubscribe, '!'},
	}
	for _, tt := range tests {
		t.Run(tt.diagram, func(t *testing.T) {
			_, err := ParseSubscriptionDiagram(tt.diagram)
			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, tt.code, fe.Code)
			assert.Equal(t, tt.char, fe.Char)
			assert.True(t, IsFormatError(err))
		})
	}
}

func TestParseSubscriptionDiagramWithFactor(t *testing.T) {
	got, err := ParseSubscriptionDiagramWithFactor("-^-!", 5)
	require.NoError(t, err)
	assert.Equal(t, ir.SubscriptionLog{Subscribed: 5, Unsubscribed: 15}, got)
}

func TestNoSubscription(t *testing.T) {
	assert.Equal(t, ir.SubscriptionLog{Subscribed: ir.Infinity, Unsubscribed: ir.Infinity}, NoSubscription())
}

func TestCreateTime(t *testing.T) {
	got, err := CreateTime("---|")
	require.NoError(t, err)
	assert.Equal(t, 3*FrameTimeFactor, got)

	got, err = CreateTimeWithFactor("-----|", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)

	// Group brackets count as characters.
	got, err = CreateTime("(a|)")
	require.NoError(t, err)
	assert.Equal(t, 3*FrameTimeFactor, got)

	_, err = CreateTime("-")
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, ErrCodeMissingCompletion, fe.Code)
}

func TestCheckCold(t *testing.T) {
	assert.NoError(t, CheckCold("--a--|"))

	var fe *FormatError
	require.ErrorAs(t, CheckCold("-^-a"), &fe)
	assert.Equal(t, ErrCodeSubscriptionInCold, fe.Code)

	require.ErrorAs(t, CheckCold("-a-!"), &fe)
	assert.Equal(t, ErrCodeUnsubscribeInValues, fe.Code)
}

func TestCheckHot(t *testing.T) {
	assert.NoError(t, CheckHot("-^-a|"))
	assert.True(t, IsFormatError(CheckHot("-a-!")))
}

func TestFormatError_Message(t *testing.T) {
	_, err := ParseSubscriptionDiagram("^x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ILLEGAL_CHAR")
	assert.Contains(t, err.Error(), `"x"`)
	assert.Contains(t, err.Error(), "index 1")
}

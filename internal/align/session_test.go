package align

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/WaveSlider/pkg/models"
)

// trace of n samples at 10 Hz: window [int(0.3n), int(0.7n)) in samples
func trace(channel, event string, n int) *models.Trace {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return &models.Trace{Channel: channel, Event: event, SampleRate: 10, Samples: x}
}

func newSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	pairs := []models.ChannelPair{
		{Channel: "BHE", Reference: trace("BHE", "ev1", 1000), Target: trace("BHE", "ev2", 1000)},
		{Channel: "BHN", Reference: trace("BHN", "ev1", 500), Target: trace("BHN", "ev2", 800)},
		{Channel: "BHZ", Reference: trace("BHZ", "ev1", 1000), Target: trace("BHZ", "ev2", 1000)},
	}
	s, err := NewSession(pairs, opts...)
	require.NoError(t, err)
	return s
}

func TestInitialState(t *testing.T) {
	s := newSession(t)
	st := s.CurrentState()
	assert.Equal(t, 0.0, st.Shift)
	assert.False(t, st.HasPick)
	assert.Equal(t, []string{"BHE", "BHN", "BHZ"}, s.Channels())
}

func TestSetShiftClamps(t *testing.T) {
	s := newSession(t)
	cases := []struct{ in, want float64 }{
		{0, 0},
		{2.5, 2.5},
		{-9.999, -9.999},
		{10, 10},
		{-10, -10},
		{10.0001, 10},
		{-42, -10},
		{1e300, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, s.SetShift(tc.in), "input %v", tc.in)
		assert.Equal(t, tc.want, s.CurrentState().Shift)
	}
}

func TestSetShiftIgnoresNaN(t *testing.T) {
	s := newSession(t)
	s.SetShift(3)
	assert.Equal(t, 3.0, s.SetShift(math.NaN()))
}

func TestWindowsAreIndependentPerChannel(t *testing.T) {
	s := newSession(t)

	w, ok := s.Window("BHE")
	require.True(t, ok)
	assert.InDelta(t, 30.0, w.Start, 1e-12)
	assert.InDelta(t, 69.9, w.End, 1e-12)

	w, ok = s.Window("BHN")
	require.True(t, ok)
	assert.InDelta(t, 15.0, w.Start, 1e-12)
	assert.InDelta(t, 34.9, w.End, 1e-12)
}

func TestCapturePickInsideWindow(t *testing.T) {
	s := newSession(t)
	require.True(t, s.CapturePick("BHZ", 40))
	st := s.CurrentState()
	assert.True(t, st.HasPick)
	assert.Equal(t, 40.0, st.Pick)
}

func TestCapturePickLastWriteWins(t *testing.T) {
	s := newSession(t)
	require.True(t, s.CapturePick("BHZ", 40))
	require.True(t, s.CapturePick("BHE", 55.5))
	assert.Equal(t, 55.5, s.CurrentState().Pick)
}

func TestCapturePickOutsideWindowIsIgnored(t *testing.T) {
	s := newSession(t)
	require.True(t, s.CapturePick("BHZ", 40))

	assert.False(t, s.CapturePick("BHZ", 75))
	// inside BHZ's window but outside BHN's
	assert.False(t, s.CapturePick("BHN", 40))
	assert.False(t, s.CapturePick("XYZ", 40))
	assert.False(t, s.CapturePick("BHZ", math.NaN()))

	assert.Equal(t, 40.0, s.CurrentState().Pick)
}

func TestPickAndShiftCommute(t *testing.T) {
	a := newSession(t)
	a.SetShift(2)
	a.CapturePick("BHZ", 50)

	b := newSession(t)
	b.CapturePick("BHZ", 50)
	b.SetShift(2)

	assert.Equal(t, a.CurrentState(), b.CurrentState())
}

func TestPickObserver(t *testing.T) {
	var seen []bool
	s := newSession(t, WithPickObserver(func(channel string, at float64, accepted bool) {
		seen = append(seen, accepted)
	}))
	s.CapturePick("BHZ", 40)
	s.CapturePick("BHZ", 1)
	assert.Equal(t, []bool{true, false}, seen)
}

func TestSeries(t *testing.T) {
	s := newSession(t)

	ref, ok := s.ReferenceSeries("BHN")
	require.True(t, ok)
	require.Len(t, ref.Times, 200)
	assert.InDelta(t, 15.0, ref.Times[0], 1e-12)
	assert.Equal(t, 150.0, ref.Samples[0])

	tgt, ok := s.TargetSeries("BHN", 2)
	require.True(t, ok)
	require.Len(t, tgt.Times, 320)
	assert.InDelta(t, 24.0+2, tgt.Times[0], 1e-12)
	assert.Equal(t, 240.0, tgt.Samples[0])

	_, ok = s.TargetSeries("XYZ", 0)
	assert.False(t, ok)
}

func TestNewSessionValidation(t *testing.T) {
	_, err := NewSession(nil)
	assert.ErrorIs(t, err, ErrNoChannels)

	tr := trace("BHZ", "ev1", 100)
	_, err = NewSession([]models.ChannelPair{
		{Channel: "BHZ", Reference: tr, Target: tr},
		{Channel: "BHZ", Reference: tr, Target: tr},
	})
	assert.Error(t, err)

	_, err = NewSession([]models.ChannelPair{{Channel: "BHZ", Reference: tr}})
	assert.Error(t, err)
}

func TestRunAppliesEventsInOrder(t *testing.T) {
	s := newSession(t)
	events := make(chan Event, 8)
	events <- Event{Kind: ShiftEvent, Value: 1}
	events <- Event{Kind: PickEvent, Channel: "BHZ", Value: 45}
	events <- Event{Kind: ShiftEvent, Value: -12}
	events <- Event{Kind: PickEvent, Channel: "BHZ", Value: 99}
	events <- Event{Kind: CloseEvent}
	events <- Event{Kind: ShiftEvent, Value: 5}

	st, err := s.Run(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, models.AlignmentState{Shift: -10, Pick: 45, HasPick: true}, st)
	assert.Len(t, events, 1, "events after close must not be consumed")
}

func TestRunReplies(t *testing.T) {
	s := newSession(t)
	events := make(chan Event, 2)
	reply := make(chan models.AlignmentState, 1)
	events <- Event{Kind: ShiftEvent, Value: 2.5, Reply: reply}
	close(events)

	st, err := s.Run(context.Background(), events)
	require.NoError(t, err)
	assert.Equal(t, 2.5, st.Shift)
	assert.Equal(t, 2.5, (<-reply).Shift)
}

func TestRunCancelled(t *testing.T) {
	s := newSession(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Run(ctx, make(chan Event))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

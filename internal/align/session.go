package align

import (
	"errors"
	"fmt"
	"math"

	"github.com/himanishpuri/WaveSlider/internal/dsp"
	"github.com/himanishpuri/WaveSlider/pkg/models"
)

// Shift bounds, seconds. Both are inclusive.
const (
	MinShift = -10.0
	MaxShift = 10.0
)

var ErrNoChannels = errors.New("alignment session needs at least one channel pair")

// Window is a closed time interval on a trace's own axis, in seconds.
type Window struct {
	Start float64
	End   float64
}

func (w Window) Contains(t float64) bool {
	return t >= w.Start && t <= w.End
}

// channelView is one displayed channel. Each trace keeps its own 30%-70%
// index window; the reference window also bounds valid picks.
type channelView struct {
	pair             models.ChannelPair
	refStart, refEnd int
	tgtStart, tgtEnd int
	window           Window
}

// PickObserver is told about every pick request and whether it was kept.
type PickObserver func(channel string, t float64, accepted bool)

type Option func(*Session)

func WithPickObserver(fn PickObserver) Option {
	return func(s *Session) {
		s.observer = fn
	}
}

// Session owns the alignment state for a fixed set of channel pairs. It is not
// safe for concurrent use; Run serializes all access from input backends.
type Session struct {
	channels []channelView
	index    map[string]int
	state    models.AlignmentState
	observer PickObserver
}

func NewSession(pairs []models.ChannelPair, opts ...Option) (*Session, error) {
	if len(pairs) == 0 {
		return nil, ErrNoChannels
	}

	s := &Session{index: make(map[string]int, len(pairs))}
	for _, p := range pairs {
		if p.Reference == nil || p.Target == nil {
			return nil, fmt.Errorf("channel %s: missing trace", p.Channel)
		}
		if _, dup := s.index[p.Channel]; dup {
			return nil, fmt.Errorf("channel %s listed twice", p.Channel)
		}

		cv := channelView{pair: p}
		cv.refStart, cv.refEnd = dsp.MiddleWindow(p.Reference.Len())
		cv.tgtStart, cv.tgtEnd = dsp.MiddleWindow(p.Target.Len())
		if cv.refEnd <= cv.refStart || cv.tgtEnd <= cv.tgtStart {
			return nil, fmt.Errorf("channel %s: %w", p.Channel, dsp.ErrTooFewSamples)
		}
		cv.window = Window{
			Start: p.Reference.TimeAt(cv.refStart),
			End:   p.Reference.TimeAt(cv.refEnd - 1),
		}

		s.index[p.Channel] = len(s.channels)
		s.channels = append(s.channels, cv)
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ClampShift bounds v to [MinShift, MaxShift].
func ClampShift(v float64) float64 {
	return math.Max(MinShift, math.Min(MaxShift, v))
}

// SetShift stores the clamped shift shared by every channel and returns it.
// NaN is ignored and leaves the current shift in place.
func (s *Session) SetShift(v float64) float64 {
	if math.IsNaN(v) {
		return s.state.Shift
	}
	s.state.Shift = ClampShift(v)
	return s.state.Shift
}

// CapturePick records t, measured on the reference trace of channel, if it
// lies inside that channel's displayed window. The previous pick is
// overwritten. Out-of-window picks and unknown channels are ignored.
func (s *Session) CapturePick(channel string, t float64) bool {
	accepted := false
	if i, ok := s.index[channel]; ok && !math.IsNaN(t) && s.channels[i].window.Contains(t) {
		s.state.Pick = t
		s.state.HasPick = true
		accepted = true
	}
	if s.observer != nil {
		s.observer(channel, t, accepted)
	}
	return accepted
}

func (s *Session) CurrentState() models.AlignmentState {
	return s.state
}

// Channels returns channel identifiers in display order.
func (s *Session) Channels() []string {
	out := make([]string, len(s.channels))
	for i, cv := range s.channels {
		out[i] = cv.pair.Channel
	}
	return out
}

func (s *Session) Pair(channel string) (models.ChannelPair, bool) {
	i, ok := s.index[channel]
	if !ok {
		return models.ChannelPair{}, false
	}
	return s.channels[i].pair, true
}

// Window returns the reference-axis display window of channel.
func (s *Session) Window(channel string) (Window, bool) {
	i, ok := s.index[channel]
	if !ok {
		return Window{}, false
	}
	return s.channels[i].window, true
}

// Series is a displayable slice of a trace: relative times and amplitudes.
type Series struct {
	Times   []float64
	Samples []float64
}

func windowed(tr *models.Trace, start, end int, offset float64) Series {
	out := Series{
		Times:   make([]float64, end-start),
		Samples: make([]float64, end-start),
	}
	copy(out.Samples, tr.Samples[start:end])
	for i := range out.Times {
		out.Times[i] = tr.TimeAt(start+i) + offset
	}
	return out
}

// ReferenceSeries returns the windowed event 1 trace on its fixed axis.
func (s *Session) ReferenceSeries(channel string) (Series, bool) {
	i, ok := s.index[channel]
	if !ok {
		return Series{}, false
	}
	cv := s.channels[i]
	return windowed(cv.pair.Reference, cv.refStart, cv.refEnd, 0), true
}

// TargetSeries returns the windowed event 2 trace translated by shift seconds.
func (s *Session) TargetSeries(channel string, shift float64) (Series, bool) {
	i, ok := s.index[channel]
	if !ok {
		return Series{}, false
	}
	cv := s.channels[i]
	return windowed(cv.pair.Target, cv.tgtStart, cv.tgtEnd, shift), true
}

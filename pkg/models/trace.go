package models

import "time"

// Trace is one channel's waveform for one event.
type Trace struct {
	Station    string
	Event      string
	Channel    string
	SampleRate float64   // samples per second
	StartTime  time.Time // absolute time of Samples[0], UTC
	Samples    []float64
}

// Len returns the number of samples.
func (t *Trace) Len() int {
	return len(t.Samples)
}

// Delta returns the sample interval in seconds.
func (t *Trace) Delta() float64 {
	if t.SampleRate <= 0 {
		return 0
	}
	return 1.0 / t.SampleRate
}

// Nyquist returns half the sampling rate.
func (t *Trace) Nyquist() float64 {
	return 0.5 * t.SampleRate
}

// TimeAt returns the offset in seconds of sample i from StartTime.
func (t *Trace) TimeAt(i int) float64 {
	return float64(i) * t.Delta()
}

// ChannelPair holds the two traces of one channel, one per event.
// Reference belongs to event 1 and never moves; Target belongs to event 2
// and is displayed translated by the session shift.
type ChannelPair struct {
	Channel   string
	Reference *Trace
	Target    *Trace
}

package dsp

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himanishpuri/WaveSlider/pkg/models"
)

func rawTrace(n int, rate float64) *models.Trace {
	x := make([]float64, n)
	for i := range x {
		t := float64(i) / rate
		x[i] = 300*math.Sin(2*math.Pi*2*t) + 40*math.Sin(2*math.Pi*11*t) + 5*math.Cos(2*math.Pi*0.1*t)
	}
	return &models.Trace{
		Station:    "AAK",
		Event:      "DPRK4",
		Channel:    "BHZ",
		SampleRate: rate,
		StartTime:  time.Date(2016, time.January, 6, 1, 29, 0, 0, time.UTC),
		Samples:    x,
	}
}

func TestNewPreprocessorDefaults(t *testing.T) {
	p, err := NewPreprocessor(Config{LowHz: 1, HighHz: 4})
	require.NoError(t, err)
	assert.Equal(t, DefaultCorners, p.Config().Corners)
	assert.Equal(t, DefaultTargetRate, p.Config().TargetRate)
}

func TestNewPreprocessorRejectsCorners(t *testing.T) {
	_, err := NewPreprocessor(Config{LowHz: 4, HighHz: 1})
	assert.ErrorIs(t, err, ErrInvalidCorners)

	_, err = NewPreprocessor(Config{LowHz: 1, HighHz: 4, Corners: 5})
	assert.ErrorIs(t, err, ErrInvalidCorners)
}

func TestProcess(t *testing.T) {
	p, err := NewPreprocessor(Config{LowHz: 1, HighHz: 4})
	require.NoError(t, err)
	raw := rawTrace(2400, 40)

	out, err := p.Process(raw)
	require.NoError(t, err)

	assert.Equal(t, 2000.0, out.SampleRate)
	assert.True(t, out.StartTime.Equal(raw.StartTime))
	assert.Equal(t, "DPRK4", out.Event)
	assert.Equal(t, "BHZ", out.Channel)
	assert.Len(t, out.Samples, 120000)
	assert.Equal(t, 40.0, raw.SampleRate, "raw trace must not be modified")

	// resampling tapers the spectrum, so the peak drops just below one
	m, err := WindowMaxAbs(out.Samples)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m, 0.05)
}

func TestProcessIsDeterministic(t *testing.T) {
	p, err := NewPreprocessor(Config{LowHz: 0.5, HighHz: 6})
	require.NoError(t, err)

	a, err := p.Process(rawTrace(1500, 40))
	require.NoError(t, err)
	b, err := p.Process(rawTrace(1500, 40))
	require.NoError(t, err)

	require.Equal(t, len(a.Samples), len(b.Samples))
	for i := range a.Samples {
		if math.Float64bits(a.Samples[i]) != math.Float64bits(b.Samples[i]) {
			t.Fatalf("sample %d differs: %v vs %v", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestProcessCornersAboveNyquist(t *testing.T) {
	p, err := NewPreprocessor(Config{LowHz: 1, HighHz: 25})
	require.NoError(t, err)

	_, err = p.Process(rawTrace(400, 40))
	require.ErrorIs(t, err, ErrInvalidCorners)
	assert.Contains(t, err.Error(), "not below Nyquist 20 Hz")
}

func TestProcessFlatTrace(t *testing.T) {
	p, err := NewPreprocessor(Config{LowHz: 1, HighHz: 4})
	require.NoError(t, err)
	flat := rawTrace(400, 40)
	for i := range flat.Samples {
		flat.Samples[i] = 0
	}

	_, err = p.Process(flat)
	assert.ErrorIs(t, err, ErrDegenerateNormalization)
}

package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpectralTaper(t *testing.T) {
	w := spectralTaper(8)
	require.Len(t, w, 8)
	// ifftshifted periodic Hann peaks at index 0 and vanishes at n/2
	assert.InDelta(t, 1.0, w[0], 1e-12)
	assert.InDelta(t, 0.0, w[4], 1e-12)
	assert.InDelta(t, w[1], w[7], 1e-12)
}

func TestResampleUpsamplesPeriodicSine(t *testing.T) {
	const from, to = 40.0, 2000.0
	x := sine(400, 1, from) // ten full cycles

	y, err := Resample(x, from, to)
	require.NoError(t, err)
	require.Len(t, y, 20000)

	// the spectral taper scales a 1 Hz line by 0.5+0.5cos(2*pi*1/40)
	weight := 0.5 + 0.5*math.Cos(2*math.Pi*10/400)
	for i := 0; i < len(y); i += 97 {
		want := weight * math.Sin(2*math.Pi*float64(i)/to)
		if math.Abs(y[i]-want) > 1e-9 {
			t.Fatalf("sample %d: got %v, want %v", i, y[i], want)
		}
	}
}

func TestResampleDownsampleLength(t *testing.T) {
	x := sine(1001, 5, 100)
	y, err := Resample(x, 100, 40)
	require.NoError(t, err)
	assert.Len(t, y, int(float64(len(x))/(100.0/40.0)))
}

func TestResampleSameRateCopies(t *testing.T) {
	x := []float64{1, 2, 3}
	y, err := Resample(x, 2000, 2000)
	require.NoError(t, err)
	assert.Equal(t, x, y)
	y[0] = 9
	assert.Equal(t, 1.0, x[0])
}

func TestResampleTooFewSamples(t *testing.T) {
	_, err := Resample([]float64{1}, 40, 2000)
	assert.ErrorIs(t, err, ErrTooFewSamples)

	_, err = Resample([]float64{1, 2}, 2000, 40)
	assert.ErrorIs(t, err, ErrTooFewSamples)
}

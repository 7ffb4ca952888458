package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleWindow(t *testing.T) {
	start, end := MiddleWindow(10)
	assert.Equal(t, 3, start)
	assert.Equal(t, 7, end)

	start, end = MiddleWindow(1001)
	assert.Equal(t, 300, start)
	assert.Equal(t, 700, end)
}

func TestNormalizeDividesEverySample(t *testing.T) {
	// peak outside the window must not drive the scale
	x := []float64{50, -3, 0.5, 2, -4, 1, 0.25, 3, -60, 7}
	m, err := WindowMaxAbs(x)
	require.NoError(t, err)
	assert.Equal(t, 4.0, m)

	y, err := Normalize(x)
	require.NoError(t, err)
	for i := range x {
		assert.Equal(t, x[i]/m, y[i], "sample %d", i)
	}

	post, err := WindowMaxAbs(y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, post, 1e-12)
	assert.Equal(t, 50.0, x[0], "input must not be modified")
}

func TestNormalizeDegenerateWindow(t *testing.T) {
	x := []float64{1, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	_, err := Normalize(x)
	assert.ErrorIs(t, err, ErrDegenerateNormalization)

	x[4] = math.NaN()
	_, err = Normalize(x)
	assert.ErrorIs(t, err, ErrDegenerateNormalization)
}

func TestNormalizeTooShort(t *testing.T) {
	_, err := Normalize([]float64{1})
	assert.ErrorIs(t, err, ErrTooFewSamples)
}

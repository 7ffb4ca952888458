package dsp

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// response evaluates |H(e^jw)| of the cascade at frequency f.
func response(sos []Section, f, sampleRate float64) float64 {
	w := 2 * math.Pi * f / sampleRate
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1
	h := complex(1, 0)
	for _, s := range sos {
		num := complex(s.B[0], 0) + complex(s.B[1], 0)*z1 + complex(s.B[2], 0)*z2
		den := complex(s.A[0], 0) + complex(s.A[1], 0)*z1 + complex(s.A[2], 0)*z2
		h *= num / den
	}
	return cmplx.Abs(h)
}

func sine(n int, f, sampleRate float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * f * float64(i) / sampleRate)
	}
	return x
}

func TestDesignBandpassCornersAreHalfPower(t *testing.T) {
	sos, err := DesignBandpass(1, 4, 40, 4)
	require.NoError(t, err)
	require.Len(t, sos, 4)

	half := 1 / math.Sqrt2
	assert.InDelta(t, half, response(sos, 1, 40), 1e-9)
	assert.InDelta(t, half, response(sos, 4, 40), 1e-9)
	assert.InDelta(t, 0, response(sos, 0, 40), 1e-12)
	assert.InDelta(t, 0, response(sos, 20, 40), 1e-12)
	assert.Less(t, response(sos, 12, 40), 0.01)
}

func TestDesignBandpassStable(t *testing.T) {
	sos, err := DesignBandpass(0.5, 8, 100, 6)
	require.NoError(t, err)
	for _, s := range sos {
		// |p|^2 of each conjugate pair
		assert.Less(t, s.A[2], 1.0)
		assert.Equal(t, 1.0, s.A[0])
	}
}

func TestCheckCorners(t *testing.T) {
	cases := []struct {
		name      string
		low, high float64
	}{
		{"zero low", 0, 4},
		{"negative low", -1, 4},
		{"inverted", 4, 1},
		{"equal", 2, 2},
		{"at nyquist", 1, 20},
		{"above nyquist", 1, 25},
		{"nan", math.NaN(), 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, CheckCorners(tc.low, tc.high, 40), ErrInvalidCorners)
		})
	}
	assert.NoError(t, CheckCorners(1, 19.9, 40))
}

func TestDesignBandpassRejectsOddOrder(t *testing.T) {
	_, err := DesignBandpass(1, 4, 40, 3)
	assert.ErrorIs(t, err, ErrInvalidCorners)
}

func TestBandpassIsZeroPhase(t *testing.T) {
	const rate = 100.0
	sos, err := DesignBandpass(1, 4, rate, 4)
	require.NoError(t, err)

	// frequency at which the analog prototype has unit gain
	nyq := rate / 2
	w0 := 4 * math.Tan(math.Pi*(1/nyq)/2)
	w1 := 4 * math.Tan(math.Pi*(4/nyq)/2)
	fc := 2 * nyq / math.Pi * math.Atan(math.Sqrt(w0*w1)/4)
	require.InDelta(t, 1, response(sos, fc, rate), 1e-9)

	x := sine(6000, fc, rate)
	y, err := Bandpass(x, 1, 4, rate, 4)
	require.NoError(t, err)
	require.Len(t, y, len(x))

	for i := 1500; i < 4500; i++ {
		if math.Abs(y[i]-x[i]) > 1e-3 {
			t.Fatalf("sample %d: filtered %v differs from input %v", i, y[i], x[i])
		}
	}
}

func TestBandpassAttenuatesStopband(t *testing.T) {
	x := sine(6000, 20, 100)
	y, err := Bandpass(x, 1, 4, 100, 4)
	require.NoError(t, err)

	m, err := WindowMaxAbs(y)
	require.NoError(t, err)
	assert.Less(t, m, 1e-3)
}

func TestBandpassEmpty(t *testing.T) {
	_, err := Bandpass(nil, 1, 4, 40, 4)
	assert.ErrorIs(t, err, ErrTooFewSamples)
}

func TestFiltFiltLeavesInputUntouched(t *testing.T) {
	sos, err := DesignBandpass(1, 4, 40, 4)
	require.NoError(t, err)
	x := sine(100, 2, 40)
	orig := append([]float64(nil), x...)

	FiltFilt(sos, x)
	assert.Equal(t, orig, x)
}

package dsp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var ErrDegenerateNormalization = errors.New("windowed maximum amplitude is zero")

// Bounds of the middle window, as fractions of the sample count.
const (
	WindowStartFraction = 0.3
	WindowEndFraction   = 0.7
)

// MiddleWindow returns the half-open index range [start, end) spanning the
// 30%-70% portion of an n-sample trace.
func MiddleWindow(n int) (start, end int) {
	return int(float64(n) * WindowStartFraction), int(float64(n) * WindowEndFraction)
}

// WindowMaxAbs returns the largest absolute sample inside the middle window.
func WindowMaxAbs(x []float64) (float64, error) {
	start, end := MiddleWindow(len(x))
	if end <= start {
		return 0, fmt.Errorf("normalization window of %d samples: %w", len(x), ErrTooFewSamples)
	}
	return floats.Norm(x[start:end], math.Inf(1)), nil
}

// Normalize divides every sample by the middle-window maximum absolute value.
// A zero (or non-finite) maximum is reported as ErrDegenerateNormalization.
func Normalize(x []float64) ([]float64, error) {
	m, err := WindowMaxAbs(x)
	if err != nil {
		return nil, err
	}
	if m == 0 || math.IsNaN(m) || math.IsInf(m, 0) {
		return nil, fmt.Errorf("%w (max-abs %v)", ErrDegenerateNormalization, m)
	}
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = v / m
	}
	return out, nil
}

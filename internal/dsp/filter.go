package dsp

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sort"
)

var (
	ErrInvalidCorners = errors.New("invalid bandpass corners")
	ErrTooFewSamples  = errors.New("too few samples")
)

// Section is one second-order IIR stage. A[0] is always 1.
type Section struct {
	B [3]float64
	A [3]float64
}

// CheckCorners validates 0 < low < high < Nyquist for the given sampling rate.
func CheckCorners(low, high, sampleRate float64) error {
	nyq := 0.5 * sampleRate
	if !(low > 0) || !(high > low) || !(high < nyq) {
		return fmt.Errorf("%w: need 0 < %g < %g < %g (Nyquist)", ErrInvalidCorners, low, high, nyq)
	}
	return nil
}

// DesignBandpass returns a digital Butterworth bandpass of the given order as
// cascaded second-order sections. The analog prototype is mapped with the
// bilinear transform after prewarping both corners. Order must be even so that
// every pole comes in a conjugate pair.
func DesignBandpass(low, high, sampleRate float64, order int) ([]Section, error) {
	if err := CheckCorners(low, high, sampleRate); err != nil {
		return nil, err
	}
	if order < 2 || order%2 != 0 {
		return nil, fmt.Errorf("%w: order %d must be a positive even number", ErrInvalidCorners, order)
	}

	// normalized to fs = 2
	const fs2 = 4.0
	nyq := 0.5 * sampleRate
	w0 := fs2 * math.Tan(math.Pi*(low/nyq)/2)
	w1 := fs2 * math.Tan(math.Pi*(high/nyq)/2)
	bw := w1 - w0
	wo := math.Sqrt(w0 * w1)

	// lowpass prototype -> bandpass, 2*order analog poles
	analog := make([]complex128, 0, 2*order)
	for m := -order + 1; m < order; m += 2 {
		p := -cmplx.Exp(complex(0, math.Pi*float64(m)/float64(2*order)))
		p *= complex(bw/2, 0)
		d := cmplx.Sqrt(p*p - complex(wo*wo, 0))
		analog = append(analog, p+d, p-d)
	}

	// bilinear transform; order zeros at s=0 map to z=1, the rest land on z=-1
	den := complex(1, 0)
	digital := make([]complex128, 0, len(analog))
	for _, p := range analog {
		den *= complex(fs2, 0) - p
		digital = append(digital, (complex(fs2, 0)+p)/(complex(fs2, 0)-p))
	}
	gain := math.Pow(bw, float64(order)) * math.Pow(fs2, float64(order)) / real(den)

	upper := make([]complex128, 0, order)
	for _, p := range digital {
		if imag(p) > 0 {
			upper = append(upper, p)
		}
	}
	if len(upper) != order {
		return nil, fmt.Errorf("%w: expected %d conjugate pole pairs, got %d", ErrInvalidCorners, order, len(upper))
	}
	sort.Slice(upper, func(i, j int) bool { return cmplx.Phase(upper[i]) < cmplx.Phase(upper[j]) })

	g := math.Pow(gain, 1/float64(order))
	sos := make([]Section, order)
	for i, p := range upper {
		sos[i] = Section{
			B: [3]float64{g, 0, -g},
			A: [3]float64{1, -2 * real(p), real(p)*real(p) + imag(p)*imag(p)},
		}
	}
	return sos, nil
}

// Filter runs x through the cascade once, from zero initial state, in place.
func Filter(sos []Section, x []float64) {
	for _, s := range sos {
		var z1, z2 float64
		for i, xi := range x {
			yi := s.B[0]*xi + z1
			z1 = s.B[1]*xi - s.A[1]*yi + z2
			z2 = s.B[2]*xi - s.A[2]*yi
			x[i] = yi
		}
	}
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

// FiltFilt applies the cascade forward then backward so that the net phase
// response is zero. The input is not modified.
func FiltFilt(sos []Section, x []float64) []float64 {
	y := make([]float64, len(x))
	copy(y, x)
	Filter(sos, y)
	reverse(y)
	Filter(sos, y)
	reverse(y)
	return y
}

// Bandpass is the zero-phase Butterworth bandpass used on every trace.
func Bandpass(x []float64, low, high, sampleRate float64, order int) ([]float64, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("bandpass: %w", ErrTooFewSamples)
	}
	sos, err := DesignBandpass(low, high, sampleRate, order)
	if err != nil {
		return nil, err
	}
	return FiltFilt(sos, x), nil
}

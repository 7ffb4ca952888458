package dsp

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/interp"
)

// DefaultTargetRate is the analysis sampling rate, Hz.
const DefaultTargetRate = 2000.0

// spectralTaper returns the ifftshifted periodic Hann window of length n.
// The periodic window is the symmetric window of length n+1 without its last point.
func spectralTaper(n int) []float64 {
	w := make([]float64, n+1)
	for i := range w {
		w[i] = 1
	}
	window.Hann(w)
	w = w[:n]

	shifted := make([]float64, n)
	half := n / 2
	for i := range shifted {
		shifted[i] = w[(i+half)%n]
	}
	return shifted
}

// Resample changes the sampling rate of x in the frequency domain. The
// one-sided spectrum is tapered with a Hann window, linearly interpolated onto
// the new frequency grid (held constant past the old Nyquist) and inverted.
// The output has int(len(x)*to/from) samples; the first sample keeps its time.
func Resample(x []float64, from, to float64) ([]float64, error) {
	npts := len(x)
	if npts < 2 {
		return nil, fmt.Errorf("resample %d samples: %w", npts, ErrTooFewSamples)
	}
	if from <= 0 || to <= 0 {
		return nil, fmt.Errorf("resample: invalid rates %v -> %v Hz", from, to)
	}
	if from == to {
		out := make([]float64, npts)
		copy(out, x)
		return out, nil
	}

	factor := from / to
	num := int(float64(npts) / factor)
	if num < 1 {
		return nil, fmt.Errorf("resample %d samples from %v to %v Hz: %w", npts, from, to, ErrTooFewSamples)
	}

	spec := fft.FFTReal(x)
	taper := spectralTaper(npts)

	nf := npts/2 + 1
	freqs := make([]float64, nf)
	re := make([]float64, nf)
	im := make([]float64, nf)
	df := from / float64(npts)
	for k := 0; k < nf; k++ {
		freqs[k] = df * float64(k)
		re[k] = real(spec[k]) * taper[k]
		im[k] = imag(spec[k]) * taper[k]
	}
	im[0] = 0
	if npts%2 == 0 {
		im[nf-1] = 0
	}

	var fitRe, fitIm interp.PiecewiseLinear
	if err := fitRe.Fit(freqs, re); err != nil {
		return nil, fmt.Errorf("resample: fitting spectrum: %w", err)
	}
	if err := fitIm.Fit(freqs, im); err != nil {
		return nil, fmt.Errorf("resample: fitting spectrum: %w", err)
	}

	nLarge := num/2 + 1
	dLarge := to / float64(num)
	large := make([]complex128, num)
	for j := 0; j < nLarge; j++ {
		f := dLarge * float64(j)
		v := complex(fitRe.Predict(f), fitIm.Predict(f))
		if j == 0 || (num%2 == 0 && j == num/2) {
			v = complex(real(v), 0)
		}
		large[j] = v
		if j > 0 && j < num-j {
			large[num-j] = complex(real(v), -imag(v))
		}
	}

	inv := fft.IFFT(large)
	scale := float64(num) / float64(npts)
	out := make([]float64, num)
	for i, v := range inv {
		out[i] = real(v) * scale
	}
	return out, nil
}

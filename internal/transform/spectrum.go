package transform

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrBadWindow is returned for a sampling window that cannot produce a
// spectrum.
var ErrBadWindow = errors.New("invalid sampling window")

// Spectrum is a sampled magnitude spectrum |F(k)| at non-negative
// frequencies.
type Spectrum struct {
	Freq      []float64
	Magnitude []float64
}

// Peak returns the frequency with the largest magnitude.
func (s *Spectrum) Peak() (freq, magnitude float64) {
	for i, m := range s.Magnitude {
		if m > magnitude {
			freq, magnitude = s.Freq[i], m
		}
	}
	return freq, magnitude
}

// Sampled approximates the Fourier transform of f by sampling it at n points
// on [-halfWidth, halfWidth) and taking the FFT. Magnitudes are scaled by the
// sample spacing so they approximate |∫ f(x) exp(-2πikx) dx|; frequencies
// run from 0 to the Nyquist frequency n/(4*halfWidth).
func Sampled(f func(float64) float64, halfWidth float64, n int) (*Spectrum, error) {
	if n < 2 || halfWidth <= 0 || math.IsInf(halfWidth, 0) || math.IsNaN(halfWidth) {
		return nil, fmt.Errorf("%w: half width %v with %d samples", ErrBadWindow, halfWidth, n)
	}
	dx := 2 * halfWidth / float64(n)
	seq := make([]float64, n)
	for i := range seq {
		v := f(-halfWidth + float64(i)*dx)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		seq[i] = v
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)
	out := &Spectrum{
		Freq:      make([]float64, len(coeffs)),
		Magnitude: make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		out.Freq[i] = fft.Freq(i) / dx
		out.Magnitude[i] = cmplx.Abs(c) * dx
	}
	return out, nil
}

package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// PowerSpectrum returns |X_k| for k = 0 .. n/2 of the real series values.
func PowerSpectrum(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	fft := fourier.NewFFT(len(values))
	coeff := fft.Coefficients(nil, values)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantPeriod is the period of the strongest non-constant component of
// a series sampled every dt, or 0 when there is none.
func DominantPeriod(values []float64, dt float64) float64 {
	if len(values) < 4 || dt <= 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	centered := make([]float64, len(values))
	for i, v := range values {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	best := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > ps[best] || best == 0 {
			best = k
		}
	}
	if best == 0 || ps[best] == 0 {
		return 0
	}
	return float64(len(values)) * dt / float64(best)
}

// Package spectrum estimates power spectra and selects dominant harmonics.
package spectrum

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/sartorproj/goharmonic/errs"
)

// Bin is one frequency of a one-sided periodogram.
type Bin struct {
	Frequency float64 `json:"frequency"` // cycles per sample, in (0, 0.5]
	Power     float64 `json:"power"`
}

// Periodogram computes the raw one-sided periodogram of values.
//
// Bins are returned for k = 1..N/2 at frequency k/N cycles per sample with
// power |X_k|^2 / N, where X is the discrete Fourier transform of values.
// The series is neither detrended nor tapered and N need not be a power of
// two.
func Periodogram(values []float64) ([]Bin, error) {
	n := len(values)
	if n < 2 {
		return nil, fmt.Errorf("%w: periodogram needs at least 2 samples, got %d", errs.ErrInsufficientData, n)
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, values)

	bins := make([]Bin, n/2)
	for k := 1; k <= n/2; k++ {
		mag := cmplx.Abs(coeffs[k])
		bins[k-1] = Bin{
			Frequency: float64(k) / float64(n),
			Power:     mag * mag / float64(n),
		}
	}
	return bins, nil
}

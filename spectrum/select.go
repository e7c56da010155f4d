package spectrum

import (
	"fmt"
	"math"
	"sort"

	"github.com/sartorproj/goharmonic/errs"
)

// Harmonic is a periodogram peak kept by Select.
type Harmonic struct {
	Frequency float64 `json:"frequency"` // Hz
	Angular   float64 `json:"angular"`   // rad/s
	Power     float64 `json:"power"`
}

// Select keeps every bin whose power is strictly greater than threshold times
// the maximum power and converts its normalized frequency to Hz using the
// sampling interval dt.
//
// The result is ordered by descending power; ties keep periodogram order.
// The strongest bin always survives, so at least one harmonic is returned.
func Select(bins []Bin, threshold, dt float64) ([]Harmonic, error) {
	if !(threshold > 0 && threshold < 1) {
		return nil, fmt.Errorf("%w: power threshold %g outside (0, 1)", errs.ErrConfiguration, threshold)
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: sampling interval %g must be positive", errs.ErrConfiguration, dt)
	}
	if len(bins) == 0 {
		return nil, fmt.Errorf("%w: no spectral bins to select from", errs.ErrInsufficientData)
	}

	sorted := make([]Bin, len(bins))
	copy(sorted, bins)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Power > sorted[j].Power
	})

	cutoff := threshold * sorted[0].Power
	var selected []Harmonic
	for i, b := range sorted {
		// Keep the maximum even when the whole spectrum is flat at zero.
		if i > 0 && b.Power <= cutoff {
			break
		}
		f := b.Frequency / dt
		selected = append(selected, Harmonic{
			Frequency: f,
			Angular:   2 * math.Pi * f,
			Power:     b.Power,
		})
	}
	return selected, nil
}

// Frequencies returns the physical frequencies of harmonics, in order.
func Frequencies(harmonics []Harmonic) []float64 {
	freqs := make([]float64, len(harmonics))
	for i, h := range harmonics {
		freqs[i] = h.Frequency
	}
	return freqs
}

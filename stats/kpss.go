package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// KPSSResult is a level stationarity test of a residual sequence.
type KPSSResult struct {
	Statistic    float64 `json:"statistic"`
	PValue       float64 `json:"p_value"` // clamped to [0.01, 0.10]
	Lags         int     `json:"lags"`
	IsStationary bool    `json:"is_stationary"`
}

// kpssTable maps level stationarity critical values to their significance.
var kpssTable = []struct{ stat, p float64 }{
	{0.347, 0.10},
	{0.463, 0.05},
	{0.574, 0.025},
	{0.739, 0.01},
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test around a constant
// level. The null hypothesis is stationarity, so a small p-value flags
// residual structure the model failed to capture (drift, a missed trend).
// nlags <= 0 selects the Schwert bandwidth. Returns nil for fewer than 10
// values.
func KPSS(values []float64, nlags int) *KPSSResult {
	n := len(values)
	if n < 10 {
		return nil
	}
	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if nlags >= n {
		nlags = n - 1
	}

	mean := stat.Mean(values, nil)
	dev := make([]float64, n)
	for i, v := range values {
		dev[i] = v - mean
	}

	// Newey-West long-run variance with Bartlett weights.
	s2 := 0.0
	for _, d := range dev {
		s2 += d * d
	}
	for l := 1; l <= nlags; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += dev[i] * dev[i-l]
		}
		s2 += 2 * (1 - float64(l)/float64(nlags+1)) * cov
	}
	s2 /= float64(n)
	if s2 <= 0 {
		return &KPSSResult{Lags: nlags, PValue: kpssTable[0].p, IsStationary: true}
	}

	partial, eta := 0.0, 0.0
	for _, d := range dev {
		partial += d
		eta += partial * partial
	}
	statistic := eta / (float64(n) * float64(n) * s2)
	p := kpssPValue(statistic)

	return &KPSSResult{
		Statistic:    statistic,
		PValue:       p,
		Lags:         nlags,
		IsStationary: p >= 0.05,
	}
}

// kpssPValue interpolates linearly between tabulated critical values.
func kpssPValue(statistic float64) float64 {
	first, last := kpssTable[0], kpssTable[len(kpssTable)-1]
	if statistic <= first.stat {
		return first.p
	}
	if statistic >= last.stat {
		return last.p
	}
	for i := 1; i < len(kpssTable); i++ {
		lo, hi := kpssTable[i-1], kpssTable[i]
		if statistic <= hi.stat {
			w := (statistic - lo.stat) / (hi.stat - lo.stat)
			return lo.p + w*(hi.p-lo.p)
		}
	}
	return last.p
}

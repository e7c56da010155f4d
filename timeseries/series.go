// Package timeseries provides core time series data structures and operations.
package timeseries

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goharmonic/errs"
)

// Sample is a single observation of a series.
type Sample struct {
	Index int     `json:"index"`
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// Series represents an ordered sequence of observations taken at sample times.
// Times are in seconds relative to the first observation.
type Series struct {
	Times  []float64 `json:"times"`
	Values []float64 `json:"values"`
	Name   string    `json:"name,omitempty"`
}

// New creates a new series from values sampled every interval seconds,
// starting at time 0.
func New(values []float64, interval float64) *Series {
	times := make([]float64, len(values))
	for i := range times {
		times[i] = float64(i) * interval
	}
	return &Series{
		Times:  times,
		Values: values,
	}
}

// NewWithTimes creates a series with explicit sample times.
func NewWithTimes(times, values []float64) (*Series, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("%w: %d times for %d values", errs.ErrConfiguration, len(times), len(values))
	}
	return &Series{
		Times:  times,
		Values: values,
	}, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Samples returns the series as indexed samples.
func (s *Series) Samples() []Sample {
	samples := make([]Sample, len(s.Values))
	for i, v := range s.Values {
		samples[i] = Sample{Index: i, Value: v}
		if i < len(s.Times) {
			samples[i].Time = s.Times[i]
		}
	}
	return samples
}

// Interval returns the sampling interval of an evenly sampled series.
// Spacing may deviate from the first interval by a relative 1e-6 before the
// series is rejected as unevenly sampled.
func (s *Series) Interval() (float64, error) {
	if len(s.Times) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 samples to infer the interval", errs.ErrInsufficientData)
	}

	dt := s.Times[1] - s.Times[0]
	if dt <= 0 {
		return 0, fmt.Errorf("%w: sample times must be increasing", errs.ErrConfiguration)
	}
	for i := 2; i < len(s.Times); i++ {
		step := s.Times[i] - s.Times[i-1]
		if math.Abs(step-dt) > 1e-6*dt {
			return 0, fmt.Errorf("%w: uneven sampling at index %d (%g vs %g)", errs.ErrConfiguration, i, step, dt)
		}
	}
	return dt, nil
}

// Mean returns the arithmetic mean, or 0 for an empty series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance returns the unbiased sample variance, or 0 with fewer than two
// values.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// Std returns the sample standard deviation.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Min returns the smallest value, NaN when empty.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Min(s.Values)
}

// Max returns the largest value, NaN when empty.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Max(s.Values)
}

// Median returns the midpoint of the sorted values, averaging the two middle
// values of an even-length series. NaN when empty.
func (s *Series) Median() float64 {
	n := len(s.Values)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), s.Values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Times: []float64{}, Values: []float64{}}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	times := make([]float64, len(values))
	if len(s.Times) >= end {
		copy(times, s.Times[start:end])
	}

	return &Series{
		Times:  times,
		Values: values,
		Name:   s.Name,
	}
}

// Copy returns a series that shares no memory with s.
func (s *Series) Copy() *Series {
	return &Series{
		Times:  append([]float64{}, s.Times...),
		Values: append([]float64{}, s.Values...),
		Name:   s.Name,
	}
}

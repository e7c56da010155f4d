package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goharmonic/errs"
)

func TestNew(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	s := New(values, 0.25)

	require.Equal(t, 5, s.Len())
	require.Equal(t, values, s.Values)
	require.InDeltaSlice(t, []float64{0, 0.25, 0.5, 0.75, 1}, s.Times, 1e-12)
}

func TestNewWithTimesMismatch(t *testing.T) {
	_, err := NewWithTimes([]float64{0, 1}, []float64{1, 2, 3})
	require.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestSamples(t *testing.T) {
	s := New([]float64{3, 1, 4}, 0.5)
	samples := s.Samples()

	require.Len(t, samples, 3)
	require.Equal(t, Sample{Index: 2, Time: 1.0, Value: 4}, samples[2])
}

func TestInterval(t *testing.T) {
	s := New(make([]float64, 1024), 1.0/1024)
	dt, err := s.Interval()
	require.NoError(t, err)
	require.InDelta(t, 1.0/1024, dt, 1e-15)

	uneven, err := NewWithTimes([]float64{0, 1, 3}, []float64{1, 2, 3})
	require.NoError(t, err)
	_, err = uneven.Interval()
	require.ErrorIs(t, err, errs.ErrConfiguration)

	_, err = New([]float64{1}, 1).Interval()
	require.ErrorIs(t, err, errs.ErrInsufficientData)
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"simple", []float64{1, 2, 3, 4, 5}, 3.0},
		{"single", []float64{5}, 5.0},
		{"negative", []float64{-1, -2, -3}, -2.0},
		{"mixed", []float64{-1, 0, 1}, 0.0},
		{"empty", []float64{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.values, 1)
			require.InDelta(t, tt.expected, s.Mean(), 1e-10)
		})
	}
}

func TestVarianceAndStd(t *testing.T) {
	s := New([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 1)
	expected := 4.571428571428571

	require.InDelta(t, expected, s.Variance(), 1e-10)
	require.InDelta(t, math.Sqrt(expected), s.Std(), 1e-10)
}

func TestMinMaxMedian(t *testing.T) {
	s := New([]float64{3, 1, 4, 1, 5, 9, 2, 6}, 1)

	require.Equal(t, 1.0, s.Min())
	require.Equal(t, 9.0, s.Max())
	require.Equal(t, 3.5, s.Median())

	odd := New([]float64{5, 1, 3}, 1)
	require.Equal(t, 3.0, odd.Median())

	empty := New(nil, 1)
	require.True(t, math.IsNaN(empty.Min()))
	require.True(t, math.IsNaN(empty.Max()))
	require.True(t, math.IsNaN(empty.Median()))
}

func TestSlice(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5}, 0.1)

	sub := s.Slice(1, 4)
	require.Equal(t, []float64{2, 3, 4}, sub.Values)
	require.InDeltaSlice(t, []float64{0.1, 0.2, 0.3}, sub.Times, 1e-12)

	require.Equal(t, 5, s.Slice(-3, 99).Len())
	require.Equal(t, 0, s.Slice(4, 2).Len())
}

func TestSingleValueStatistics(t *testing.T) {
	s := New([]float64{4}, 1)
	require.Equal(t, 0.0, s.Variance())
	require.Equal(t, 0.0, s.Std())
	require.Equal(t, 4.0, s.Median())
	require.Equal(t, 4.0, s.Min())
}

func TestCopyIsIndependent(t *testing.T) {
	s := New([]float64{1, 2, 3}, 1)
	c := s.Copy()
	c.Values[0] = 100
	c.Times[0] = 100

	require.Equal(t, 1.0, s.Values[0])
	require.Equal(t, 0.0, s.Times[0])
}

package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goharmonic/timeseries"
)

func ar1(n int, phi float64) []float64 {
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + (float64(i%10)-5)/10
	}
	return values
}

func TestACF(t *testing.T) {
	acf := ACF(timeseries.New(ar1(100, 0.8), 1), 10)
	require.Len(t, acf, 11)

	assert.InDelta(t, 1.0, acf[0], 1e-10)
	// Strong positive autocorrelation at lag 1
	assert.Greater(t, acf[1], 0.5)
	for k, v := range acf {
		assert.LessOrEqual(t, math.Abs(v), 1.0+1e-12, "lag %d", k)
	}
}

func TestACFEdgeCases(t *testing.T) {
	assert.Nil(t, ACF(timeseries.New([]float64{3, 3, 3, 3}, 1), 2), "constant series")

	// maxLag is clipped to n-1
	acf := ACF(timeseries.New([]float64{1, 2, 3}, 1), 10)
	assert.Len(t, acf, 3)
}

func TestLjungBox(t *testing.T) {
	n := 100
	alternating := make([]float64, n)
	for i := range alternating {
		alternating[i] = float64(i%7-3) / 3
	}

	result := LjungBox(timeseries.New(alternating, 1), 10, 0)
	require.NotNil(t, result)
	assert.Equal(t, 10, result.Lags)
	assert.Equal(t, 10, result.DOF)
	assert.GreaterOrEqual(t, result.PValue, 0.0)
	assert.LessOrEqual(t, result.PValue, 1.0)

	autocorrelated := LjungBox(timeseries.New(ar1(n, 0.9), 1), 10, 0)
	require.NotNil(t, autocorrelated)
	assert.Less(t, autocorrelated.PValue, 0.01)
}

func TestLjungBoxFitDF(t *testing.T) {
	series := timeseries.New(ar1(50, 0.5), 1)

	assert.Equal(t, 6, LjungBox(series, 10, 4).DOF)
	// Degrees of freedom never drop below one
	assert.Equal(t, 1, LjungBox(series, 10, 30).DOF)
}

func TestLjungBoxShortSeries(t *testing.T) {
	assert.Nil(t, LjungBox(timeseries.New([]float64{1, 2, 3}, 1), 10, 0))
	assert.Nil(t, BoxPierce(timeseries.New([]float64{1, 2, 3}, 1), 10, 0))
}

func TestBoxPierce(t *testing.T) {
	series := timeseries.New(ar1(100, 0.8), 1)

	bp := BoxPierce(series, 10, 0)
	lb := LjungBox(series, 10, 0)
	require.NotNil(t, bp)
	require.NotNil(t, lb)

	// Ljung-Box weights each lag by (n+2)/(n-k) > 1
	assert.Less(t, bp.Statistic, lb.Statistic)
	assert.Equal(t, 10, bp.DOF)
}

func TestChiSquaredSurvival(t *testing.T) {
	tests := []struct {
		x        float64
		k        int
		expected float64
	}{
		{3.841459, 1, 0.05},
		{5.991465, 2, 0.05},
		{7.814728, 3, 0.05},
		{0, 4, 1},
		{-1, 4, 1},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, chiSquaredSurvival(tt.x, tt.k), 1e-5, "x=%g k=%d", tt.x, tt.k)
	}
}

func TestDurbinWatson(t *testing.T) {
	tests := []struct {
		name      string
		residuals []float64
		expected  float64
	}{
		{
			name:      "negative autocorrelation",
			residuals: []float64{1, -1, 1, -1, 1, -1, 1, -1},
			expected:  3.5, // 7 jumps of 2, squared, over 8
		},
		{
			name:      "positive autocorrelation",
			residuals: []float64{1, 1, 1, 1, -1, -1, -1, -1},
			expected:  0.5, // one jump of 2, squared, over 8
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DurbinWatson(tt.residuals)
			require.NotNil(t, result)
			assert.InDelta(t, tt.expected, result.Statistic, 1e-12)
		})
	}

	assert.Nil(t, DurbinWatson([]float64{1}))
	assert.Nil(t, DurbinWatson([]float64{0, 0, 0}))
}

func TestKPSS(t *testing.T) {
	alternating := make([]float64, 100)
	for i := range alternating {
		alternating[i] = 1 - 2*float64(i%2)
	}
	stationary := KPSS(alternating, 0)
	require.NotNil(t, stationary)
	assert.Equal(t, 12, stationary.Lags)
	assert.Less(t, stationary.Statistic, 0.347)
	assert.True(t, stationary.IsStationary)

	trend := make([]float64, 200)
	for i := range trend {
		trend[i] = float64(i)
	}
	drifting := KPSS(trend, 0)
	require.NotNil(t, drifting)
	assert.Greater(t, drifting.Statistic, 0.739)
	assert.Equal(t, 0.01, drifting.PValue)
	assert.False(t, drifting.IsStationary)

	assert.Nil(t, KPSS([]float64{1, 2, 3}, 0))
}

func TestKPSSPValue(t *testing.T) {
	assert.Equal(t, 0.10, kpssPValue(0.2))
	assert.InDelta(t, 0.075, kpssPValue(0.405), 1e-12)
	assert.InDelta(t, 0.025, kpssPValue(0.574), 1e-12)
	assert.Equal(t, 0.01, kpssPValue(1.5))
}

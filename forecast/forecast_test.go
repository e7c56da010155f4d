package forecast

import (
	"bytes"
	"context"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goharmonic/basis"
	"github.com/sartorproj/goharmonic/errs"
	"github.com/sartorproj/goharmonic/regression"
)

const (
	testN  = 128
	testDt = 1.0 / testN
)

func harmonicData(t *testing.T) (*basis.Design, []float64) {
	t.Helper()
	rng := rand.New(rand.NewPCG(3, 4))
	times := make([]float64, testN)
	y := make([]float64, testN)
	for i := range y {
		times[i] = float64(i) * testDt
		y[i] = 1 + 2*math.Sin(2*math.Pi*4*times[i]) + 0.3*rng.NormFloat64()
	}
	d, err := basis.Build(basis.Harmonic([]float64{4}), times)
	require.NoError(t, err)
	return d, y
}

func meanModel(t *testing.T) *regression.MeanModel {
	t.Helper()
	d, y := harmonicData(t)
	m, err := regression.FitMean(d, y)
	require.NoError(t, err)
	return m
}

func quantileModel(t *testing.T) *regression.QuantileModel {
	t.Helper()
	d, y := harmonicData(t)
	opts := regression.QuantileOptions{Tau: 0.75, Method: regression.SEBoot, Replicates: 50, Seed: 1}
	m, err := regression.FitQuantile(context.Background(), d, y, opts)
	require.NoError(t, err)
	return m
}

func assertOrdered(t *testing.T, fc *Forecast) {
	t.Helper()
	for _, p := range fc.Points {
		assert.LessOrEqual(t, p.Lower, p.Estimate, "index %d", p.Index)
		assert.LessOrEqual(t, p.Estimate, p.Upper, "index %d", p.Index)
	}
}

func TestPredictMean(t *testing.T) {
	m := meanModel(t)

	fc, err := Predict(m, Request{StartIndex: testN, Horizon: 10, Dt: testDt, Level: 0.95})
	require.NoError(t, err)

	require.Len(t, fc.Points, 10)
	assert.Equal(t, Prediction, fc.Interval)
	assert.Equal(t, regression.KindMean, fc.Kind)
	assert.False(t, fc.Expanded)
	assertOrdered(t, fc)

	first := fc.Points[0]
	assert.Equal(t, testN, first.Index)
	assert.InDelta(t, 1.0, first.Time, 1e-12)

	// The signal is periodic with period 1/4 s, so time 1.0 matches time 0.
	assert.InDelta(t, m.FittedValues()[0], first.Estimate, 1e-9)

	// A prediction interval is at least as wide as the residual spread alone.
	half := (first.Upper - first.Lower) / 2
	assert.Greater(t, half, 1.9*m.Sigma)
}

func TestPredictQuantile(t *testing.T) {
	m := quantileModel(t)

	fc, err := Predict(m, Request{StartIndex: testN, Horizon: 8, Dt: testDt, Level: 0.9})
	require.NoError(t, err)

	require.Len(t, fc.Points, 8)
	assert.Equal(t, Confidence, fc.Interval)
	assertOrdered(t, fc)
	for _, p := range fc.Points {
		assert.Greater(t, p.StdErr, 0.0)
		assert.InDelta(t, p.Upper-p.Estimate, p.Estimate-p.Lower, 1e-9)
	}
}

func TestPredictWiderLevelWiderInterval(t *testing.T) {
	m := meanModel(t)

	narrow, err := Predict(m, Request{StartIndex: testN, Horizon: 3, Dt: testDt, Level: 0.8})
	require.NoError(t, err)
	wide, err := Predict(m, Request{StartIndex: testN, Horizon: 3, Dt: testDt, Level: 0.99})
	require.NoError(t, err)

	for i := range narrow.Points {
		assert.Less(t, narrow.Points[i].Upper-narrow.Points[i].Lower, wide.Points[i].Upper-wide.Points[i].Lower)
		assert.Equal(t, narrow.Points[i].Estimate, wide.Points[i].Estimate)
	}
}

func TestPredictExpandsShortHorizon(t *testing.T) {
	// 100 samples, quadratic basis, horizon 1
	xs := make([]float64, 100)
	y := make([]float64, 100)
	rng := rand.New(rand.NewPCG(8, 8))
	for i := range xs {
		xs[i] = float64(i)
		y[i] = 0.5 + 0.1*xs[i] - 0.002*xs[i]*xs[i] + rng.NormFloat64()
	}
	d, err := basis.Build(basis.Polynomial(2), xs)
	require.NoError(t, err)
	m, err := regression.FitMean(d, y)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	fc, err := Predict(m, Request{StartIndex: 100, Horizon: 1, Dt: 1, Level: 0.95, Logger: &logger})
	require.NoError(t, err)

	assert.True(t, fc.Expanded)
	assert.Equal(t, 1, fc.Requested)
	require.Len(t, fc.Points, 3)
	assert.Equal(t, []int{100, 101, 102}, []int{fc.Points[0].Index, fc.Points[1].Index, fc.Points[2].Index})
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"horizon":3`)
	assertOrdered(t, fc)
}

func TestPredictHarmonicHorizonRule(t *testing.T) {
	// One harmonic has degree 1, so a horizon of 1 becomes 2.
	fc, err := Predict(meanModel(t), Request{StartIndex: testN, Horizon: 1, Dt: testDt, Level: 0.95})
	require.NoError(t, err)
	assert.True(t, fc.Expanded)
	assert.Len(t, fc.Points, 2)

	fc, err = Predict(meanModel(t), Request{StartIndex: testN, Horizon: 2, Dt: testDt, Level: 0.95})
	require.NoError(t, err)
	assert.False(t, fc.Expanded)
	assert.Len(t, fc.Points, 2)
}

func TestPredictErrors(t *testing.T) {
	m := meanModel(t)

	tests := []struct {
		name string
		req  Request
	}{
		{"zero horizon", Request{StartIndex: testN, Horizon: 0, Dt: testDt, Level: 0.95}},
		{"level above one", Request{StartIndex: testN, Horizon: 5, Dt: testDt, Level: 1.5}},
		{"zero level", Request{StartIndex: testN, Horizon: 5, Dt: testDt, Level: 0}},
		{"zero interval", Request{StartIndex: testN, Horizon: 5, Dt: 0, Level: 0.95}},
		{"start inside sample", Request{StartIndex: testN - 1, Horizon: 5, Dt: testDt, Level: 0.95}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Predict(m, tt.req)
			require.ErrorIs(t, err, errs.ErrConfiguration)
		})
	}

	_, err := Predict(nil, Request{Horizon: 1, Dt: 1, Level: 0.5})
	require.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestForecastEstimates(t *testing.T) {
	fc := &Forecast{Points: []Point{{Estimate: 1}, {Estimate: 2.5}}}
	assert.Equal(t, []float64{1, 2.5}, fc.Estimates())
}

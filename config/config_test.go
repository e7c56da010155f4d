package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goharmonic/errs"
)

func TestDefault(t *testing.T) {
	c := Default()

	require.NoError(t, c.Validate())
	assert.Equal(t, ModeHarmonic, c.Mode)
	assert.Equal(t, 1024, c.Signal.Samples)
	assert.InDelta(t, 1.0/1024, c.Signal.Interval, 1e-15)
	assert.Equal(t, "trig", c.Signal.Transform)
	require.NotNil(t, c.Signal.NoiseStdDev)
	assert.Equal(t, 1.0, *c.Signal.NoiseStdDev)
	assert.Nil(t, c.Signal.NoiseSeed)
	assert.Equal(t, 0.05, c.Selection.Threshold)
	assert.Equal(t, 0.75, c.Regression.Quantile)
	assert.Equal(t, 0.95, c.Regression.Level)
	assert.Equal(t, "boot", c.Regression.SEMethod)
	assert.Equal(t, 200, c.Regression.Replicates)
	assert.Equal(t, 20, c.Forecast.Horizon)
	assert.Equal(t, "info", c.Logging.Level)
}

func TestLoadHarmonic(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "harmonic.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []float64{10, 20, 25}, c.Signal.Frequencies)
	assert.Equal(t, []float64{1, -1, 1}, c.Signal.CosAmplitudes)
	require.NotNil(t, c.Signal.NoiseSeed)
	assert.Equal(t, uint64(2024), *c.Signal.NoiseSeed)
	assert.Equal(t, 2, c.Polynomial.Degree, "untouched sections get defaults")
}

func TestLoadPolynomial(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "polynomial.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ModePolynomial, c.Mode)
	assert.Equal(t, 100, c.Signal.Samples)
	assert.Equal(t, 1.0, c.Signal.Interval)
	assert.Equal(t, "iid", c.Regression.SEMethod)
	assert.Equal(t, 1, c.Forecast.Horizon)
	assert.Empty(t, c.Signal.Frequencies)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		message string
	}{
		{
			name:    "quantile outside unit interval",
			yaml:    "regression: {quantile: 1.2, se_method: boot}",
			message: "regression.quantile must be less than 1",
		},
		{
			name:    "missing se_method",
			yaml:    "regression: {quantile: 0.5}",
			message: "regression.se_method is required",
		},
		{
			name:    "unknown se_method",
			yaml:    "regression: {se_method: nid}",
			message: "regression.se_method must be one of: boot, iid",
		},
		{
			name:    "threshold above one",
			yaml:    "selection: {threshold: 2}\nregression: {se_method: boot}",
			message: "selection.threshold must be less than 1",
		},
		{
			name:    "too few replicates",
			yaml:    "regression: {se_method: boot, replicates: 10}",
			message: "regression.replicates must be greater than or equal to 50",
		},
		{
			name:    "negative horizon",
			yaml:    "forecast: {horizon: -3}\nregression: {se_method: boot}",
			message: "forecast.horizon must be greater than 0",
		},
		{
			name:    "mismatched component lists",
			yaml:    "signal: {frequencies: [1, 2], sin_amplitudes: [1], cos_amplitudes: [1, 2]}\nregression: {se_method: boot}",
			message: "2 frequencies, 1 sin amplitudes",
		},
		{
			name:    "unknown key",
			yaml:    "regression: {se_method: boot, tau: 0.5}",
			message: "field tau not found",
		},
		{
			name:    "csv without path",
			yaml:    "signal: {csv: {value_column: y}}\nregression: {se_method: boot}",
			message: "signal.csv.path is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.ErrorIs(t, err, errs.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestParseKeepsExplicitZeroNoise(t *testing.T) {
	c, err := Parse([]byte("signal: {noise_stddev: 0}\nregression: {se_method: iid}"))
	require.NoError(t, err)
	require.NotNil(t, c.Signal.NoiseStdDev)
	assert.Zero(t, *c.Signal.NoiseStdDev)
}

func TestParseCSVDefaults(t *testing.T) {
	c, err := Parse([]byte("signal: {csv: {path: data.csv}}\nregression: {se_method: boot}"))
	require.NoError(t, err)
	require.NotNil(t, c.Signal.CSV)
	assert.Equal(t, "y", c.Signal.CSV.ValueColumn)
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("HARMONIC_SE_METHOD", "iid")
	t.Setenv("HARMONIC_NOISE_SEED", "99")
	t.Setenv("HARMONIC_LOG_LEVEL", "debug")

	c, err := LoadWithEnv(filepath.Join("testdata", "harmonic.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "iid", c.Regression.SEMethod)
	assert.Equal(t, uint64(99), *c.Signal.NoiseSeed)
	assert.Equal(t, "debug", c.Logging.Level)

	t.Setenv("HARMONIC_NOISE_SEED", "minus one")
	_, err = LoadWithEnv(filepath.Join("testdata", "harmonic.yaml"))
	require.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFingerprint(t *testing.T) {
	a := Default()
	b := Default()
	require.Len(t, a.Fingerprint(), 16)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Regression.Quantile = 0.9
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestBootstrapSeed(t *testing.T) {
	c := Default()
	_, ok := c.BootstrapSeed()
	assert.False(t, ok)

	noise := uint64(5)
	c.Signal.NoiseSeed = &noise
	seed, ok := c.BootstrapSeed()
	assert.True(t, ok)
	assert.Equal(t, uint64(5), seed)

	boot := uint64(11)
	c.Regression.Seed = &boot
	seed, _ = c.BootstrapSeed()
	assert.Equal(t, uint64(11), seed)
}

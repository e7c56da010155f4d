package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	"github.com/sartorproj/goharmonic/basis"
	"github.com/sartorproj/goharmonic/config"
	"github.com/sartorproj/goharmonic/errs"
	"github.com/sartorproj/goharmonic/forecast"
	"github.com/sartorproj/goharmonic/metrics"
	"github.com/sartorproj/goharmonic/regression"
	"github.com/sartorproj/goharmonic/spectrum"
	"github.com/sartorproj/goharmonic/synth"
	"github.com/sartorproj/goharmonic/timeseries"
)

// Stage names used in logs and metrics.
const (
	StageValidate    = "validate"
	StageSignal      = "signal"
	StageSpectrum    = "spectrum"
	StageSelect      = "select"
	StageDesign      = "design"
	StageFitMean     = "fit_mean"
	StageFitQuantile = "fit_quantile"
	StageForecast    = "forecast"
)

// Result is everything a run produced.
type Result struct {
	Config           config.Config             `json:"config"`
	Fingerprint      string                    `json:"fingerprint"`
	BootstrapSeed    uint64                    `json:"bootstrap_seed"`
	Interval         float64                   `json:"interval"`
	Series           *timeseries.Series        `json:"series"`
	Spectrum         []spectrum.Bin            `json:"spectrum,omitempty"`
	Selected         []spectrum.Harmonic       `json:"selected,omitempty"`
	Basis            basis.Basis               `json:"basis"`
	Formula          string                    `json:"formula"`
	Mean             *regression.MeanModel     `json:"mean"`
	Quantile         *regression.QuantileModel `json:"quantile"`
	MeanForecast     *forecast.Forecast        `json:"mean_forecast"`
	QuantileForecast *forecast.Forecast        `json:"quantile_forecast"`
	Elapsed          time.Duration             `json:"elapsed_ns"`
}

type runner struct {
	cfg     config.Config
	log     zerolog.Logger
	metrics *metrics.Recorder
	series  *timeseries.Series
	noise   synth.NoiseSource
}

func newRunner(cfg config.Config, opts []Option) *runner {
	r := &runner{cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates cfg, then obtains the signal, selects harmonics (harmonic
// mode) or builds the polynomial basis (polynomial mode), fits the mean and
// quantile models and forecasts with both.
//
// A run is all or nothing: on failure it returns nil and one error that wraps
// an errs sentinel, prefixed with the failing stage. Configuration problems
// are reported before any stage runs.
func Run(ctx context.Context, cfg config.Config, opts ...Option) (res *Result, err error) {
	r := newRunner(cfg, opts)

	fingerprint := cfg.Fingerprint()
	r.log = r.log.With().Str("run", fingerprint).Logger()
	start := time.Now()
	defer func() {
		r.metrics.RecordRun(err)
		if err != nil {
			r.log.Error().Err(err).Str("class", errs.Name(err)).Msg("run failed")
		}
	}()

	var method regression.SEMethod
	var transform synth.Mode
	err = r.stage(StageValidate, func() error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		var err error
		if method, err = regression.ParseSEMethod(cfg.Regression.SEMethod); err != nil {
			return err
		}
		transform, err = synth.ParseMode(cfg.Signal.Transform)
		return err
	})
	if err != nil {
		return nil, err
	}

	res = &Result{Config: cfg, Fingerprint: fingerprint}

	if err := r.stage(StageSignal, func() error {
		var err error
		res.Series, res.Interval, err = r.signal(transform)
		return err
	}); err != nil {
		return nil, err
	}

	// The design is evaluated on time relative to the first sample so that
	// forecast index i lands at i*dt.
	n := res.Series.Len()
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i) * res.Interval
	}

	switch cfg.Mode {
	case config.ModePolynomial:
		res.Basis = basis.Polynomial(cfg.Polynomial.Degree)
	default:
		if err := r.stage(StageSpectrum, func() error {
			var err error
			res.Spectrum, err = spectrum.Periodogram(res.Series.Values)
			return err
		}); err != nil {
			return nil, err
		}
		if err := r.stage(StageSelect, func() error {
			var err error
			res.Selected, err = spectrum.Select(res.Spectrum, cfg.Selection.Threshold, res.Interval)
			return err
		}); err != nil {
			return nil, err
		}
		r.metrics.RecordSelectedHarmonics(len(res.Selected))
		r.log.Info().
			Floats64("frequencies", spectrum.Frequencies(res.Selected)).
			Int("count", len(res.Selected)).
			Msg("selected harmonics")
		res.Basis = basis.Harmonic(spectrum.Frequencies(res.Selected))
	}
	res.Formula = res.Basis.String()

	var design *basis.Design
	if err := r.stage(StageDesign, func() error {
		var err error
		design, err = basis.Build(res.Basis, x)
		return err
	}); err != nil {
		return nil, err
	}

	seed, ok := cfg.BootstrapSeed()
	if !ok {
		seed = rand.Uint64()
	}
	res.BootstrapSeed = seed

	res.Mean, res.Quantile, err = r.fit(ctx, design, res.Series.Values, method, seed)
	if err != nil {
		return nil, err
	}

	if err := r.stage(StageForecast, func() error {
		req := forecast.Request{
			StartIndex: n,
			Horizon:    cfg.Forecast.Horizon,
			Dt:         res.Interval,
			Level:      cfg.Regression.Level,
			Logger:     &r.log,
		}
		var err error
		if res.MeanForecast, err = forecast.Predict(res.Mean, req); err != nil {
			return err
		}
		res.QuantileForecast, err = forecast.Predict(res.Quantile, req)
		return err
	}); err != nil {
		return nil, err
	}

	res.Elapsed = time.Since(start)
	r.log.Info().
		Str("formula", res.Formula).
		Float64("r_squared", res.Mean.RSquared).
		Dur("elapsed", res.Elapsed).
		Msg("run complete")
	return res, nil
}

// Fit fits the mean and quantile models on the same design using the
// regression settings of cfg. Both fits must succeed.
func Fit(ctx context.Context, design *basis.Design, y []float64, cfg config.Config, seed uint64, opts ...Option) (*regression.MeanModel, *regression.QuantileModel, error) {
	r := newRunner(cfg, opts)

	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	method, err := regression.ParseSEMethod(cfg.Regression.SEMethod)
	if err != nil {
		return nil, nil, err
	}
	return r.fit(ctx, design, y, method, seed)
}

func (r *runner) fit(ctx context.Context, design *basis.Design, y []float64, method regression.SEMethod, seed uint64) (*regression.MeanModel, *regression.QuantileModel, error) {
	var mean *regression.MeanModel
	if err := r.stage(StageFitMean, func() error {
		var err error
		mean, err = regression.FitMean(design, y)
		return err
	}); err != nil {
		return nil, nil, err
	}

	var quantile *regression.QuantileModel
	if err := r.stage(StageFitQuantile, func() error {
		var err error
		quantile, err = regression.FitQuantile(ctx, design, y, regression.QuantileOptions{
			Tau:        r.cfg.Regression.Quantile,
			Level:      r.cfg.Regression.Level,
			Method:     method,
			Replicates: r.cfg.Regression.Replicates,
			Seed:       seed,
			Workers:    r.cfg.Regression.Workers,
		})
		return err
	}); err != nil {
		return nil, nil, err
	}
	if method == regression.SEBoot {
		r.metrics.RecordBootstrapResamples(quantile.Replicates)
	}
	return mean, quantile, nil
}

// LoadSignal returns the series a run with cfg would fit, with its sampling
// interval: the WithSeries series, the configured CSV file, or a freshly
// generated signal. cfg is not validated.
func LoadSignal(cfg config.Config, opts ...Option) (*timeseries.Series, float64, error) {
	transform, err := synth.ParseMode(cfg.Signal.Transform)
	if err != nil {
		return nil, 0, err
	}
	return newRunner(cfg, opts).signal(transform)
}

// signal returns the series to fit and its sampling interval.
func (r *runner) signal(transform synth.Mode) (*timeseries.Series, float64, error) {
	s := r.cfg.Signal

	switch {
	case r.series != nil:
		dt, err := r.series.Interval()
		if err != nil {
			return nil, 0, err
		}
		return r.series.Copy(), dt, nil

	case s.CSV != nil:
		opts := timeseries.DefaultCSVOptions()
		opts.TimeColumn = s.CSV.TimeColumn
		opts.ValueColumn = s.CSV.ValueColumn
		opts.Interval = s.Interval
		series, err := timeseries.LoadCSV(s.CSV.Path, opts)
		if err != nil {
			return nil, 0, err
		}
		dt, err := series.Interval()
		if err != nil {
			return nil, 0, err
		}
		r.log.Debug().Str("path", s.CSV.Path).Int("samples", series.Len()).Msg("loaded series")
		return series, dt, nil
	}

	components, err := synth.NewComponents(s.Frequencies, s.SinAmplitudes, s.CosAmplitudes)
	if err != nil {
		return nil, 0, err
	}

	genOpts := []synth.Option{synth.WithMode(transform), synth.WithTrend(s.Trend)}
	if s.NoiseStdDev != nil {
		genOpts = append(genOpts, synth.WithNoiseStdDev(*s.NoiseStdDev))
	}
	switch {
	case r.noise != nil:
		genOpts = append(genOpts, synth.WithNoise(r.noise))
	case s.NoiseSeed != nil:
		genOpts = append(genOpts, synth.WithNoise(synth.NewNoise(*s.NoiseSeed)))
	}

	gen, err := synth.New(components, genOpts...)
	if err != nil {
		return nil, 0, err
	}
	series, err := gen.Generate(s.Samples, s.Interval)
	if err != nil {
		return nil, 0, err
	}
	return series, s.Interval, nil
}

// stage runs fn, timing it and labelling any error with the stage name.
func (r *runner) stage(name string, fn func() error) error {
	done := r.metrics.StartStage(name)
	err := fn()
	done(err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	r.log.Debug().Str("stage", name).Msg("stage complete")
	return nil
}

// Package goharmonic fits harmonic and polynomial regression models to
// evenly sampled signals and forecasts them with both a least squares mean
// model and a quantile model.
//
// A run walks a fixed pipeline: a synthetic or CSV signal is transformed to
// the frequency domain, the dominant harmonics are selected from the
// periodogram, a sine basis is built from them and fitted by ordinary least
// squares and by quantile regression. Forecasts carry prediction intervals
// for the mean model and confidence intervals for the quantile model.
//
// # Quick Start
//
// Run the pipeline with the built-in defaults:
//
//	cfg := config.Default()
//	res, err := pipeline.Run(ctx, cfg, pipeline.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	fmt.Println(res.Formula, res.MeanForecast.Estimates())
//
// Fit a basis directly:
//
//	design, _ := basis.Build(basis.Harmonic([]float64{10, 20}), x)
//	mean, _ := regression.FitMean(design, y)
//	q, _ := regression.FitQuantile(ctx, design, y, regression.DefaultQuantileOptions())
//
// # Packages
//
//   - synth: Signal generation from harmonic components, trend and noise
//   - spectrum: Periodogram and dominant harmonic selection
//   - basis: Regression terms and design matrices
//   - regression: Least squares and quantile regression with standard errors
//   - forecast: Point forecasts with prediction and confidence intervals
//   - stats: Residual diagnostics (ACF, Ljung-Box, Durbin-Watson)
//   - pipeline: End to end runs with logging and metrics
//   - config: YAML configuration, defaults and validation
//   - timeseries: Series data structures and CSV input/output
//
// # References
//
//   - Koenker, R. (2005). Quantile Regression
//   - Portnoy, S., & Koenker, R. (1997). The Gaussian Hare and the Laplacian Tortoise
package goharmonic

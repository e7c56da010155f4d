// Package regression fits linear models of a response on a basis design.
//
// Two estimators share the Model interface:
//
//   - FitMean: ordinary least squares through a QR factorization, with
//     residual standard error, R-squared, the overall F test, information
//     criteria and residual autocorrelation diagnostics.
//   - FitQuantile: linear quantile regression solved with a Frisch-Newton
//     interior point method, with standard errors from an (x, y) pair
//     bootstrap (SEBoot) or from the i.i.d. sparsity estimate (SEIID).
//
// # Basic Usage
//
//	design, _ := basis.Build(basis.Harmonic(freqs), series.Times)
//
//	mean, err := regression.FitMean(design, series.Values)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("sigma=%.4f R2=%.4f\n", mean.Sigma, mean.RSquared)
//
//	opts := regression.DefaultQuantileOptions()
//	opts.Tau = 0.75
//	opts.Seed = 42
//	q, err := regression.FitQuantile(ctx, design, series.Values, opts)
//
// Both fits reject a design without full column rank with
// errs.ErrSingularDesign before estimating anything.
//
// # Bootstrap
//
// Bootstrap refits run concurrently on Workers goroutines. Every resample
// owns a PCG stream derived from Seed and its index, so the covariance is
// reproducible for a given seed whatever the worker count.
package regression

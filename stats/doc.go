// Package stats provides residual diagnostics for fitted regression models.
//
// A harmonic model that captured every periodic component leaves residuals
// close to white noise. The tests here quantify what is left over:
//
//	// Ljung-Box test for autocorrelation, 10 lags, p-1 fitted non-constant terms
//	lb := stats.LjungBox(timeseries.New(residuals, dt), 10, p-1)
//	if lb != nil && lb.PValue > 0.05 {
//	    // Residuals look like white noise
//	}
//
//	// Box-Pierce test
//	bp := stats.BoxPierce(timeseries.New(residuals, dt), 10, p-1)
//
//	// Durbin-Watson statistic for first-order autocorrelation
//	dw := stats.DurbinWatson(residuals)
//
//	// KPSS test for a drifting residual level
//	kpss := stats.KPSS(residuals, 0)
//
// The tests return nil when the residual series is too short or constant.
package stats

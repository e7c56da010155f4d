// Package forecast extends fitted regression models beyond the observed
// samples and attaches uncertainty intervals.
//
// # Basic Usage
//
//	fc, err := forecast.Predict(model, forecast.Request{
//	    StartIndex: series.Len(),
//	    Horizon:    20,
//	    Dt:         dt,
//	    Level:      0.95,
//	    Logger:     &logger,
//	})
//	for _, p := range fc.Points {
//	    fmt.Printf("%6d %8.4f [%8.4f, %8.4f]\n", p.Index, p.Estimate, p.Lower, p.Upper)
//	}
//
// Mean models produce prediction intervals, quantile models produce
// confidence intervals for the fitted quantile. Both are symmetric around the
// estimate, so Lower <= Estimate <= Upper always holds.
//
// The horizon must exceed the degree of the model basis (the number of
// harmonics, or the polynomial degree). Shorter horizons are expanded to
// degree+1, logged at warn level and flagged with Forecast.Expanded.
package forecast

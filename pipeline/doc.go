// Package pipeline runs the harmonic regression pipeline end to end.
//
// A run goes through these stages:
//
//	validate -> signal -> spectrum -> select -> design -> fit_mean -> fit_quantile -> forecast
//
// In polynomial mode spectrum and select are skipped and the basis is the raw
// polynomial of the configured degree.
//
//	cfg, err := config.Load("run.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	res, err := pipeline.Run(ctx, *cfg,
//	    pipeline.WithLogger(logger),
//	    pipeline.WithMetrics(metrics.New(prometheus.NewRegistry())),
//	)
//	if errors.Is(err, errs.ErrSingularDesign) {
//	    // two selected frequencies produced identical columns
//	}
//
// Runs share no state, so independent configurations can run concurrently.
package pipeline

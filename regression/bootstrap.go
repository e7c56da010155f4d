package regression

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/goharmonic/errs"
)

// bootstrapCovariance refits the quantile regression on opts.Replicates
// (x, y) pair resamples and returns the sample covariance of the estimates
// together with the number of usable resamples.
//
// Resample i draws from its own PCG stream keyed by (Seed, i), so the result
// does not depend on the number of workers. Resamples whose design is singular
// or whose solve fails are dropped; fewer than half usable is an error.
func bootstrapCovariance(ctx context.Context, X *mat.Dense, y []float64, opts QuantileOptions) (*mat.SymDense, int, error) {
	n, p := X.Dims()

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	draws := make([][]float64, opts.Replicates)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range draws {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rng := rand.New(rand.NewPCG(opts.Seed, uint64(i)))
			xb := mat.NewDense(n, p, nil)
			yb := make([]float64, n)
			for row := 0; row < n; row++ {
				k := rng.IntN(n)
				xb.SetRow(row, X.RawRowView(k))
				yb[row] = y[k]
			}

			sol, err := solveQuantile(xb, yb, opts.Tau)
			if err != nil {
				return nil
			}
			draws[i] = sol.beta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, fmt.Errorf("bootstrap: %w", err)
	}

	usable := mat.NewDense(opts.Replicates, p, nil)
	count := 0
	for _, beta := range draws {
		if beta != nil {
			usable.SetRow(count, beta)
			count++
		}
	}
	if 2*count < opts.Replicates {
		return nil, count, fmt.Errorf("%w: only %d of %d bootstrap resamples could be refitted",
			errs.ErrNumericalConvergence, count, opts.Replicates)
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, usable.Slice(0, count, 0, p), nil)
	return &cov, count, nil
}

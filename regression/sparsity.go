package regression

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goharmonic/errs"
)

// bandwidthAlpha is the coverage the Hall-Sheather bandwidth targets.
const bandwidthAlpha = 0.05

// hallSheather returns the Hall-Sheather (1988) bandwidth for quantile tau
// and n observations.
func hallSheather(tau float64, n int) float64 {
	x0 := distuv.UnitNormal.Quantile(tau)
	f0 := distuv.UnitNormal.Prob(x0)
	za := distuv.UnitNormal.Quantile(1 - bandwidthAlpha/2)
	return math.Pow(float64(n), -1.0/3) * math.Pow(za, 2.0/3) *
		math.Pow(1.5*f0*f0/(2*x0*x0+1), 1.0/3)
}

// iidCovariance estimates tau (1-tau) s^2 (X'X)^-1 under i.i.d. errors, where
// s is the sparsity 1/f(F^-1(tau)) of the error distribution.
//
// The sparsity is the slope of a median regression of the residuals closest
// to zero, sorted by value, on their rank positions scaled by 1/(n-p).
// Residuals that are numerically zero (the interpolated observations) are
// skipped.
func iidCovariance(resid []float64, tau float64, p int, xtxInv *mat.SymDense) (*mat.SymDense, error) {
	n := len(resid)
	eps := math.Pow(2.220446049250313e-16, 2.0/3)

	zeros := 0
	for _, r := range resid {
		if math.Abs(r) < eps {
			zeros++
		}
	}

	h := max(p+1, int(math.Ceil(float64(n)*hallSheather(tau, n))))
	lo, hi := zeros+1, min(h+zeros+1, n)
	if hi-lo < 2 {
		return nil, fmt.Errorf("%w: %d residuals are too few to estimate the sparsity",
			errs.ErrInsufficientData, n)
	}

	byAbs := make([]int, n)
	for i := range byAbs {
		byAbs[i] = i
	}
	sort.SliceStable(byAbs, func(a, b int) bool {
		return math.Abs(resid[byAbs[a]]) < math.Abs(resid[byAbs[b]])
	})

	m := hi - lo + 1
	ordered := make([]float64, 0, m)
	design := mat.NewDense(m, 2, nil)
	for k := lo; k <= hi; k++ {
		ordered = append(ordered, resid[byAbs[k-1]])
		design.Set(k-lo, 0, 1)
		design.Set(k-lo, 1, float64(k)/float64(n-p))
	}
	sort.Float64s(ordered)

	sol, err := solveQuantile(design, ordered, 0.5)
	if err != nil {
		return nil, err
	}
	sparsity := sol.beta[1]
	if !(sparsity > 0) || math.IsInf(sparsity, 0) {
		return nil, fmt.Errorf("%w: sparsity estimate %g is not positive", errs.ErrNumericalConvergence, sparsity)
	}

	var cov mat.SymDense
	cov.ScaleSym(sparsity*sparsity*tau*(1-tau), xtxInv)
	return &cov, nil
}

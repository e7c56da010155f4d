package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goharmonic/errs"
)

const (
	stepScale   = 0.99995 // fraction of the distance to the boundary taken per step
	maxIPMIter  = 100
	gapTol      = 1e-8
	noBoundStep = 1e20
)

// lpSolution is the outcome of one quantile regression solve.
type lpSolution struct {
	beta       []float64
	iterations int
}

// solveQuantile minimizes sum rho_tau(y_i - x_i'b) with the Frisch-Newton
// primal-dual interior point method applied to the dual problem
//
//	max y'a  subject to  X'a = (1-tau) X'1,  0 <= a <= 1
//
// whose multipliers on the equality constraints are the coefficients.
func solveQuantile(X *mat.Dense, y []float64, tau float64) (*lpSolution, error) {
	n, p := X.Dims()

	var qr mat.QR
	qr.Factorize(X)
	if err := checkRank(&qr, p, nil); err != nil {
		return nil, err
	}

	// Written as min c'x s.t. Ax = b, 0 <= x <= 1 with A = X', c = -y.
	c := make([]float64, n)
	floats.ScaleTo(c, -1, y)

	x := make([]float64, n)
	s := make([]float64, n)
	for i := range x {
		x[i] = 1 - tau
		s[i] = tau
	}
	var b mat.VecDense
	b.MulVec(X.T(), mat.NewVecDense(n, append([]float64(nil), x...)))

	// Dual start from the least squares solution of X d = c.
	var dv mat.VecDense
	if err := qr.SolveVecTo(&dv, false, mat.NewVecDense(n, append([]float64(nil), c...))); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSingularDesign, err)
	}
	d := mat.Col(nil, 0, &dv)

	xd := mulVec(X, d)
	r := make([]float64, n)
	z := make([]float64, n)
	w := make([]float64, n)
	for i := range r {
		r[i] = c[i] - xd[i]
		if r[i] == 0 {
			r[i] = 0.001
		}
		z[i] = math.Max(r[i], 0)
		w[i] = z[i] - r[i]
	}

	bv := mat.Col(nil, 0, &b)
	gap := floats.Dot(c, x) - floats.Dot(d, bv) + floats.Sum(w)

	q := make([]float64, n)
	dx := make([]float64, n)
	ds := make([]float64, n)
	dz := make([]float64, n)
	dw := make([]float64, n)
	tmp := make([]float64, n)

	it := 0
	for ; gap > gapTol*(1+math.Abs(floats.Dot(c, x))); it++ {
		if it == maxIPMIter {
			return nil, fmt.Errorf("%w: interior point solver did not converge in %d iterations (gap %g)",
				errs.ErrNumericalConvergence, maxIPMIter, gap)
		}

		// Affine scaling step.
		for i := range q {
			q[i] = 1 / (z[i]/x[i] + w[i]/s[i])
			r[i] = z[i] - w[i]
		}
		chol, err := normalMatrix(X, q)
		if err != nil {
			return nil, err
		}
		for i := range tmp {
			tmp[i] = q[i] * r[i]
		}
		rhs := mulTransVec(X, tmp)
		dy, err := cholSolve(chol, rhs)
		if err != nil {
			return nil, err
		}
		xdy := mulVec(X, dy)
		for i := range dx {
			dx[i] = q[i] * (xdy[i] - r[i])
			ds[i] = -dx[i]
			dz[i] = -z[i] * (dx[i]/x[i] + 1)
			dw[i] = -w[i] * (ds[i]/s[i] + 1)
		}
		fp := math.Min(stepScale*math.Min(maxStep(x, dx), maxStep(s, ds)), 1)
		fd := math.Min(stepScale*math.Min(maxStep(w, dw), maxStep(z, dz)), 1)

		// Mehrotra corrector when the affine step hits the boundary.
		if math.Min(fp, fd) < 1 {
			mu := floats.Dot(z, x) + floats.Dot(w, s)
			g := 0.0
			for i := range x {
				g += (z[i]+fd*dz[i])*(x[i]+fp*dx[i]) + (w[i]+fd*dw[i])*(s[i]+fp*ds[i])
			}
			mu *= math.Pow(g/mu, 3) / (2 * float64(n))

			dxdz := make([]float64, n)
			dsdw := make([]float64, n)
			xi := make([]float64, n)
			for i := range xi {
				dxdz[i] = dx[i] * dz[i]
				dsdw[i] = ds[i] * dw[i]
				xi[i] = mu * (1/x[i] - 1/s[i])
				tmp[i] = q[i] * (dxdz[i] - dsdw[i] - xi[i])
			}
			floats.Add(rhs, mulTransVec(X, tmp))
			dy, err = cholSolve(chol, rhs)
			if err != nil {
				return nil, err
			}
			xdy = mulVec(X, dy)
			for i := range dx {
				dx[i] = q[i] * (xdy[i] + xi[i] - r[i] - dxdz[i] + dsdw[i])
				ds[i] = -dx[i]
				dz[i] = mu/x[i] - z[i] - z[i]/x[i]*dx[i] - dxdz[i]
				dw[i] = mu/s[i] - w[i] - w[i]/s[i]*ds[i] - dsdw[i]
			}
			fp = math.Min(stepScale*math.Min(maxStep(x, dx), maxStep(s, ds)), 1)
			fd = math.Min(stepScale*math.Min(maxStep(w, dw), maxStep(z, dz)), 1)
		}

		floats.AddScaled(x, fp, dx)
		floats.AddScaled(s, fp, ds)
		floats.AddScaled(d, fd, dy)
		floats.AddScaled(w, fd, dw)
		floats.AddScaled(z, fd, dz)

		gap = floats.Dot(c, x) - floats.Dot(d, bv) + floats.Sum(w)
		if math.IsNaN(gap) || math.IsInf(gap, 0) {
			return nil, fmt.Errorf("%w: duality gap is not finite after %d iterations",
				errs.ErrNumericalConvergence, it+1)
		}
	}

	beta := make([]float64, p)
	floats.ScaleTo(beta, -1, d)
	for _, v := range beta {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite coefficient", errs.ErrNumericalConvergence)
		}
	}
	return &lpSolution{beta: beta, iterations: it}, nil
}

// maxStep returns the largest t with v + t*dv >= 0 over the entries where dv
// is negative.
func maxStep(v, dv []float64) float64 {
	step := noBoundStep
	for i := range v {
		if dv[i] < 0 {
			step = math.Min(step, -v[i]/dv[i])
		}
	}
	return step
}

// normalMatrix factorizes X' diag(q) X.
func normalMatrix(X *mat.Dense, q []float64) (*mat.Cholesky, error) {
	n, p := X.Dims()
	scaled := mat.NewDense(n, p, nil)
	for i := 0; i < n; i++ {
		sq := math.Sqrt(q[i])
		for j := 0; j < p; j++ {
			scaled.Set(i, j, sq*X.At(i, j))
		}
	}

	var aqa mat.SymDense
	aqa.SymOuterK(1, scaled.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&aqa); !ok {
		return nil, fmt.Errorf("%w: normal equations lost positive definiteness", errs.ErrNumericalConvergence)
	}
	return &chol, nil
}

func cholSolve(chol *mat.Cholesky, rhs []float64) ([]float64, error) {
	var dy mat.VecDense
	if err := chol.SolveVecTo(&dy, mat.NewVecDense(len(rhs), rhs)); err != nil {
		if _, ok := err.(mat.Condition); !ok {
			return nil, fmt.Errorf("%w: %v", errs.ErrNumericalConvergence, err)
		}
	}
	return mat.Col(nil, 0, &dy), nil
}

func mulVec(X *mat.Dense, v []float64) []float64 {
	n, _ := X.Dims()
	var out mat.VecDense
	out.MulVec(X, mat.NewVecDense(len(v), v))
	return mat.Col(make([]float64, n), 0, &out)
}

func mulTransVec(X *mat.Dense, v []float64) []float64 {
	_, p := X.Dims()
	var out mat.VecDense
	out.MulVec(X.T(), mat.NewVecDense(len(v), v))
	return mat.Col(make([]float64, p), 0, &out)
}

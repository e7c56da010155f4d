package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goharmonic/basis"
	"github.com/sartorproj/goharmonic/errs"
)

// rankTolerance is the smallest |R_jj| relative to the largest diagonal entry
// of R that still counts as an independent column.
const rankTolerance = 1e-10

// checkDesign validates the shapes of d and y and returns the design dimensions.
func checkDesign(d *basis.Design, y []float64) (n, p int, err error) {
	if d == nil || d.X == nil {
		return 0, 0, fmt.Errorf("%w: nil design", errs.ErrConfiguration)
	}
	n, p = d.Dims()
	if len(y) != n {
		return 0, 0, fmt.Errorf("%w: %d responses for %d design rows", errs.ErrConfiguration, len(y), n)
	}
	if n <= p {
		return 0, 0, fmt.Errorf("%w: %d observations for %d coefficients", errs.ErrInsufficientData, n, p)
	}
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, fmt.Errorf("%w: response %d is not finite", errs.ErrConfiguration, i)
		}
	}
	return n, p, nil
}

// checkRank reports ErrSingularDesign when the factorized matrix has a column
// that is numerically a combination of earlier columns.
func checkRank(qr *mat.QR, p int, labels []string) error {
	var r mat.Dense
	qr.RTo(&r)

	maxDiag := 0.0
	for j := 0; j < p; j++ {
		maxDiag = math.Max(maxDiag, math.Abs(r.At(j, j)))
	}
	if maxDiag == 0 || math.IsNaN(maxDiag) {
		return fmt.Errorf("%w: design matrix is zero", errs.ErrSingularDesign)
	}
	for j := 0; j < p; j++ {
		if math.Abs(r.At(j, j)) <= rankTolerance*maxDiag {
			name := fmt.Sprintf("column %d", j)
			if j < len(labels) {
				name = fmt.Sprintf("%s (column %d)", labels[j], j)
			}
			return fmt.Errorf("%w: %s is linearly dependent on earlier columns", errs.ErrSingularDesign, name)
		}
	}
	return nil
}

// unscaledCovariance returns (X'X)^-1 = R^-1 R^-T from a QR factorization
// of full column rank.
func unscaledCovariance(qr *mat.QR, p int) (*mat.SymDense, error) {
	var r mat.Dense
	qr.RTo(&r)

	upper := mat.NewTriDense(p, mat.Upper, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			upper.SetTri(i, j, r.At(i, j))
		}
	}

	var rinv mat.TriDense
	if err := rinv.InverseTri(upper); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSingularDesign, err)
	}

	var full mat.Dense
	full.Mul(&rinv, rinv.T())
	return symmetrize(&full), nil
}

// symmetrize copies the upper triangle of a square matrix into a SymDense.
func symmetrize(m mat.Matrix) *mat.SymDense {
	p, _ := m.Dims()
	s := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			s.SetSym(i, j, m.At(i, j))
		}
	}
	return s
}

// toRows flattens a symmetric matrix into row slices for serialization.
func toRows(s mat.Symmetric) [][]float64 {
	p := s.SymmetricDim()
	rows := make([][]float64, p)
	for i := range rows {
		rows[i] = make([]float64, p)
		for j := range rows[i] {
			rows[i][j] = s.At(i, j)
		}
	}
	return rows
}

// fromRows rebuilds a scaled symmetric matrix from row slices.
func fromRows(rows [][]float64, scale float64) *mat.SymDense {
	s := mat.NewSymDense(len(rows), nil)
	for i := range rows {
		for j := i; j < len(rows); j++ {
			s.SetSym(i, j, scale*rows[i][j])
		}
	}
	return s
}

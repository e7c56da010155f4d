package regression

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goharmonic/basis"
	"github.com/sartorproj/goharmonic/errs"
)

// MinReplicates is the smallest accepted number of bootstrap resamples.
const MinReplicates = 50

// QuantileOptions configures FitQuantile.
type QuantileOptions struct {
	Tau        float64  // quantile in (0, 1)
	Level      float64  // coefficient bound level in (0, 1); zero means 0.95
	Method     SEMethod // standard error method
	Replicates int      // bootstrap resamples, SEBoot only
	Seed       uint64   // bootstrap seed, SEBoot only
	Workers    int      // concurrent refits; <= 0 means GOMAXPROCS
}

// DefaultQuantileOptions returns median regression with 200 bootstrap
// resamples.
func DefaultQuantileOptions() QuantileOptions {
	return QuantileOptions{
		Tau:        0.5,
		Level:      tableLevel,
		Method:     SEBoot,
		Replicates: 200,
	}
}

// Validate checks the options without fitting anything.
func (o QuantileOptions) Validate() error {
	if !(o.Tau > 0 && o.Tau < 1) {
		return fmt.Errorf("%w: quantile %g outside (0, 1)", errs.ErrConfiguration, o.Tau)
	}
	if o.Level != 0 && !(o.Level > 0 && o.Level < 1) {
		return fmt.Errorf("%w: confidence level %g outside (0, 1)", errs.ErrConfiguration, o.Level)
	}
	switch o.Method {
	case SEBoot:
		if o.Replicates < MinReplicates {
			return fmt.Errorf("%w: %d bootstrap replicates, need at least %d",
				errs.ErrConfiguration, o.Replicates, MinReplicates)
		}
	case SEIID:
	default:
		return fmt.Errorf("%w: unknown standard error method %d", errs.ErrConfiguration, o.Method)
	}
	return nil
}

// QuantileModel is a linear quantile regression fit.
type QuantileModel struct {
	Terms      basis.Basis   `json:"terms"`
	Beta       []float64     `json:"coefficients"`
	Cov        [][]float64   `json:"covariance"`
	Tau        float64       `json:"tau"`
	Level      float64       `json:"level"`
	Method     SEMethod      `json:"se_method"`
	Replicates int           `json:"replicates,omitempty"` // usable resamples
	NObs       int           `json:"n_obs"`
	ResidualDF int           `json:"residual_df"`
	Objective  float64       `json:"objective"` // check loss at the optimum
	Iterations int           `json:"iterations"`
	Table      []Coefficient `json:"table"`

	residuals []float64
}

// FitQuantile fits the tau-th conditional quantile of y on the columns of d
// and estimates the coefficient covariance with opts.Method.
//
// Options are validated before any work is done. A rank-deficient design is
// reported as ErrSingularDesign before the solver runs. Solver or bootstrap
// failures are reported as ErrNumericalConvergence. The context only bounds
// the bootstrap.
func FitQuantile(ctx context.Context, d *basis.Design, y []float64, opts QuantileOptions) (*QuantileModel, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n, p, err := checkDesign(d, y)
	if err != nil {
		return nil, err
	}

	if opts.Level == 0 {
		opts.Level = tableLevel
	}

	var qr mat.QR
	qr.Factorize(d.X)
	if err := checkRank(&qr, p, d.Terms.Labels()); err != nil {
		return nil, err
	}

	sol, err := solveQuantile(d.X, y, opts.Tau)
	if err != nil {
		return nil, err
	}

	m := &QuantileModel{
		Terms:      append(basis.Basis(nil), d.Terms...),
		Beta:       sol.beta,
		Tau:        opts.Tau,
		Level:      opts.Level,
		Method:     opts.Method,
		NObs:       n,
		ResidualDF: n - p,
		Iterations: sol.iterations,
		residuals:  make([]float64, n),
	}
	fitted := mulVec(d.X, sol.beta)
	for i := range y {
		m.residuals[i] = y[i] - fitted[i]
		m.Objective += checkLoss(m.residuals[i], opts.Tau)
	}

	var cov *mat.SymDense
	switch opts.Method {
	case SEBoot:
		cov, m.Replicates, err = bootstrapCovariance(ctx, d.X, y, opts)
	case SEIID:
		var xtxInv *mat.SymDense
		xtxInv, err = unscaledCovariance(&qr, p)
		if err == nil {
			cov, err = iidCovariance(m.residuals, opts.Tau, p, xtxInv)
		}
	}
	if err != nil {
		return nil, err
	}

	m.Cov = toRows(cov)
	stdErr := make([]float64, p)
	for j := range stdErr {
		stdErr[j] = math.Sqrt(m.Cov[j][j])
	}
	m.Table = coefficientTable(m.Terms, m.Beta, stdErr, m.ResidualDF, m.Level)
	return m, nil
}

// checkLoss is the quantile check function rho_tau(u) = u (tau - 1{u < 0}).
func checkLoss(u, tau float64) float64 {
	if u < 0 {
		return u * (tau - 1)
	}
	return u * tau
}

// Kind returns KindQuantile.
func (m *QuantileModel) Kind() ModelKind { return KindQuantile }

// Basis returns the model terms.
func (m *QuantileModel) Basis() basis.Basis { return m.Terms }

// Coefficients returns a copy of the estimates.
func (m *QuantileModel) Coefficients() []float64 {
	return append([]float64(nil), m.Beta...)
}

// Covariance returns the estimated coefficient covariance.
func (m *QuantileModel) Covariance() *mat.SymDense {
	return fromRows(m.Cov, 1)
}

// Observations returns the number of observations used in the fit.
func (m *QuantileModel) Observations() int { return m.NObs }

// Residuals returns the model residuals.
func (m *QuantileModel) Residuals() []float64 {
	return append([]float64(nil), m.residuals...)
}

// Summary returns a summary of the fitted model.
func (m *QuantileModel) Summary() *Summary {
	return &Summary{
		Kind:         KindQuantile,
		Formula:      m.Terms.String(),
		NObs:         m.NObs,
		NParams:      len(m.Beta),
		ResidualDF:   m.ResidualDF,
		Level:        m.Level,
		Coefficients: append([]Coefficient(nil), m.Table...),
		Tau:          m.Tau,
		SEMethod:     m.Method,
		Replicates:   m.Replicates,
		Objective:    m.Objective,
		Iterations:   m.Iterations,
	}
}

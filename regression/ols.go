package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goharmonic/basis"
	"github.com/sartorproj/goharmonic/errs"
	"github.com/sartorproj/goharmonic/stats"
	"github.com/sartorproj/goharmonic/timeseries"
)

// diagnosticLags is the number of residual autocorrelation lags tested.
const diagnosticLags = 10

// MeanModel is an ordinary least squares fit.
type MeanModel struct {
	Terms       basis.Basis   `json:"terms"`
	Beta        []float64     `json:"coefficients"`
	CovUnscaled [][]float64   `json:"cov_unscaled"` // (X'X)^-1
	Sigma       float64       `json:"sigma"`        // residual standard error
	NObs        int           `json:"n_obs"`
	ResidualDF  int           `json:"residual_df"`
	RSquared    float64       `json:"r_squared"`
	AdjRSquared float64       `json:"adj_r_squared"`
	FStatistic  float64       `json:"f_statistic"`
	FPValue     float64       `json:"f_p_value"`
	FDF         [2]int        `json:"f_df"`
	LogLik      float64       `json:"log_likelihood"`
	AIC         float64       `json:"aic"`
	AICc        float64       `json:"aicc"` // corrected for small samples
	BIC         float64       `json:"bic"`
	Table       []Coefficient `json:"table"`

	residuals  []float64
	fittedVals []float64
}

// FitMean fits y on the columns of d by least squares using a QR
// factorization of the design.
//
// Returns ErrConfiguration when the shapes disagree, ErrInsufficientData when
// there are no more observations than coefficients and ErrSingularDesign when
// the design does not have full column rank.
func FitMean(d *basis.Design, y []float64) (*MeanModel, error) {
	n, p, err := checkDesign(d, y)
	if err != nil {
		return nil, err
	}

	var qr mat.QR
	qr.Factorize(d.X)
	if err := checkRank(&qr, p, d.Terms.Labels()); err != nil {
		return nil, err
	}

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrSingularDesign, err)
	}
	cov, err := unscaledCovariance(&qr, p)
	if err != nil {
		return nil, err
	}

	var fitted mat.VecDense
	fitted.MulVec(d.X, &beta)

	m := &MeanModel{
		Terms:       append(basis.Basis(nil), d.Terms...),
		Beta:        mat.Col(nil, 0, &beta),
		CovUnscaled: toRows(cov),
		NObs:        n,
		ResidualDF:  n - p,
		fittedVals:  mat.Col(nil, 0, &fitted),
		residuals:   make([]float64, n),
	}
	for i := range y {
		m.residuals[i] = y[i] - m.fittedVals[i]
	}

	m.goodnessOfFit(y)
	m.calculateIC()
	stdErr := make([]float64, p)
	for j := range stdErr {
		stdErr[j] = m.Sigma * math.Sqrt(m.CovUnscaled[j][j])
	}
	m.Table = coefficientTable(m.Terms, m.Beta, stdErr, m.ResidualDF, tableLevel)
	return m, nil
}

// goodnessOfFit fills sigma, R-squared and the overall F test. With an
// intercept the sums of squares are centred on the mean of y.
func (m *MeanModel) goodnessOfFit(y []float64) {
	n, p := m.NObs, len(m.Beta)
	rss := floats.Dot(m.residuals, m.residuals)

	dfInt := 0
	center := 0.0
	if m.Terms.HasIntercept() {
		dfInt = 1
		center = floats.Sum(y) / float64(n)
	}
	tss := 0.0
	for _, v := range y {
		tss += (v - center) * (v - center)
	}

	rdf := float64(m.ResidualDF)
	m.Sigma = math.Sqrt(rss / rdf)

	if tss > 0 {
		m.RSquared = 1 - rss/tss
		m.AdjRSquared = 1 - (1-m.RSquared)*float64(n-dfInt)/rdf
	}

	// The F test needs at least one non-constant term.
	numDF := p - dfInt
	m.FDF = [2]int{numDF, m.ResidualDF}
	m.FPValue = 1
	if numDF > 0 && rss > 0 {
		m.FStatistic = ((tss - rss) / float64(numDF)) / (rss / rdf)
		f := distuv.F{D1: float64(numDF), D2: rdf}
		m.FPValue = f.Survival(m.FStatistic)
	}
}

// calculateIC calculates the Gaussian log-likelihood, AIC, AICc and BIC. The
// error variance counts as a parameter.
func (m *MeanModel) calculateIC() {
	n := float64(m.NObs)
	k := float64(len(m.Beta) + 1)
	rss := floats.Dot(m.residuals, m.residuals)
	if rss == 0 {
		// undefined for an exact fit
		return
	}

	m.LogLik = -n / 2 * (math.Log(2*math.Pi) + math.Log(rss/n) + 1)
	m.AIC = -2*m.LogLik + 2*k
	if n-k-1 > 0 {
		m.AICc = m.AIC + 2*k*(k+1)/(n-k-1)
	}
	m.BIC = -2*m.LogLik + k*math.Log(n)
}

// Kind returns KindMean.
func (m *MeanModel) Kind() ModelKind { return KindMean }

// Basis returns the model terms.
func (m *MeanModel) Basis() basis.Basis { return m.Terms }

// Coefficients returns a copy of the estimates.
func (m *MeanModel) Coefficients() []float64 {
	return append([]float64(nil), m.Beta...)
}

// Covariance returns sigma^2 (X'X)^-1.
func (m *MeanModel) Covariance() *mat.SymDense {
	return fromRows(m.CovUnscaled, m.Sigma*m.Sigma)
}

// Observations returns the number of observations used in the fit.
func (m *MeanModel) Observations() int { return m.NObs }

// Residuals returns the model residuals.
func (m *MeanModel) Residuals() []float64 {
	return append([]float64(nil), m.residuals...)
}

// FittedValues returns the fitted values.
func (m *MeanModel) FittedValues() []float64 {
	return append([]float64(nil), m.fittedVals...)
}

// Summary returns a summary of the fitted model, including residual
// autocorrelation tests.
func (m *MeanModel) Summary() *Summary {
	resid := timeseries.New(m.Residuals(), 1)
	fitdf := len(m.Beta) - 1

	return &Summary{
		Kind:         KindMean,
		Formula:      m.Terms.String(),
		NObs:         m.NObs,
		NParams:      len(m.Beta),
		ResidualDF:   m.ResidualDF,
		Level:        tableLevel,
		Coefficients: append([]Coefficient(nil), m.Table...),
		Sigma:        m.Sigma,
		RSquared:     m.RSquared,
		AdjRSquared:  m.AdjRSquared,
		FStatistic:   m.FStatistic,
		FPValue:      m.FPValue,
		FDF:          m.FDF,
		LogLik:       m.LogLik,
		AIC:          m.AIC,
		AICc:         m.AICc,
		BIC:          m.BIC,
		LjungBox:     stats.LjungBox(resid, diagnosticLags, fitdf),
		BoxPierce:    stats.BoxPierce(resid, diagnosticLags, fitdf),
		DurbinWatson: stats.DurbinWatson(m.residuals),
		KPSS:         stats.KPSS(m.residuals, 0),
	}
}

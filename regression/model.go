package regression

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goharmonic/basis"
	"github.com/sartorproj/goharmonic/errs"
	"github.com/sartorproj/goharmonic/stats"
)

// ModelKind tags the variant of a fitted Model.
type ModelKind int

const (
	// KindMean is an ordinary least squares fit of the conditional mean.
	KindMean ModelKind = iota
	// KindQuantile is a linear quantile regression fit.
	KindQuantile
)

// String returns the name of the kind.
func (k ModelKind) String() string {
	switch k {
	case KindMean:
		return "mean"
	case KindQuantile:
		return "quantile"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k ModelKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// SEMethod selects how quantile regression standard errors are estimated.
type SEMethod int

const (
	// SEBoot resamples (x, y) pairs and refits.
	SEBoot SEMethod = iota
	// SEIID assumes i.i.d. errors and estimates the sparsity function.
	SEIID
)

// String returns the configuration name of the method.
func (m SEMethod) String() string {
	switch m {
	case SEBoot:
		return "boot"
	case SEIID:
		return "iid"
	default:
		return "unknown"
	}
}

// MarshalText encodes the method by name.
func (m SEMethod) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ParseSEMethod maps a configuration name to an SEMethod.
func ParseSEMethod(name string) (SEMethod, error) {
	switch strings.ToLower(name) {
	case "boot":
		return SEBoot, nil
	case "iid":
		return SEIID, nil
	default:
		return 0, fmt.Errorf("%w: unknown standard error method %q", errs.ErrConfiguration, name)
	}
}

// Coefficient is one row of a coefficient table.
type Coefficient struct {
	Term      string  `json:"term"`
	Estimate  float64 `json:"estimate"`
	StdErr    float64 `json:"std_error"`
	Statistic float64 `json:"t_value"`
	PValue    float64 `json:"p_value"`
	Lower     float64 `json:"lower"` // confidence bound at the table level
	Upper     float64 `json:"upper"`
}

// tableLevel is the confidence level of coefficient bounds unless a fit
// specifies its own.
const tableLevel = 0.95

// coefficientTable builds t statistics, two-sided p values and symmetric
// confidence bounds from estimates and standard errors.
func coefficientTable(terms basis.Basis, beta, stdErr []float64, df int, level float64) []Coefficient {
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	tq := t.Quantile((1 + level) / 2)

	table := make([]Coefficient, len(beta))
	for j, b := range beta {
		se := stdErr[j]
		table[j] = Coefficient{
			Term:     terms[j].String(),
			Estimate: b,
			StdErr:   se,
			Lower:    b - tq*se,
			Upper:    b + tq*se,
		}
		if se > 0 {
			table[j].Statistic = b / se
			table[j].PValue = 2 * t.Survival(math.Abs(table[j].Statistic))
		}
	}
	return table
}

// Model is a fitted regression model. It is either a *MeanModel or a
// *QuantileModel; Kind tells which.
type Model interface {
	Kind() ModelKind
	// Basis returns the terms of the design the model was fitted on.
	Basis() basis.Basis
	// Coefficients returns a copy of the estimates, one per basis term.
	Coefficients() []float64
	// Covariance returns the estimated covariance matrix of the coefficients.
	Covariance() *mat.SymDense
	// Observations returns the number of observations used in the fit.
	Observations() int
	// Summary returns the printable fit summary.
	Summary() *Summary
}

// Summary describes a fitted model for reporting. Fields that do not apply to
// the model kind are left zero or nil.
type Summary struct {
	Kind         ModelKind     `json:"kind"`
	Formula      string        `json:"formula"`
	NObs         int           `json:"n_obs"`
	NParams      int           `json:"n_params"`
	ResidualDF   int           `json:"residual_df"`
	Level        float64       `json:"level"` // of the coefficient bounds
	Coefficients []Coefficient `json:"coefficients"`

	Sigma        float64                   `json:"sigma,omitempty"`
	RSquared     float64                   `json:"r_squared,omitempty"`
	AdjRSquared  float64                   `json:"adj_r_squared,omitempty"`
	FStatistic   float64                   `json:"f_statistic,omitempty"`
	FPValue      float64                   `json:"f_p_value,omitempty"`
	FDF          [2]int                    `json:"f_df"`
	LogLik       float64                   `json:"log_likelihood,omitempty"`
	AIC          float64                   `json:"aic,omitempty"`
	AICc         float64                   `json:"aicc,omitempty"`
	BIC          float64                   `json:"bic,omitempty"`
	LjungBox     *stats.LjungBoxResult     `json:"ljung_box,omitempty"`
	BoxPierce    *stats.BoxPierceResult    `json:"box_pierce,omitempty"`
	DurbinWatson *stats.DurbinWatsonResult `json:"durbin_watson,omitempty"`
	KPSS         *stats.KPSSResult         `json:"kpss,omitempty"`

	Tau        float64  `json:"tau,omitempty"`
	SEMethod   SEMethod `json:"se_method"`
	Replicates int      `json:"replicates,omitempty"`
	Objective  float64  `json:"objective,omitempty"`
	Iterations int      `json:"iterations,omitempty"`
}

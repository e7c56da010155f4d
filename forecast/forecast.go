package forecast

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/goharmonic/basis"
	"github.com/sartorproj/goharmonic/errs"
	"github.com/sartorproj/goharmonic/logger"
	"github.com/sartorproj/goharmonic/regression"
)

// IntervalKind tells what uncertainty an interval covers.
type IntervalKind int

const (
	// Prediction intervals cover a new observation: coefficient uncertainty
	// plus the residual variance.
	Prediction IntervalKind = iota
	// Confidence intervals cover the fitted quantile line only.
	Confidence
)

// String returns the name of the interval kind.
func (k IntervalKind) String() string {
	if k == Confidence {
		return "confidence"
	}
	return "prediction"
}

// MarshalText encodes the kind by name.
func (k IntervalKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Request describes the points to predict.
type Request struct {
	StartIndex int     // sample index of the first point, at least the number of fitted observations
	Horizon    int     // number of points
	Dt         float64 // sampling interval; point i sits at time (StartIndex+i)*Dt
	Level      float64 // interval level in (0, 1)

	// Logger receives a warning when the horizon is expanded. Nil disables it.
	Logger *zerolog.Logger
}

// Point is one predicted sample.
type Point struct {
	Index    int     `json:"index"`
	Time     float64 `json:"time"`
	Estimate float64 `json:"estimate"`
	StdErr   float64 `json:"std_error"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
}

// Forecast holds predictions from one model.
type Forecast struct {
	Kind     regression.ModelKind `json:"kind"`
	Interval IntervalKind         `json:"interval"`
	Level    float64              `json:"level"`
	Points   []Point              `json:"points"`
	// Expanded is set when the requested horizon was raised to degree+1.
	Expanded  bool `json:"expanded"`
	Requested int  `json:"requested_horizon"`
}

// Estimates returns the point estimates in order.
func (f *Forecast) Estimates() []float64 {
	out := make([]float64, len(f.Points))
	for i, p := range f.Points {
		out[i] = p.Estimate
	}
	return out
}

// Predict evaluates m on the samples following the fitted range.
//
// A mean model yields prediction intervals yhat +/- t * sqrt(se^2 + sigma^2)
// with se^2 = x' sigma^2 (X'X)^-1 x. A quantile model yields confidence
// intervals yhat +/- t * sqrt(x' V x) with V the estimated coefficient
// covariance. t is the Student t quantile at (1+Level)/2 with the residual
// degrees of freedom of the fit.
//
// A horizon that does not exceed the basis degree is raised to degree+1 with a
// warning.
func Predict(m regression.Model, req Request) (*Forecast, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil model", errs.ErrConfiguration)
	}
	if req.Horizon <= 0 {
		return nil, fmt.Errorf("%w: horizon %d must be positive", errs.ErrConfiguration, req.Horizon)
	}
	if !(req.Level > 0 && req.Level < 1) {
		return nil, fmt.Errorf("%w: interval level %g outside (0, 1)", errs.ErrConfiguration, req.Level)
	}
	if !(req.Dt > 0) || math.IsInf(req.Dt, 0) {
		return nil, fmt.Errorf("%w: sampling interval %g must be positive", errs.ErrConfiguration, req.Dt)
	}
	if req.StartIndex < m.Observations() {
		return nil, fmt.Errorf("%w: forecast starts at index %d inside the %d fitted samples",
			errs.ErrConfiguration, req.StartIndex, m.Observations())
	}

	fc := &Forecast{
		Kind:      m.Kind(),
		Level:     req.Level,
		Requested: req.Horizon,
	}

	horizon := req.Horizon
	if degree := m.Basis().Degree(); horizon <= degree {
		horizon = degree + 1
		fc.Expanded = true
		log := logger.OrNop(req.Logger)
		log.Warn().
			Int("requested", req.Horizon).
			Int("horizon", horizon).
			Int("degree", degree).
			Str("model", m.Kind().String()).
			Msg("forecast horizon must exceed the basis degree, expanding")
	}

	var (
		cov      = m.Covariance()
		residVar float64
		df       int
	)
	switch model := m.(type) {
	case *regression.MeanModel:
		fc.Interval = Prediction
		residVar = model.Sigma * model.Sigma
		df = model.ResidualDF
	case *regression.QuantileModel:
		fc.Interval = Confidence
		df = model.ResidualDF
	default:
		return nil, fmt.Errorf("%w: unsupported model type %T", errs.ErrConfiguration, m)
	}

	times := make([]float64, horizon)
	for i := range times {
		times[i] = float64(req.StartIndex+i) * req.Dt
	}
	design, err := basis.Build(m.Basis(), times)
	if err != nil {
		return nil, err
	}

	beta := mat.NewVecDense(len(m.Basis()), m.Coefficients())
	tq := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.Quantile((1 + req.Level) / 2)

	fc.Points = make([]Point, horizon)
	for i := range fc.Points {
		x := design.X.RowView(i)
		est := mat.Dot(x, beta)
		se := math.Sqrt(math.Max(mat.Inner(x, cov, x), 0))
		half := tq * math.Sqrt(se*se+residVar)

		fc.Points[i] = Point{
			Index:    req.StartIndex + i,
			Time:     times[i],
			Estimate: est,
			StdErr:   se,
			Lower:    est - half,
			Upper:    est + half,
		}
	}
	return fc, nil
}

// Package basis builds regression design matrices from typed basis terms.
package basis

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/goharmonic/errs"
)

// TermKind identifies the function a design column evaluates.
type TermKind int

const (
	// Intercept is the constant column.
	Intercept TermKind = iota
	// Sin evaluates sin(Omega * x).
	Sin
	// Cos evaluates cos(Omega * x).
	Cos
	// Monomial evaluates x^Power.
	Monomial
)

var termKindNames = map[TermKind]string{
	Intercept: "intercept",
	Sin:       "sin",
	Cos:       "cos",
	Monomial:  "monomial",
}

// String returns the name of the term kind.
func (k TermKind) String() string {
	if name, ok := termKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k TermKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Term describes one column of a design matrix.
type Term struct {
	Kind      TermKind `json:"kind"`
	Frequency float64  `json:"frequency,omitempty"` // Hz, Sin/Cos only
	Omega     float64  `json:"omega,omitempty"`     // rad/s, Sin/Cos only
	Power     int      `json:"power,omitempty"`     // Monomial only
}

// Eval evaluates the term at x.
func (t Term) Eval(x float64) float64 {
	switch t.Kind {
	case Sin:
		return math.Sin(t.Omega * x)
	case Cos:
		return math.Cos(t.Omega * x)
	case Monomial:
		return math.Pow(x, float64(t.Power))
	default:
		return 1
	}
}

// String renders the term as it appears in a model formula, e.g. "sin(62.831853 x)".
func (t Term) String() string {
	switch t.Kind {
	case Sin:
		return fmt.Sprintf("sin(%f x)", t.Omega)
	case Cos:
		return fmt.Sprintf("cos(%f x)", t.Omega)
	case Monomial:
		if t.Power == 1 {
			return "x"
		}
		return fmt.Sprintf("x^%d", t.Power)
	default:
		return "(Intercept)"
	}
}

// Basis is an ordered list of terms; column j of a design is Basis[j].
type Basis []Term

// Harmonic returns [1, sin(w1 x), cos(w1 x), ..., sin(wK x), cos(wK x)] with
// wi = 2*pi*frequencies[i], keeping the order of frequencies.
func Harmonic(frequencies []float64) Basis {
	b := make(Basis, 0, 1+2*len(frequencies))
	b = append(b, Term{Kind: Intercept})
	for _, f := range frequencies {
		w := 2 * math.Pi * f
		b = append(b,
			Term{Kind: Sin, Frequency: f, Omega: w},
			Term{Kind: Cos, Frequency: f, Omega: w},
		)
	}
	return b
}

// Polynomial returns the raw polynomial basis [1, x, x^2, ..., x^degree].
func Polynomial(degree int) Basis {
	if degree < 0 {
		degree = 0
	}
	b := make(Basis, 0, degree+1)
	b = append(b, Term{Kind: Intercept})
	for p := 1; p <= degree; p++ {
		b = append(b, Term{Kind: Monomial, Power: p})
	}
	return b
}

// Len returns the number of columns.
func (b Basis) Len() int {
	return len(b)
}

// HasIntercept reports whether the basis contains a constant column.
func (b Basis) HasIntercept() bool {
	for _, t := range b {
		if t.Kind == Intercept {
			return true
		}
	}
	return false
}

// Degree returns the size of the basis excluding the intercept, counted in
// generating units: one per sin/cos harmonic pair plus the highest monomial
// power.
func (b Basis) Degree() int {
	harmonics, maxPower := 0, 0
	for _, t := range b {
		switch t.Kind {
		case Sin:
			harmonics++
		case Monomial:
			maxPower = max(maxPower, t.Power)
		}
	}
	return harmonics + maxPower
}

// Labels returns the formula label of every column.
func (b Basis) Labels() []string {
	labels := make([]string, len(b))
	for i, t := range b {
		labels[i] = t.String()
	}
	return labels
}

// String renders the basis as a model formula, e.g. "y ~ sin(62.831853 x) + cos(62.831853 x)".
func (b Basis) String() string {
	var rhs []string
	for _, t := range b {
		if t.Kind != Intercept {
			rhs = append(rhs, t.String())
		}
	}
	if len(rhs) == 0 {
		return "y ~ 1"
	}
	return "y ~ " + strings.Join(rhs, " + ")
}

// Design is a design matrix together with the terms of its columns.
type Design struct {
	X     *mat.Dense
	Terms Basis
}

// Build evaluates b at every x and returns the len(x) x len(b) design.
func Build(b Basis, x []float64) (*Design, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty basis", errs.ErrConfiguration)
	}
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no sample times to evaluate the basis at", errs.ErrInsufficientData)
	}

	X := mat.NewDense(len(x), len(b), nil)
	for i, xi := range x {
		for j, t := range b {
			X.Set(i, j, t.Eval(xi))
		}
	}

	terms := make(Basis, len(b))
	copy(terms, b)
	return &Design{X: X, Terms: terms}, nil
}

// Dims returns the number of rows and columns of the design.
func (d *Design) Dims() (rows, cols int) {
	return d.X.Dims()
}

// Row returns a copy of row i.
func (d *Design) Row(i int) []float64 {
	return mat.Row(nil, i, d.X)
}

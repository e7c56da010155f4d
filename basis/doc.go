// Package basis constructs design matrices for the regression engine.
//
// A model is described by an explicit, typed list of terms rather than by a
// formula string. Each Term evaluates one column:
//
//	b := basis.Harmonic([]float64{25, 10, 20})
//	// (Intercept), sin(157.079633 x), cos(157.079633 x), sin(62.831853 x), ...
//	d, err := basis.Build(b, series.Times)
//
// Column order follows the order of the frequencies passed to Harmonic, so a
// harmonic basis over K frequencies always has 1 + 2K columns. Polynomial
// builds the raw polynomial basis used by the fixed-degree variant.
//
// The same Basis is reused to build the design of forecast times, which keeps
// training and prediction columns identical.
package basis

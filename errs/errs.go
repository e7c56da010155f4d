// Package errs defines the error taxonomy shared by every stage of the pipeline.
//
// Stages wrap one of the sentinels below with detail, so callers classify a
// failure with errors.Is regardless of how much context was added on the way up:
//
//	if errors.Is(err, errs.ErrSingularDesign) {
//	    // duplicate or collinear basis columns
//	}
package errs

import "errors"

var (
	// ErrConfiguration reports an invalid run configuration: mismatched component
	// lists, a quantile, threshold or confidence level outside (0, 1), or a
	// non-positive sample count, interval or horizon.
	ErrConfiguration = errors.New("configuration error")

	// ErrSingularDesign reports a rank-deficient design matrix.
	ErrSingularDesign = errors.New("singular design matrix")

	// ErrNumericalConvergence reports that the quantile solver or the bootstrap
	// could not produce a stable estimate.
	ErrNumericalConvergence = errors.New("numerical convergence failure")

	// ErrInsufficientData reports fewer observations than the model needs.
	ErrInsufficientData = errors.New("insufficient data")
)

var taxonomy = []struct {
	err  error
	name string
}{
	{ErrConfiguration, "configuration"},
	{ErrSingularDesign, "singular_design"},
	{ErrNumericalConvergence, "numerical_convergence"},
	{ErrInsufficientData, "insufficient_data"},
}

// Classify returns the taxonomy sentinel wrapped by err, or nil when err does
// not belong to the taxonomy.
func Classify(err error) error {
	for _, t := range taxonomy {
		if errors.Is(err, t.err) {
			return t.err
		}
	}
	return nil
}

// Name returns a stable snake_case label for the class of err, suitable for
// metric labels and log fields. Unclassified errors are "unknown".
func Name(err error) string {
	for _, t := range taxonomy {
		if errors.Is(err, t.err) {
			return t.name
		}
	}
	return "unknown"
}

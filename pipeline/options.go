package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/sartorproj/goharmonic/metrics"
	"github.com/sartorproj/goharmonic/synth"
	"github.com/sartorproj/goharmonic/timeseries"
)

// Option customizes a run.
type Option func(*runner)

// WithLogger sets the logger (default: disabled).
func WithLogger(log zerolog.Logger) Option {
	return func(r *runner) {
		r.log = log
	}
}

// WithMetrics records stage metrics on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *runner) {
		r.metrics = rec
	}
}

// WithSeries fits the given series instead of generating or loading one.
// The series must be evenly sampled. The run works on a copy, so the
// Result never shares memory with s.
func WithSeries(s *timeseries.Series) Option {
	return func(r *runner) {
		r.series = s
	}
}

// WithNoise overrides the generator noise source, ignoring signal.noise_seed.
func WithNoise(src synth.NoiseSource) Option {
	return func(r *runner) {
		r.noise = src
	}
}

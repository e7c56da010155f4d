// Package synth synthesizes noisy periodic signals for the harmonic pipeline.
//
// A signal is a list of harmonic components, each a sine/cosine amplitude
// pair at one frequency, sampled at a fixed interval with additive Gaussian
// noise:
//
//	components, err := synth.NewComponents(
//	    []float64{10, 20, 25}, // Hz
//	    []float64{2, 1, 4},    // sin amplitudes
//	    []float64{1, -1, 1},   // cos amplitudes
//	)
//	gen, err := synth.New(components, synth.WithNoise(synth.NewNoise(42)))
//	series, err := gen.Generate(1024, 1.0/1024)
//
// In ModeStep every component is rectified on its own, ceil(y) when positive
// and 0 otherwise, and only then summed. Rectifying the aggregate instead
// would produce a different harmonic content.
//
// WithTrend adds a polynomial trend, which is how the polynomial variant of
// the pipeline gets its synthetic input.
package synth

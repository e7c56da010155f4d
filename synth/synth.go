// Package synth generates synthetic signals from harmonic components plus noise.
package synth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/sartorproj/goharmonic/errs"
	"github.com/sartorproj/goharmonic/timeseries"
)

// Mode selects how each harmonic component contributes to a sample.
type Mode int

const (
	// ModeTrig sums the raw sine/cosine terms.
	ModeTrig Mode = iota
	// ModeStep rectifies every component to ceil(y) when y > 0 and 0 otherwise
	// before summation.
	ModeStep
)

var modeNames = map[Mode]string{
	ModeTrig: "trig",
	ModeStep: "step",
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode maps a configuration name to a Mode.
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown transform %q", errs.ErrConfiguration, name)
}

// Component is one harmonic of the generated signal.
type Component struct {
	Frequency    float64 `json:"frequency"`
	SinAmplitude float64 `json:"sin_amplitude"`
	CosAmplitude float64 `json:"cos_amplitude"`
}

// Value evaluates the raw component at time t (seconds).
func (c Component) Value(t float64) float64 {
	arg := 2 * math.Pi * c.Frequency * t
	return c.SinAmplitude*math.Sin(arg) + c.CosAmplitude*math.Cos(arg)
}

// NewComponents zips parallel frequency and amplitude lists into components.
func NewComponents(frequencies, sinAmplitudes, cosAmplitudes []float64) ([]Component, error) {
	if len(frequencies) != len(sinAmplitudes) || len(frequencies) != len(cosAmplitudes) {
		return nil, fmt.Errorf("%w: %d frequencies, %d sin amplitudes, %d cos amplitudes",
			errs.ErrConfiguration, len(frequencies), len(sinAmplitudes), len(cosAmplitudes))
	}

	components := make([]Component, len(frequencies))
	for i := range frequencies {
		components[i] = Component{
			Frequency:    frequencies[i],
			SinAmplitude: sinAmplitudes[i],
			CosAmplitude: cosAmplitudes[i],
		}
	}
	return components, nil
}

// NoiseSource produces standard normal variates. *rand.Rand satisfies it.
type NoiseSource interface {
	NormFloat64() float64
}

// NewNoise returns a deterministic noise source for the given seed.
func NewNoise(seed uint64) NoiseSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generator synthesizes sample sequences. A Generator is not safe for
// concurrent use because it draws from a single noise source.
type Generator struct {
	components []Component
	trend      []float64
	mode       Mode
	noise      NoiseSource
	noiseSD    float64
}

// Option configures a Generator.
type Option func(*Generator)

// WithMode sets the transform mode (default ModeTrig).
func WithMode(mode Mode) Option {
	return func(g *Generator) {
		g.mode = mode
	}
}

// WithNoise sets the noise source. Without it the generator draws from a
// randomly seeded source and is not reproducible.
func WithNoise(src NoiseSource) Option {
	return func(g *Generator) {
		g.noise = src
	}
}

// WithNoiseStdDev scales the Gaussian noise (default 1). Zero disables noise.
func WithNoiseStdDev(sd float64) Option {
	return func(g *Generator) {
		g.noiseSD = sd
	}
}

// WithTrend adds the polynomial trend sum(coeffs[k] * t^k) to every sample.
func WithTrend(coeffs []float64) Option {
	return func(g *Generator) {
		g.trend = append([]float64(nil), coeffs...)
	}
}

// New creates a generator for the given components.
func New(components []Component, opts ...Option) (*Generator, error) {
	g := &Generator{
		components: append([]Component(nil), components...),
		mode:       ModeTrig,
		noiseSD:    1,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.mode != ModeTrig && g.mode != ModeStep {
		return nil, fmt.Errorf("%w: unknown transform mode %d", errs.ErrConfiguration, g.mode)
	}
	if g.noiseSD < 0 || math.IsNaN(g.noiseSD) {
		return nil, fmt.Errorf("%w: noise standard deviation %g is negative", errs.ErrConfiguration, g.noiseSD)
	}
	if g.noise == nil {
		g.noise = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return g, nil
}

// Contribution returns the contribution of component c at time t under the
// generator's mode, before noise.
func (g *Generator) Contribution(c Component, t float64) float64 {
	y := c.Value(t)
	if g.mode == ModeStep {
		if y > 0 {
			return math.Ceil(y)
		}
		return 0
	}
	return y
}

// Generate produces n samples at times 0, dt, 2dt, ...
func (g *Generator) Generate(n int, dt float64) (*timeseries.Series, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: sample count %d must be positive", errs.ErrConfiguration, n)
	}
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: sampling interval %g must be positive", errs.ErrConfiguration, dt)
	}

	values := make([]float64, n)
	for i := range values {
		t := float64(i) * dt
		v := 0.0
		for _, c := range g.components {
			v += g.Contribution(c, t)
		}
		v += g.trendAt(t)
		if g.noiseSD > 0 {
			v += g.noiseSD * g.noise.NormFloat64()
		}
		values[i] = v
	}

	series := timeseries.New(values, dt)
	series.Name = g.mode.String()
	return series, nil
}

func (g *Generator) trendAt(t float64) float64 {
	// Horner
	v := 0.0
	for k := len(g.trend) - 1; k >= 0; k-- {
		v = v*t + g.trend[k]
	}
	return v
}

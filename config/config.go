package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/sartorproj/goharmonic/errs"
)

// Mode names accepted in the mode field.
const (
	ModeHarmonic   = "harmonic"
	ModePolynomial = "polynomial"
)

// Config is the complete run configuration. It is read once and passed by
// value; nothing in the pipeline mutates it.
type Config struct {
	Mode       string           `yaml:"mode" default:"harmonic" validate:"oneof=harmonic polynomial"`
	Signal     SignalConfig     `yaml:"signal"`
	Selection  SelectionConfig  `yaml:"selection"`
	Polynomial PolynomialConfig `yaml:"polynomial"`
	Regression RegressionConfig `yaml:"regression"`
	Forecast   ForecastConfig   `yaml:"forecast"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SignalConfig describes the input signal: either generated from harmonic
// components or read from CSV.
type SignalConfig struct {
	Samples  int     `yaml:"samples" default:"1024" validate:"gt=0"`
	Interval float64 `yaml:"interval" validate:"gt=0"` // seconds; defaults to 1/samples

	Transform     string    `yaml:"transform" default:"trig" validate:"oneof=trig step"`
	Frequencies   []float64 `yaml:"frequencies" validate:"dive,gte=0"`
	SinAmplitudes []float64 `yaml:"sin_amplitudes"`
	CosAmplitudes []float64 `yaml:"cos_amplitudes"`
	Trend         []float64 `yaml:"trend,omitempty"` // polynomial trend coefficients, constant first

	NoiseSeed   *uint64  `yaml:"noise_seed,omitempty"` // nil draws a random seed
	NoiseStdDev *float64 `yaml:"noise_stddev" default:"1" validate:"omitempty,gte=0"`

	CSV *CSVConfig `yaml:"csv,omitempty"`
}

// CSVConfig points the pipeline at a recorded series instead of the
// generator.
type CSVConfig struct {
	Path        string `yaml:"path" validate:"required"`
	TimeColumn  string `yaml:"time_column"`
	ValueColumn string `yaml:"value_column" default:"y"`
}

// SelectionConfig configures harmonic selection.
type SelectionConfig struct {
	Threshold float64 `yaml:"threshold" default:"0.05" validate:"gt=0,lt=1"`
}

// PolynomialConfig configures the polynomial basis used in polynomial mode.
type PolynomialConfig struct {
	Degree int `yaml:"degree" default:"2" validate:"gte=0"`
}

// RegressionConfig configures both fits.
type RegressionConfig struct {
	Quantile   float64 `yaml:"quantile" default:"0.75" validate:"gt=0,lt=1"`
	Level      float64 `yaml:"level" default:"0.95" validate:"gt=0,lt=1"`
	SEMethod   string  `yaml:"se_method" validate:"required,oneof=boot iid"`
	Replicates int     `yaml:"replicates" default:"200" validate:"gte=50"`
	Workers    int     `yaml:"workers" validate:"gte=0"` // 0 means GOMAXPROCS
	Seed       *uint64 `yaml:"seed,omitempty"`           // bootstrap seed; nil reuses noise_seed
}

// ForecastConfig configures prediction.
type ForecastConfig struct {
	Horizon int `yaml:"horizon" default:"20" validate:"gt=0"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error disabled"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `yaml:"output" default:"stderr"`
}

// SetDefaults fills values that depend on other fields. It runs after the
// struct tag defaults.
func (c *Config) SetDefaults() {
	if c.Signal.Interval == 0 && c.Signal.Samples > 0 {
		c.Signal.Interval = 1 / float64(c.Signal.Samples)
	}
}

// Default returns the built-in configuration: three harmonics at 10, 20 and
// 25 Hz sampled 1024 times over one second, with bootstrap standard errors.
func Default() Config {
	c := Config{
		Signal: SignalConfig{
			Frequencies:   []float64{10, 20, 25},
			SinAmplitudes: []float64{2, 1, 4},
			CosAmplitudes: []float64{1, -1, 1},
		},
		Regression: RegressionConfig{SEMethod: "boot"},
	}
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return c
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// LoadWithEnv loads config from YAML and overrides it with environment
// variables:
//
//	HARMONIC_SE_METHOD   regression.se_method
//	HARMONIC_NOISE_SEED  signal.noise_seed
//	HARMONIC_LOG_LEVEL   logging.level
func LoadWithEnv(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := decode(b)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("HARMONIC_SE_METHOD"); v != "" {
		c.Regression.SEMethod = v
	}
	if v := os.Getenv("HARMONIC_NOISE_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: HARMONIC_NOISE_SEED %q is not an unsigned integer", errs.ErrConfiguration, v)
		}
		c.Signal.NoiseSeed = &seed
	}
	if v := os.Getenv("HARMONIC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Parse decodes YAML, applies defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	c, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func decode(data []byte) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: parse config: %v", errs.ErrConfiguration, err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("%w: apply defaults: %v", errs.ErrConfiguration, err)
	}
	return &c, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field ranges and cross-field constraints. Every failure
// wraps errs.ErrConfiguration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			msgs := make([]string, 0, len(validationErrors))
			for _, fe := range validationErrors {
				msgs = append(msgs, errorMessage(fe))
			}
			return fmt.Errorf("%w: %s", errs.ErrConfiguration, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", errs.ErrConfiguration, err)
	}

	s := c.Signal
	if len(s.Frequencies) != len(s.SinAmplitudes) || len(s.Frequencies) != len(s.CosAmplitudes) {
		return fmt.Errorf("%w: signal has %d frequencies, %d sin amplitudes and %d cos amplitudes",
			errs.ErrConfiguration, len(s.Frequencies), len(s.SinAmplitudes), len(s.CosAmplitudes))
	}
	for _, list := range [][]float64{s.Frequencies, s.SinAmplitudes, s.CosAmplitudes, s.Trend} {
		for _, v := range list {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: signal contains a non-finite value", errs.ErrConfiguration)
			}
		}
	}
	return nil
}

// errorMessage renders a field error with its yaml path, e.g.
// "regression.quantile must be less than 1".
func errorMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

// Fingerprint returns a stable 64-bit hash of the canonical YAML encoding,
// used as the run id in logs and reports.
func (c Config) Fingerprint() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return "0000000000000000"
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// BootstrapSeed returns the bootstrap seed: regression.seed, else
// signal.noise_seed. ok is false when neither is set.
func (c Config) BootstrapSeed() (seed uint64, ok bool) {
	switch {
	case c.Regression.Seed != nil:
		return *c.Regression.Seed, true
	case c.Signal.NoiseSeed != nil:
		return *c.Signal.NoiseSeed, true
	default:
		return 0, false
	}
}

// Package config loads and validates the run configuration.
//
// Configuration is YAML. Missing values are filled from `default` struct
// tags, then the whole struct is checked against `validate` tags and a few
// cross-field rules. Every problem is reported as errs.ErrConfiguration before
// any pipeline stage runs.
//
//	mode: harmonic            # or polynomial
//	signal:
//	  samples: 1024
//	  interval: 0.0009765625  # defaults to 1/samples
//	  transform: trig         # or step
//	  frequencies:    [10, 20, 25]
//	  sin_amplitudes: [2, 1, 4]
//	  cos_amplitudes: [1, -1, 1]
//	  noise_seed: 2024        # omit for a random seed
//	  noise_stddev: 1
//	  # csv: {path: series.csv, time_column: t, value_column: y}
//	selection:
//	  threshold: 0.05
//	polynomial:
//	  degree: 2
//	regression:
//	  quantile: 0.75
//	  level: 0.95
//	  se_method: boot         # required: boot or iid
//	  replicates: 200
//	  workers: 0              # 0 means GOMAXPROCS
//	forecast:
//	  horizon: 20
//	logging:
//	  level: info
//	  format: console
//
// The standard error method has no default in files: both regression fits
// share it and a run must state it. Default() uses "boot".
package config

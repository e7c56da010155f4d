// Package metrics records pipeline stage timings and failures with Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sartorproj/goharmonic/errs"
)

// Recorder collects pipeline metrics. A nil *Recorder records nothing.
type Recorder struct {
	stageDuration      *prometheus.HistogramVec
	stageFailures      *prometheus.CounterVec
	runs               *prometheus.CounterVec
	selectedHarmonics  prometheus.Gauge
	bootstrapResamples prometheus.Gauge
}

// New creates a recorder whose collectors are registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goharmonic_stage_duration_seconds",
				Help:    "Duration of pipeline stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		stageFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goharmonic_stage_failures_total",
				Help: "Total number of failed pipeline stages by error class",
			},
			[]string{"stage", "class"},
		),
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goharmonic_runs_total",
				Help: "Total number of pipeline runs by outcome",
			},
			[]string{"outcome"},
		),
		selectedHarmonics: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "goharmonic_selected_harmonics",
				Help: "Number of harmonics retained by the last selection",
			},
		),
		bootstrapResamples: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "goharmonic_bootstrap_usable_resamples",
				Help: "Usable bootstrap resamples in the last quantile fit",
			},
		),
	}
}

// StartStage starts timing stage. The returned func records the duration and,
// for a non-nil error, a failure labelled with the error class.
func (r *Recorder) StartStage(stage string) func(err error) {
	start := time.Now()
	return func(err error) {
		if r == nil {
			return
		}
		r.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
		if err != nil {
			r.stageFailures.WithLabelValues(stage, errs.Name(err)).Inc()
		}
	}
}

// RecordRun counts a finished run.
func (r *Recorder) RecordRun(err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.runs.WithLabelValues(outcome).Inc()
}

// RecordSelectedHarmonics sets the number of retained harmonics.
func (r *Recorder) RecordSelectedHarmonics(n int) {
	if r == nil {
		return
	}
	r.selectedHarmonics.Set(float64(n))
}

// RecordBootstrapResamples sets the number of usable bootstrap resamples.
func (r *Recorder) RecordBootstrapResamples(n int) {
	if r == nil {
		return
	}
	r.bootstrapResamples.Set(float64(n))
}

package metrics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goharmonic/errs"
)

func TestStageFailuresByClass(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.StartStage("fit_mean")(nil)
	r.StartStage("fit_mean")(fmt.Errorf("wrapped: %w", errs.ErrSingularDesign))
	r.StartStage("fit_quantile")(errs.ErrSingularDesign)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.stageFailures.WithLabelValues("fit_mean", "singular_design")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.stageFailures.WithLabelValues("fit_quantile", "singular_design")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.stageDuration))
}

func TestGaugesAndRuns(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordSelectedHarmonics(3)
	r.RecordBootstrapResamples(198)
	r.RecordRun(nil)
	r.RecordRun(errs.ErrConfiguration)

	expected := `
# HELP goharmonic_selected_harmonics Number of harmonics retained by the last selection
# TYPE goharmonic_selected_harmonics gauge
goharmonic_selected_harmonics 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "goharmonic_selected_harmonics"))
	assert.Equal(t, 198.0, testutil.ToFloat64(r.bootstrapResamples))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues("error")))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.StartStage("spectrum")(errs.ErrInsufficientData)
		r.RecordRun(nil)
		r.RecordSelectedHarmonics(1)
		r.RecordBootstrapResamples(1)
	})
}

func TestSeparateRegistries(t *testing.T) {
	// Each recorder owns its collectors, so two pipelines can run side by side.
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}

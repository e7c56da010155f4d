package timeseries

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sartorproj/goharmonic/errs"
)

func TestLoadCSVFromReader(t *testing.T) {
	csvData := `t,y
0,100
0.5,101
1.0,102
1.5,103
2.0,104`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	require.NoError(t, err)

	require.Equal(t, 5, series.Len())
	require.Equal(t, []float64{100, 101, 102, 103, 104}, series.Values)
	require.Equal(t, []float64{0, 0.5, 1.0, 1.5, 2.0}, series.Times)

	dt, err := series.Interval()
	require.NoError(t, err)
	require.InDelta(t, 0.5, dt, 1e-12)
}

func TestLoadCSVWithoutTimeColumn(t *testing.T) {
	csvData := `value
3
1
4`

	opts := DefaultCSVOptions()
	opts.ValueColumn = "value"
	opts.Interval = 0.01

	series, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 1, 4}, series.Values)
	require.InDeltaSlice(t, []float64{0, 0.01, 0.02}, series.Times, 1e-12)
}

func TestLoadCSVWithNAValues(t *testing.T) {
	csvData := `t,y
0,100
1,NA
2,102
3,NaN
4,104`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	require.NoError(t, err)

	// NA and NaN rows are skipped together with their times
	require.Equal(t, []float64{100, 102, 104}, series.Values)
	require.Equal(t, []float64{0, 2, 4}, series.Times)
	t.Logf("Series with NA skipped: %v", series.Values)
}

func TestLoadCSVRejectsNonFinite(t *testing.T) {
	for _, v := range []string{"inf", "+Inf", "-inf", "nan"} {
		t.Run(v, func(t *testing.T) {
			csvData := "t,y\n0,1\n1," + v + "\n2,3\n"
			_, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
			require.ErrorIs(t, err, errs.ErrConfiguration)
			require.ErrorContains(t, err, "row 2")
		})
	}
}

func TestLoadCSVNamedColumns(t *testing.T) {
	csvData := `seconds,Beer,Cement,Gas
0,100,200,50
1,110,210,55
2,120,220,60`

	opts := DefaultCSVOptions()
	opts.TimeColumn = "seconds"
	opts.ValueColumn = "Cement"

	series, err := LoadCSVFromReader(strings.NewReader(csvData), opts)
	require.NoError(t, err)
	require.Equal(t, []float64{200, 210, 220}, series.Values)
	require.Equal(t, []float64{0, 1, 2}, series.Times)
}

func TestLoadCSVQuotedFields(t *testing.T) {
	csvData := `"t","y"
"0","1000000"
"1","1000100"
"2","1000200"`

	series, err := LoadCSVFromReader(strings.NewReader(csvData), DefaultCSVOptions())
	require.NoError(t, err)
	require.Equal(t, 3, series.Len())
}

func TestLoadCSVNoHeader(t *testing.T) {
	opts := DefaultCSVOptions()
	opts.HasHeader = false

	series, err := LoadCSVFromReader(strings.NewReader("0,1\n0.1,2\n0.2,3\n"), opts)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, series.Values)
	require.Equal(t, []float64{0, 0.1, 0.2}, series.Times)
}

func TestLoadCSVErrors(t *testing.T) {
	_, err := LoadCSVFromReader(strings.NewReader("t,y\n"), DefaultCSVOptions())
	require.ErrorIs(t, err, errs.ErrInsufficientData)

	_, err = LoadCSVFromReader(strings.NewReader("t,y\nnoon,1\n"), DefaultCSVOptions())
	require.ErrorIs(t, err, errs.ErrConfiguration)

	_, err = LoadCSV("does-not-exist.csv", nil)
	require.Error(t, err)
}

func TestSaveCSVRoundTrip(t *testing.T) {
	original := New([]float64{1.5, -2.25, 3}, 0.125)

	var buf bytes.Buffer
	require.NoError(t, SaveCSV(original, &buf))
	require.True(t, strings.HasPrefix(buf.String(), "t,y\n"))

	loaded, err := LoadCSVFromReader(&buf, DefaultCSVOptions())
	require.NoError(t, err)
	require.Equal(t, original.Values, loaded.Values)
	require.Equal(t, original.Times, loaded.Times)
}

func TestDefaultCSVOptions(t *testing.T) {
	opts := DefaultCSVOptions()

	require.Equal(t, "y", opts.ValueColumn)
	require.Equal(t, 1.0, opts.Interval)
	require.True(t, opts.HasHeader)
	require.Equal(t, ',', opts.Delimiter)
}

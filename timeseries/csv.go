package timeseries

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sartorproj/goharmonic/errs"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	TimeColumn  string  // Column name for sample times in seconds (optional)
	ValueColumn string  // Column name for values (default: "y")
	Interval    float64 // Sampling interval used when there is no time column (default: 1)
	HasHeader   bool    // Whether CSV has header row (default: true)
	Delimiter   rune    // Field delimiter (default: ',')
	SkipRows    int     // Number of rows to skip at start
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		ValueColumn: "y",
		Interval:    1,
		HasHeader:   true,
		Delimiter:   ',',
	}
}

// LoadCSV loads a series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a series from an io.Reader.
//
// Rows whose value is empty, NA, NaN or null are skipped; any other value
// that parses as infinite or NaN (inf, +Inf, nan) is an ErrConfiguration. When a time column
// is present its values are used as sample times; otherwise the i-th kept row
// is placed at i*Interval.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, fmt.Errorf("skip row %d: %w", i, err)
		}
	}

	valueIdx, timeIdx := -1, -1

	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}

		for i, h := range header {
			h = strings.TrimSpace(strings.Trim(h, "\""))
			switch {
			case h == opts.ValueColumn || (opts.ValueColumn == "" && (h == "y" || h == "value")):
				valueIdx = i
			case opts.TimeColumn != "" && h == opts.TimeColumn:
				timeIdx = i
			case h == "t" || h == "time":
				if timeIdx == -1 && opts.TimeColumn == "" {
					timeIdx = i
				}
			}
		}

		if valueIdx == -1 {
			valueIdx = len(header) - 1
		}
	} else {
		// No header: a lone column is the value, otherwise (time, value).
		valueIdx = 1
		timeIdx = 0
	}

	var values, times []float64

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		vi, ti := valueIdx, timeIdx
		if !opts.HasHeader && len(record) == 1 {
			vi, ti = 0, -1
		}
		if vi < 0 || vi >= len(record) {
			continue
		}

		valStr := strings.TrimSpace(strings.Trim(record[vi], "\""))
		if valStr == "" || valStr == "NA" || valStr == "NaN" || valStr == "null" {
			continue
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			continue
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil, fmt.Errorf("%w: value %q on row %d is not finite", errs.ErrConfiguration, valStr, len(values)+1)
		}

		if ti >= 0 && ti < len(record) {
			tStr := strings.TrimSpace(strings.Trim(record[ti], "\""))
			tv, err := strconv.ParseFloat(tStr, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: time %q on row %d is not numeric", errs.ErrConfiguration, tStr, len(values)+1)
			}
			times = append(times, tv)
		}
		values = append(values, val)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no valid data found in CSV", errs.ErrInsufficientData)
	}

	if len(times) == len(values) {
		return NewWithTimes(times, values)
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = 1
	}
	return New(values, interval), nil
}

// SaveCSV writes the series as "t,y" rows.
func SaveCSV(series *Series, w io.Writer) error {
	writer := bufio.NewWriter(w)

	if _, err := writer.WriteString("t,y\n"); err != nil {
		return err
	}

	for i, v := range series.Values {
		t := float64(i)
		if i < len(series.Times) {
			t = series.Times[i]
		}
		writer.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
		writer.WriteString(",")
		writer.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		writer.WriteString("\n")
	}

	return writer.Flush()
}

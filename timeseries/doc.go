// Package timeseries provides the sample data structures shared by the pipeline.
//
// A Series holds values together with their sample times in seconds. Series
// produced by the generator or loaded from CSV are evenly sampled; stages that
// need the sampling interval recover it with Interval.
//
// # Creating a Series
//
//	values := []float64{1.2, 0.7, -0.3, -1.1}
//	series := timeseries.New(values, 1.0/1024) // sampled at 1024 Hz
//
// # Loading from CSV
//
// Load a (time, value) series:
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.TimeColumn = "t"
//	series, err := timeseries.LoadCSV("signal.csv", opts)
//
// Without a time column, rows are placed Interval seconds apart:
//
//	opts := &timeseries.CSVOptions{
//	    ValueColumn: "value",
//	    Interval:    0.01,
//	    HasHeader:   true,
//	    Delimiter:   ',',
//	}
//	series, err := timeseries.LoadCSVFromReader(reader, opts)
//
// # Basic Statistics
//
//	mean := series.Mean()
//	std := series.Std()
//	median := series.Median()
//
// # Samples
//
// Samples returns the (index, time, value) view used in reports:
//
//	for _, s := range series.Samples() {
//	    fmt.Println(s.Index, s.Time, s.Value)
//	}
package timeseries

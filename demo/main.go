// Package main runs the harmonic regression pipeline and prints a report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/klauspost/compress/zstd"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sartorproj/goharmonic/config"
	"github.com/sartorproj/goharmonic/errs"
	"github.com/sartorproj/goharmonic/forecast"
	"github.com/sartorproj/goharmonic/logger"
	"github.com/sartorproj/goharmonic/metrics"
	"github.com/sartorproj/goharmonic/pipeline"
	"github.com/sartorproj/goharmonic/regression"
	"github.com/sartorproj/goharmonic/timeseries"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "YAML configuration file (built-in defaults when empty)")
	useEnv := flag.Bool("env", false, "apply HARMONIC_* environment overrides to the configuration file")
	reportPath := flag.String("report", "", "write the JSON report here; a .zst suffix compresses it")
	metricsPath := flag.String("metrics", "", "write Prometheus metrics in text format here")
	seriesPath := flag.String("series", "", "write the fitted input series as CSV here")
	holdout := flag.Int("holdout", 0, "hold out the last N samples and score the mean forecast on them")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *useEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return exitCode(err)
	}

	log, closeLog, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		return 2
	}
	defer closeLog.Close()

	fail := func(err error) int {
		log.Error().Err(err).Str("class", errs.Name(err)).Msg("harmonic regression failed")
		return exitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := prometheus.NewRegistry()
	opts := []pipeline.Option{
		pipeline.WithLogger(log),
		pipeline.WithMetrics(metrics.New(reg)),
	}

	var test *timeseries.Series
	if *holdout > 0 {
		var train *timeseries.Series
		train, test, err = split(cfg, *holdout)
		if err != nil {
			return fail(err)
		}
		opts = append(opts, pipeline.WithSeries(train))
	}

	res, err := pipeline.Run(ctx, cfg, opts...)
	if *metricsPath != "" {
		if werr := prometheus.WriteToTextfile(*metricsPath, reg); werr != nil {
			log.Error().Err(werr).Str("path", *metricsPath).Msg("write metrics")
		}
	}
	if err != nil {
		return fail(err)
	}

	printReport(os.Stdout, res)
	if test != nil {
		printAccuracy(os.Stdout, res.MeanForecast, test)
	}

	if *seriesPath != "" {
		if err := writeSeries(*seriesPath, res.Series); err != nil {
			return fail(err)
		}
	}
	if *reportPath != "" {
		if err := writeReport(*reportPath, res); err != nil {
			return fail(err)
		}
		fmt.Printf("\nReport written to %s\n", *reportPath)
	}
	return 0
}

func loadConfig(path string, useEnv bool) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	load := config.Load
	if useEnv {
		load = config.LoadWithEnv
	}
	cfg, err := load(path)
	if err != nil {
		return config.Config{}, err
	}
	return *cfg, nil
}

// exitCode maps err to the process exit status: 2 for configuration
// problems, 1 for everything else.
func exitCode(err error) int {
	if errs.Classify(err) == errs.ErrConfiguration {
		return 2
	}
	return 1
}

// split loads the configured signal with holdout extra samples and cuts it
// into a training prefix and the held out tail.
func split(cfg config.Config, holdout int) (train, test *timeseries.Series, err error) {
	if cfg.Signal.CSV == nil {
		cfg.Signal.Samples += holdout
	}
	full, _, err := pipeline.LoadSignal(cfg)
	if err != nil {
		return nil, nil, err
	}
	n := full.Len()
	if holdout >= n {
		return nil, nil, fmt.Errorf("%w: holdout %d leaves no training samples out of %d",
			errs.ErrInsufficientData, holdout, n)
	}
	return full.Slice(0, n-holdout), full.Slice(n-holdout, n), nil
}

func printReport(w io.Writer, res *pipeline.Result) {
	cfg := res.Config
	rule := strings.Repeat("=", 80)

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "GoHarmonic - harmonic regression with least squares and quantile fits")
	fmt.Fprintf(w, "Run: %s\n", res.Fingerprint)
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nInput Data")
	fmt.Fprintf(w, "Sampling Interval: %f secs\n", res.Interval)
	fmt.Fprintf(w, "Total Samples %d\n", res.Series.Len())
	fmt.Fprintf(w, "ymin: %f ymax: %f\n", res.Series.Min(), res.Series.Max())
	fmt.Fprintf(w, "mean: %f median: %f stdev: %f\n", res.Series.Mean(), res.Series.Median(), res.Series.Std())
	if cfg.Signal.CSV != nil {
		fmt.Fprintf(w, "Source: %s\n", cfg.Signal.CSV.Path)
	} else if len(cfg.Signal.Frequencies) > 0 {
		fmt.Fprintf(w, "Frequencies: %s\n", joinFloats(cfg.Signal.Frequencies))
		fmt.Fprintf(w, "Amplitudes:: sin: %s  cos: %s\n",
			joinFloats(cfg.Signal.SinAmplitudes), joinFloats(cfg.Signal.CosAmplitudes))
	}

	if len(res.Selected) > 0 {
		fmt.Fprintln(w, "\nSpectral Analysis")
		for _, h := range res.Selected {
			fmt.Fprintf(w, "freq: %f power: %f\n", h.Frequency, h.Power)
		}
	}
	fmt.Fprintf(w, "\nModel: %s\n", res.Formula)

	mean := res.Mean.Summary()
	fmt.Fprintf(w, "\n%s\nMSE REGRESSION\n%s\n", rule, rule)
	fmt.Fprintf(w, "F statistic: %f on %d and %d DF, p-value: %.4g\n", mean.FStatistic, mean.FDF[0], mean.FDF[1], mean.FPValue)
	fmt.Fprintf(w, "R squared: %f\n", mean.RSquared)
	fmt.Fprintf(w, "Adj R squared: %f\n", mean.AdjRSquared)
	fmt.Fprintf(w, "Stdev: %f\n", mean.Sigma)
	fmt.Fprintf(w, "AIC: %.2f, AICc: %.2f, BIC: %.2f\n", mean.AIC, mean.AICc, mean.BIC)
	if mean.LjungBox != nil {
		fmt.Fprintf(w, "Ljung-Box: Q=%.4f, df=%d, p=%.4f\n", mean.LjungBox.Statistic, mean.LjungBox.DOF, mean.LjungBox.PValue)
	}
	if mean.DurbinWatson != nil {
		fmt.Fprintf(w, "Durbin-Watson: %.4f\n", mean.DurbinWatson.Statistic)
	}
	if mean.KPSS != nil {
		fmt.Fprintf(w, "KPSS: %.4f, lags=%d, p=%.3f\n", mean.KPSS.Statistic, mean.KPSS.Lags, mean.KPSS.PValue)
	}
	fmt.Fprintln(w, "\nCoefficients")
	printCoefficients(w, mean)
	fmt.Fprintln(w, "\nCovariances (unscaled)")
	printMatrix(w, res.Mean.Terms.Labels(), res.Mean.CovUnscaled)
	fmt.Fprintln(w, "\nPredictions")
	printForecast(w, res.MeanForecast)

	quantile := res.Quantile.Summary()
	fmt.Fprintf(w, "\n%s\n%g QUANTILE REGRESSION (se=%s", rule, quantile.Tau, quantile.SEMethod)
	if quantile.SEMethod == regression.SEBoot {
		fmt.Fprintf(w, ", %d resamples", quantile.Replicates)
	}
	fmt.Fprintf(w, ")\n%s\n", rule)
	fmt.Fprintf(w, "Objective: %f after %d iterations\n", quantile.Objective, quantile.Iterations)
	fmt.Fprintln(w, "\nCoefficients")
	printCoefficients(w, quantile)
	fmt.Fprintln(w, "\nPredictions")
	printForecast(w, res.QuantileForecast)
	fmt.Fprintln(w, rule)
}

func printCoefficients(w io.Writer, s *regression.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\tEstimate\tStd. Error\tt value\tPr(>|t|)\t%g%% lower\t%g%% upper\t\n", 100*s.Level, 100*s.Level)
	for _, c := range s.Coefficients {
		fmt.Fprintf(tw, "%s\t%.6f\t%.6f\t%.3f\t%.4g\t%.6f\t%.6f\t\n",
			c.Term, c.Estimate, c.StdErr, c.Statistic, c.PValue, c.Lower, c.Upper)
	}
	tw.Flush()
}

func printMatrix(w io.Writer, labels []string, rows [][]float64) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(labels, "\t"))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprintf("%.3e", v)
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", labels[i], strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func printForecast(w io.Writer, fc *forecast.Forecast) {
	if fc.Expanded {
		fmt.Fprintf(w, "(horizon expanded from %d to %d)\n", fc.Requested, len(fc.Points))
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "index\ttime\tfit\tlwr\tupr\t\n")
	for _, p := range fc.Points {
		fmt.Fprintf(tw, "%d\t%.6f\t%.6f\t%.6f\t%.6f\t\n", p.Index, p.Time, p.Estimate, p.Lower, p.Upper)
	}
	tw.Flush()
	fmt.Fprintf(w, "%s intervals at level %g\n", fc.Interval, fc.Level)
}

func printAccuracy(w io.Writer, fc *forecast.Forecast, test *timeseries.Series) {
	rmse, mae, mape := accuracy(test.Values, fc.Estimates())
	covered := coverage(test.Values, fc.Points)
	fmt.Fprintf(w, "\nHoldout (%d samples): RMSE=%.4f MAE=%.4f MAPE=%.2f%% coverage=%.1f%%\n",
		test.Len(), rmse, mae, mape, 100*covered)
}

// accuracy calculates forecast accuracy metrics over the common prefix.
func accuracy(actual, predicted []float64) (rmse, mae, mape float64) {
	n := min(len(actual), len(predicted))
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		d := actual[i] - predicted[i]
		rmse += d * d
		mae += math.Abs(d)
		if actual[i] != 0 {
			mape += math.Abs(d) / math.Abs(actual[i]) * 100
		}
	}
	return math.Sqrt(rmse / float64(n)), mae / float64(n), mape / float64(n)
}

// coverage returns the share of actual values inside their interval.
func coverage(actual []float64, points []forecast.Point) float64 {
	n := min(len(actual), len(points))
	if n == 0 {
		return 0
	}
	inside := 0
	for i := 0; i < n; i++ {
		if actual[i] >= points[i].Lower && actual[i] <= points[i].Upper {
			inside++
		}
	}
	return float64(inside) / float64(n)
}

func writeSeries(path string, s *timeseries.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create series file: %w", err)
	}
	if err := timeseries.SaveCSV(s, f); err != nil {
		f.Close()
		return fmt.Errorf("write series: %w", err)
	}
	return f.Close()
}

// writeReport encodes res as indented JSON, zstd-compressed when path ends
// in .zst.
func writeReport(path string, res *pipeline.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	if err := encodeReport(f, res, strings.HasSuffix(path, ".zst")); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encodeReport(w io.Writer, res *pipeline.Result, compress bool) error {
	if !compress {
		return encodeJSON(w, res)
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	if err := encodeJSON(enc, res); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func encodeJSON(w io.Writer, res *pipeline.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(res); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}

// Package spectrum finds the periodic structure of a sample sequence.
//
// Periodogram returns the raw one-sided periodogram on the 1/N frequency
// grid, and Select keeps the peaks whose power exceeds a fraction of the
// strongest one:
//
//	bins, err := spectrum.Periodogram(series.Values)
//	harmonics, err := spectrum.Select(bins, 0.05, dt)
//	for _, h := range harmonics {
//	    fmt.Printf("freq: %f power: %f\n", h.Frequency, h.Power)
//	}
//
// Frequencies in Bin are normalized (cycles per sample); Select converts them
// to Hz by dividing by the sampling interval. The frequency resolution is
// therefore 1/(N*dt) Hz.
package spectrum

// Package report summarises what the accelerator did to a frame: intensity
// statistics for both directions and an optional histogram plot.
package report

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Summary compares the frame sent to the device with the frame it returned.
type Summary struct {
	SentMean       float64
	SentStdDev     float64
	ReceivedMean   float64
	ReceivedStdDev float64

	// ChangedSamples counts positions whose value differs between frames.
	ChangedSamples int
	// MeanAbsDiff is the mean of |received-sent| over all positions.
	MeanAbsDiff float64
}

// Summarize computes a Summary. Both slices must have the same length; the
// pipeline only calls it after the received frame passed length validation.
func Summarize(sent, received []byte) Summary {
	var s Summary
	if len(sent) == 0 || len(sent) != len(received) {
		return s
	}

	xs := toFloats(sent)
	ys := toFloats(received)
	s.SentMean, s.SentStdDev = stat.MeanStdDev(xs, nil)
	s.ReceivedMean, s.ReceivedStdDev = stat.MeanStdDev(ys, nil)

	diffs := make([]float64, len(xs))
	for i := range xs {
		d := ys[i] - xs[i]
		if d != 0 {
			s.ChangedSamples++
		}
		if d < 0 {
			d = -d
		}
		diffs[i] = d
	}
	s.MeanAbsDiff = stat.Mean(diffs, nil)
	return s
}

// String formats the summary for a single log line.
func (s Summary) String() string {
	return fmt.Sprintf("sent mean=%.2f sd=%.2f, received mean=%.2f sd=%.2f, changed=%d, mean|diff|=%.2f",
		s.SentMean, s.SentStdDev, s.ReceivedMean, s.ReceivedStdDev, s.ChangedSamples, s.MeanAbsDiff)
}

func toFloats(b []byte) []float64 {
	f := make([]float64, len(b))
	for i, v := range b {
		f[i] = float64(v)
	}
	return f
}

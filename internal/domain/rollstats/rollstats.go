// Package rollstats provides windowed mean and standard-deviation
// statistics over a time-ordered triaxial acceleration table. The
// calibration fitter consumes it through the Provider contract; window
// boundary and edge handling belong to the provider.
package rollstats

import (
	"context"
	"math"
	"time"

	"github.com/okian/autocal/internal/domain/model"
)

// Stats holds per-row rolling statistics aligned to an edge-trimmed
// subset of the input. Mean and SD always have the same row count as
// Time; row i describes the window starting at Time[i].
type Stats struct {
	Mean model.Samples
	SD   model.Samples
	Time []time.Time
}

// Provider computes rolling statistics over a window length in seconds.
type Provider interface {
	Rolling(ctx context.Context, accel model.Samples, times []time.Time, windowSeconds float64) (Stats, error)
}

// Sliding is the default Provider. It uses trailing windows of
// round(windowSeconds * rate) samples and prefix sums, so each call is a
// single O(n) pass; the output is trimmed to rows with a full window.
type Sliding struct{}

// NewSliding returns the prefix-sum provider.
func NewSliding() *Sliding {
	return &Sliding{}
}

// Rolling computes the rolling mean and sample standard deviation per
// axis. The window is converted to a sample count using the rate implied
// by the first and last timestamps.
func (*Sliding) Rolling(_ context.Context, accel model.Samples, times []time.Time, windowSeconds float64) (Stats, error) {
	n := accel.Len()
	if n == 0 {
		return Stats{}, ErrEmptyInput
	}
	if len(times) != n {
		return Stats{}, ErrRowCountMismatch
	}
	if windowSeconds <= 0 {
		return Stats{}, ErrWindowSeconds
	}

	w := windowSamples(times, windowSeconds)
	rows := n - w + 1

	out := Stats{
		Mean: model.NewSamples(rows),
		SD:   model.NewSamples(rows),
		Time: times[:rows],
	}
	for k := 0; k < 3; k++ {
		col := accel.Axis(k)
		means := out.Mean.Axis(k)
		sds := out.SD.Axis(k)
		rollingColumn(col, w, means, sds)
	}
	return out, nil
}

// rollingColumn fills means and sds for trailing windows of w samples.
func rollingColumn(col []float64, w int, means, sds []float64) {
	n := len(col)
	sum := make([]float64, n+1)
	sumsq := make([]float64, n+1)
	for i, v := range col {
		sum[i+1] = sum[i] + v
		sumsq[i+1] = sumsq[i] + v*v
	}

	fw := float64(w)
	for i := range means {
		s := sum[i+w] - sum[i]
		q := sumsq[i+w] - sumsq[i]
		means[i] = s / fw
		if w < 2 {
			sds[i] = 0
			continue
		}
		// sample variance; clamp the tiny negatives prefix sums can leave
		v := (q - s*s/fw) / (fw - 1)
		if v < 0 {
			v = 0
		}
		sds[i] = math.Sqrt(v)
	}
}

// windowSamples converts a window length in seconds to a sample count,
// estimating the rate from the recording's span.
func windowSamples(times []time.Time, windowSeconds float64) int {
	n := len(times)
	if n < 2 {
		return 1
	}
	span := times[n-1].Sub(times[0]).Seconds()
	if span <= 0 {
		return 1
	}
	rate := float64(n-1) / span
	w := int(math.Round(windowSeconds * rate))
	if w < 1 {
		w = 1
	}
	if w > n {
		w = n
	}
	return w
}

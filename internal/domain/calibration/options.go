package calibration

import (
	"github.com/okian/autocal/internal/domain/rollstats"
	"github.com/okian/autocal/pkg/logger"
)

// Option applies a configuration option to the Calibrator.
type Option func(*Calibrator)

// WithSphereCriterion sets the minimum acceleration (in g) the still
// samples must reach on both sides of zero on every axis.
func WithSphereCriterion(v float64) Option {
	return func(c *Calibrator) {
		if v > 0 {
			c.sphereCrit = v
		}
	}
}

// WithMinHours sets the initial window length in hours. Windows grow in
// 12-hour blocks from there.
func WithMinHours(h int) Option {
	return func(c *Calibrator) {
		if h > 0 {
			c.minHours = h
		}
	}
}

// WithStillCriterion sets the rolling standard-deviation bound (in g)
// below which a sample counts as still. Device-dependent; roughly
// 1.2x the bench noise floor.
func WithStillCriterion(v float64) Option {
	return func(c *Calibrator) {
		if v > 0 {
			c.sdCrit = v
		}
	}
}

// WithMaxIterations bounds the closest-point iteration.
func WithMaxIterations(n int) Option {
	return func(c *Calibrator) {
		if n > 0 {
			c.maxIter = n
		}
	}
}

// WithTolerance sets the residual-change threshold that stops iteration.
func WithTolerance(tol float64) Option {
	return func(c *Calibrator) {
		if tol > 0 {
			c.tol = tol
		}
	}
}

// WithStatsWindow sets the rolling-statistics window length in seconds.
func WithStatsWindow(seconds float64) Option {
	return func(c *Calibrator) {
		if seconds > 0 {
			c.statsWindow = seconds
		}
	}
}

// WithStatsProvider replaces the windowed-statistics provider.
func WithStatsProvider(p rollstats.Provider) Option {
	return func(c *Calibrator) {
		if p != nil {
			c.stats = p
		}
	}
}

// WithLogger sets a custom logger for the calibrator.
func WithLogger(l logger.Logger) Option {
	return func(c *Calibrator) {
		if l != nil {
			c.log = l
		}
	}
}

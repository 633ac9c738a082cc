// Package repository defines the calibration outcome store interface and
// errors. A batch run records one Outcome per processed recording so the
// final summary and any retries have a single source of truth.
package repository

import (
	"context"
	"time"
)

// Outcome is one processed recording's result, as seen by the batch run.
type Outcome struct {
	JobID string
	Path  string

	Calibrated bool
	Scale      [3]float64
	Offset     [3]float64
	ErrStart   float64
	ErrEnd     float64
	Diagnostic string

	Samples  int
	Duration time.Duration
	Err      string // processing failure, empty on success
}

// Failed reports whether the job errored before producing a result.
func (o Outcome) Failed() bool {
	return o.Err != ""
}

// Store provides write/read access to a run's outcomes.
type Store interface {
	// Record stores the outcome for its path, overwriting an earlier
	// attempt for the same path.
	Record(ctx context.Context, o Outcome) error

	// Get returns the outcome recorded for path.
	// Returns ErrNotFound when the path is unknown.
	Get(ctx context.Context, path string) (Outcome, error)

	// Summary returns all outcomes ordered worst-first: failures, then
	// uncalibrated runs, then calibrated runs by descending end error.
	Summary(ctx context.Context) ([]Outcome, error)

	// Count returns the number of outcomes recorded.
	Count(ctx context.Context) int
}

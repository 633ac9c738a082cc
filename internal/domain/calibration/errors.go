package calibration

import "errors"

// Sentinel kinds for malformed input. These are fatal at the entry point,
// unlike the advisory diagnostics carried in a Result.
var (
	ErrRowCountMismatch = errors.New("acceleration and time row counts differ")
	ErrSamplingRate     = errors.New("sampling rate must be positive")
	ErrTimeOrder        = errors.New("timestamps must be non-decreasing")
)

package rollstats

import "errors"

// Sentinel error kinds for this package.
var (
	ErrEmptyInput       = errors.New("empty acceleration table")
	ErrRowCountMismatch = errors.New("acceleration and time row counts differ")
	ErrWindowSeconds    = errors.New("window seconds must be positive")
)

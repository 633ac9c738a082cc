package csvfile

import "errors"

var (
	// ErrEmptyFile indicates the file had no data rows.
	ErrEmptyFile = errors.New("csvfile: no data rows")
	// ErrHeader indicates the header row is missing required columns.
	ErrHeader = errors.New("csvfile: unexpected header")
	// ErrTimestamp indicates a time cell could not be parsed.
	ErrTimestamp = errors.New("csvfile: bad timestamp")
	// ErrValue indicates a numeric cell could not be parsed.
	ErrValue = errors.New("csvfile: bad numeric value")
)

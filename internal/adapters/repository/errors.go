package repository

import "errors"

// ErrNotFound indicates no outcome has been recorded for the path.
var ErrNotFound = errors.New("repository: outcome not found")

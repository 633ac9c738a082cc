package service

import "errors"

var (
	// ErrNoInputs indicates the input patterns matched nothing.
	ErrNoInputs = errors.New("no input recordings matched")
	// ErrBadPattern indicates a malformed glob pattern.
	ErrBadPattern = errors.New("bad input pattern")
)

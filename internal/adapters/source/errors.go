package source

import "errors"

// Sentinel kinds for input errors.
var (
	ErrNoInput       = errors.New("no match files found")
	ErrMissingColumn = errors.New("required column missing")
	ErrReadInput     = errors.New("read input")
)

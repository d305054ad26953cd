package store

import "errors"

var (
	// ErrEmptyPath is returned when a sink is built without a destination.
	ErrEmptyPath = errors.New("store: empty output path")
	// ErrDecode is returned when a persisted file cannot be read back.
	ErrDecode = errors.New("store: decode")
)

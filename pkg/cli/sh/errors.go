package sh

import "errors"

var (
	// ErrBadHex indicates the argument is not a hex byte string.
	ErrBadHex = errors.New("invalid hex bytes")
	// ErrNotOpen indicates the command requires an open source.
	ErrNotOpen = errors.New("no source opened")
)

package source

import "errors"

var (
	// ErrUnknownScheme indicates the source URL scheme is not supported.
	ErrUnknownScheme = errors.New("unsupported source scheme")
	// ErrNoAddress indicates the source URL has no device or host.
	ErrNoAddress = errors.New("missing source address")
)

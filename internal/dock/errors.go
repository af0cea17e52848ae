package dock

import "errors"

var (
	// ErrNotFound is returned for unknown panels and missing bindings.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest is returned for self-snaps, unknown enum values and
	// malformed configs.
	ErrInvalidRequest = errors.New("invalid request")
)

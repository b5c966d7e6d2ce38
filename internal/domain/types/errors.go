package types

import "errors"

// Sentinel kinds for validation errors. Callers match with errors.Is.
var (
	ErrInvalidID  = errors.New("invalid identifier")
	ErrOutOfRange = errors.New("value out of range")
)

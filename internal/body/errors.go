package body

import "errors"

// Domain errors for store operations.
var (
	// ErrInvalidBody indicates a spec or update with non-positive mass or
	// radius, or non-finite components.
	ErrInvalidBody = errors.New("body: invalid body")

	// ErrNotFound indicates a stale or unknown body id.
	ErrNotFound = errors.New("body: not found")
)

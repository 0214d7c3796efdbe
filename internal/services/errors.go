package services

import "errors"

// Error taxonomy recovered at the service boundary. The HTTP layer maps
// these to status codes; stock shortages are not part of the taxonomy
// because they travel as data in a CommitResult, never as an error.
var (
	// ErrNotFound means a referenced order, address, product or user does
	// not exist. NotFound is checked before ownership, so existence is not
	// hidden from unauthorized callers.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized means the authenticated actor lacks rights over the
	// target resource (wrong owner or wrong role).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidOperation means a structurally valid request violates a
	// business rule: wrong status for a transition, empty detail list,
	// mismatched payment amount.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrArgument means malformed input, rejected before any I/O.
	ErrArgument = errors.New("invalid argument")
)

package flows

import "errors"

var (
	// ErrNotFound indicates a flow was not found.
	ErrNotFound = errors.New("flow not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict indicates a flow already exists for the category/problem pair.
	ErrConflict = errors.New("flow already exists")
)

package sessions

import "errors"

var (
	// ErrNotFound indicates a session was not found.
	ErrNotFound = errors.New("session not found")

	// ErrForbidden indicates the session belongs to another user.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCompleted indicates the session has already been resolved.
	ErrCompleted = errors.New("session already completed")
)

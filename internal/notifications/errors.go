package notifications

import "errors"

var (
	// ErrNotFound indicates a notification was not found.
	ErrNotFound = errors.New("notification not found")

	// ErrForbidden indicates the notification belongs to another user.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")
)

package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrStatusChanged = errors.New("booking status changed concurrently")

	ErrLockHeld = errors.New("listing is locked by another booking request")

	ErrLockLost = errors.New("booking lock is no longer held by this request")

	ErrInvalidDateRange = errors.New("check-out must be after check-in")
)

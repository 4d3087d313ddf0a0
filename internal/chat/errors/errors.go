package errors

import "errors"

var (
	ErrInvalidID = errors.New("invalid message participant ID format")
)

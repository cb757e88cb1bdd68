package messaging

import "errors"

// Domain-level validation errors for direct messaging.
var (
	ErrMissingParties = errors.New("messaging: sender and receiver ids are required")
	ErrSelfMessage    = errors.New("messaging: sender and receiver must differ")
	ErrEmptyMessage   = errors.New("messaging: message text is empty")
)

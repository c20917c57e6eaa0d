package store

import "errors"

// Sentinel errors for the API layer to map onto HTTP statuses. Store methods
// wrap these with context via fmt.Errorf and %w.
var (
	// ErrNotFound means a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the request is well-formed but violates a business
	// rule (insufficient quantity, bad blend percentages, inactive session).
	ErrValidation = errors.New("validation failed")

	// ErrConflict means a unique constraint or an optimistic-concurrency
	// version check failed.
	ErrConflict = errors.New("conflict")
)

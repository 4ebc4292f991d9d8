package model

import "errors"

// Error kinds surfaced by store operations. Callers match them with
// errors.Is and translate them into their own failure reporting.
var (
	// ErrNotFound means a referenced customer, material, serial or user
	// does not exist. Assignment also returns it for serials that exist
	// but are already assigned, so callers cannot probe availability.
	ErrNotFound = errors.New("not found")

	// ErrConflict means an insert collided with an existing identifier.
	ErrConflict = errors.New("already exists")

	// ErrValidation means a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")
)

package repositories

import "errors"

// Sentinel errors translated to HTTP statuses at the controller boundary.
var (
	// ErrNotFound means no document matched the identifier.
	ErrNotFound = errors.New("pokemon not found")

	// ErrInvalidID means the identifier is not a valid ObjectID hex string.
	ErrInvalidID = errors.New("invalid pokemon id format")

	// ErrDuplicate means the storage layer rejected a write on a unique
	// constraint. Distinct from a schema validation failure.
	ErrDuplicate = errors.New("pokemon with this name already exists")
)

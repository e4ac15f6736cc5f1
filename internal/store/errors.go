package store

import "errors"

// Domain errors for the store package.
var (
	// ErrIndexNotIncreasing is returned when an append's index is not
	// greater than the previous index appended through the same Store.
	ErrIndexNotIncreasing = errors.New("store: index not increasing")

	// ErrInvalidTimestamp is returned for a negative or non-finite
	// elapsed time.
	ErrInvalidTimestamp = errors.New("store: invalid timestamp")

	// ErrNoPath is returned when the store has no file configured.
	ErrNoPath = errors.New("store: path is required")
)

package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrMalformedInput indicates a descriptor missing required fields
	ErrMalformedInput = errors.New("malformed input")

	// ErrStorageUnavailable indicates the backing store cannot be reached.
	// A miss is a nil result, never this error.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrConflictingWrite indicates a concurrent write to the same track
	// identity; recoverable by retrying the write as a merge
	ErrConflictingWrite = errors.New("conflicting write")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)

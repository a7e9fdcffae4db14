package errs

import "errors"

// Engine-wide sentinels shared across the usecase layer
var (
	// ErrTransient covers lock timeouts, deadlocks, serialization failures and
	// any storage failure the caller can only answer by retrying.
	ErrTransient = errors.New("transient failure, please retry")

	ErrNotFound            = errors.New("not found")
	ErrResourceNotFound    = errors.New("resource not found")
	ErrReservationNotFound = errors.New("reservation not found")

	// Optimistic concurrency: the row changed between read and write.
	ErrVersionConflict = errors.New("version conflict")

	ErrInvalidRequest = errors.New("invalid request")
)

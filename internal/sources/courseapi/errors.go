package courseapi

import "errors"

var (
	// ErrUnauthorized reports a missing or expired credential (401/403
	// from the course service). Never retried automatically.
	ErrUnauthorized = errors.New("credential rejected by course service")

	// ErrRejected reports a non-success status from the course service.
	// For mutations this means the operation must not be applied locally.
	ErrRejected = errors.New("request rejected by course service")
)

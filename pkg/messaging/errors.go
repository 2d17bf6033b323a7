package messaging

import "errors"

// Build errors. None of them are retryable: they describe the builder input
// (or, for ErrSerialization, a bug), not a transient condition.
var (
	// ErrMissingBody is reserved; no builder currently returns it.
	ErrMissingBody      = errors.New("missing body in the message")
	ErrSerialization    = errors.New("error during message serialization")
	ErrMissingKey       = errors.New("missing at least one key in the message")
	ErrMissingMessage   = errors.New("missing message content")
	ErrMissingMediaItem = errors.New("missing media item")
)

package history

import "errors"

var (
	// ErrStoreUnavailable means the history backend could not be reached.
	ErrStoreUnavailable = errors.New("history store unavailable")
	ErrInvalidRecord    = errors.New("invalid history record")
)

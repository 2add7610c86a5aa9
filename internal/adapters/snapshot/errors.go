package snapshot

import "errors"

// Sentinel kinds for snapshot storage errors.
var (
	ErrNotFound         = errors.New("key not found")
	ErrStoreUnavailable = errors.New("snapshot store unavailable")
)

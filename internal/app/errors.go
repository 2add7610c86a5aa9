package app

import "errors"

// Sentinel kinds for service wiring and branch failures.
var (
	ErrNoFetcher       = errors.New("no fetcher configured")
	ErrNoSnapshotCodec = errors.New("no snapshot codec configured")
	ErrBranchFailed    = errors.New("derivation branch failed")
)

package sheet

import "errors"

// Sentinel kinds for ingest errors.
var (
	ErrFetch = errors.New("sheet fetch failed")
	ErrParse = errors.New("sheet parse failed")
)

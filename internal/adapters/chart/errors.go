package chart

import "errors"

// Sentinel kinds for rendering errors.
var (
	ErrRender = errors.New("chart render failed")
)

// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped via this package's sentinel kinds.
package config

import (
	"context"
)

// Default snapshot persistence constants, matching the legacy cookie scheme.
const (
	defaultSnapshotChunkSize = 4000
	defaultSnapshotTTLHours  = 24 * 28
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// SheetURL is the base URL of the published spreadsheet, ending in "/".
	SheetURL string `koanf:"sheet_url"`

	// TaskID names the sheet tab holding this task's submissions. It also
	// scopes every snapshot key so different tasks never collide.
	TaskID string `koanf:"task_id"`

	// FetchTimeoutMS bounds a single spreadsheet fetch.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// PollIntervalS refreshes standings on a timer; 0 disables polling so
	// refreshes only happen via POST /refresh.
	PollIntervalS int `koanf:"poll_interval_s"`

	// SnapshotDir is where the chunked standings snapshot is persisted.
	// Empty selects the in-memory store (state lost on restart).
	SnapshotDir string `koanf:"snapshot_dir"`

	// SnapshotChunkSize caps each persisted snapshot chunk, in bytes.
	SnapshotChunkSize int `koanf:"snapshot_chunk_size"`

	// SnapshotTTLHours expires persisted snapshots.
	SnapshotTTLHours int `koanf:"snapshot_ttl_hours"`

	// ChartLegendLimit caps the number of users drawn on trajectory charts.
	ChartLegendLimit int `koanf:"chart_legend_limit"`

	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":9080",
		SheetURL:          "",
		TaskID:            "",
		FetchTimeoutMS:    10_000,
		PollIntervalS:     0,
		SnapshotDir:       "",
		SnapshotChunkSize: defaultSnapshotChunkSize,
		SnapshotTTLHours:  defaultSnapshotTTLHours,
		ChartLegendLimit:  20,
		MaxStandingsLimit: 100,
	}
}

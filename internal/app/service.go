// Package app wires the ingest boundary, the derivation core and the
// snapshot store into one refreshable pipeline.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heatboard/heatboard/internal/domain/model"
	"github.com/heatboard/heatboard/internal/domain/series"
	"github.com/heatboard/heatboard/internal/domain/standings"
	"github.com/heatboard/heatboard/pkg/logger"
	"github.com/heatboard/heatboard/pkg/metrics"
)

const nanosPerMillisecond = 1e6

// Fetcher materializes a submission set from the outside world.
type Fetcher interface {
	Fetch(ctx context.Context) (model.SubmissionSet, error)
}

// SnapshotCodec persists standings snapshots across runs.
type SnapshotCodec interface {
	Write(ctx context.Context, entries []model.SnapshotEntry) error
	Read(ctx context.Context) []model.SnapshotEntry
}

// Status describes the outcome of the most recent refresh, successful or
// not.
type Status struct {
	RunID       string    `json:"run_id"`
	RefreshedAt time.Time `json:"refreshed_at"`
	Users       int       `json:"users"`
	// FetchError is set when the run's ingest failed; no derivation ran
	// and the previous artifacts stay in place.
	FetchError string `json:"fetch_error,omitempty"`
	// Per-branch failures; empty when the branch settled cleanly. One
	// branch failing never suppresses the other's artifacts.
	StandingsError string `json:"standings_error,omitempty"`
	SeriesError    string `json:"series_error,omitempty"`
}

// Service holds the latest derived artifacts and refreshes them on demand
// or on a timer.
type Service struct {
	mu sync.RWMutex

	fetcher      Fetcher
	snapshots    SnapshotCodec
	pollInterval time.Duration
	logger       logger.Logger

	standings []model.StandingsRow
	series    *series.Result
	status    Status

	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithFetcher sets the submission source.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithSnapshotCodec sets the snapshot persistence.
func WithSnapshotCodec(c SnapshotCodec) Option {
	return func(s *Service) {
		if c != nil {
			s.snapshots = c
		}
	}
}

// WithPollInterval refreshes on a timer; zero disables polling.
func WithPollInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval >= 0 {
			s.pollInterval = interval
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a Service. A fetcher and snapshot codec must be provided
// before Start.
func New(opts ...Option) *Service {
	s := &Service{
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates wiring and launches the poll loop when configured.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.fetcher == nil {
		return ErrNoFetcher
	}
	if s.snapshots == nil {
		return ErrNoSnapshotCodec
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("app")
	}

	s.started = true
	s.logger.Info(ctx, "standings service started",
		logger.Int64("poll_interval_ms", s.pollInterval.Milliseconds()))

	if s.pollInterval > 0 {
		s.wg.Add(1)
		go s.pollLoop(ctx)
	}
	return nil
}

// Stop terminates the poll loop and waits for it to settle.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Service) pollLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			if _, err := s.Refresh(ctx); err != nil {
				s.logger.Warn(ctx, "scheduled refresh failed", logger.Error(err))
			}
		}
	}
}

// Refresh fetches the submission set and re-derives both artifacts. The
// standings and series branches run concurrently; each branch's failure is
// caught and logged without aborting the other, and the refresh completes
// once both have settled. Only a fetch failure is returned as an error.
func (s *Service) Refresh(ctx context.Context) (string, error) {
	runID := uuid.New().String()
	metrics.RecordRefresh()
	s.logger.Info(ctx, "refreshing standings", logger.String("run_id", runID))

	set, err := s.fetcher.Fetch(ctx)
	if err != nil {
		s.logger.Error(ctx, "fetch failed", logger.String("run_id", runID), logger.Error(err))
		s.mu.Lock()
		s.status = Status{
			RunID:       runID,
			RefreshedAt: time.Now(),
			FetchError:  err.Error(),
		}
		s.mu.Unlock()
		return runID, fmt.Errorf("fetch submissions: %w", err)
	}

	var (
		rows         []model.StandingsRow
		standingsErr error
		result       *series.Result
		seriesErr    error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		standingsErr = s.runBranch(ctx, "standings", func() {
			rows = s.deriveStandings(ctx, set)
		})
	}()
	go func() {
		defer wg.Done()
		seriesErr = s.runBranch(ctx, "series", func() {
			result = series.Build(set)
		})
	}()
	wg.Wait()

	s.mu.Lock()
	if standingsErr == nil {
		s.standings = rows
		metrics.UpdateTrackedUsers(len(rows))
	}
	if seriesErr == nil {
		s.series = result
		metrics.UpdateTimeBins(len(result.Bins))
	}
	s.status = Status{
		RunID:          runID,
		RefreshedAt:    time.Now(),
		Users:          len(set),
		StandingsError: errString(standingsErr),
		SeriesError:    errString(seriesErr),
	}
	s.mu.Unlock()

	s.logger.Info(ctx, "refresh complete",
		logger.String("run_id", runID),
		logger.Int("users", len(set)))
	return runID, nil
}

// deriveStandings builds the ranked table, resolves deltas against the
// prior snapshot and persists the new one for the next run.
func (s *Service) deriveStandings(ctx context.Context, set model.SubmissionSet) []model.StandingsRow {
	rows := standings.Build(set)
	prev := s.snapshots.Read(ctx)
	standings.ApplyPrevious(rows, prev)

	// A failed write only costs the next run its deltas; the current
	// artifact is already complete.
	if err := s.snapshots.Write(ctx, standings.ToSnapshot(rows)); err != nil {
		s.logger.Warn(ctx, "snapshot write failed", logger.Error(err))
	}
	return rows
}

// runBranch executes one derivation branch, converting panics to logged
// branch errors so the sibling branch always gets to finish.
func (s *Service) runBranch(ctx context.Context, name string, fn func()) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", ErrBranchFailed, name, r)
			metrics.RecordBranchError(name)
			s.logger.Error(ctx, "derivation branch failed",
				logger.String("branch", name),
				logger.Any("panic", r))
		}
		metrics.RecordDeriveDuration(name, float64(time.Since(start).Nanoseconds())/nanosPerMillisecond)
	}()
	fn()
	return nil
}

// Standings returns the latest ranked table in display order.
func (s *Service) Standings(_ context.Context) []model.StandingsRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]model.StandingsRow, len(s.standings))
	copy(rows, s.standings)
	return rows
}

// Series returns the latest score/rank matrices.
func (s *Service) Series(_ context.Context) *series.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series
}

// Distribution returns the latest final-bin score distribution.
func (s *Service) Distribution(ctx context.Context) []series.DistributionBar {
	res := s.Series(ctx)
	if res == nil {
		return nil
	}
	return res.Distribution()
}

// Status returns the outcome of the most recent refresh.
func (s *Service) Status(_ context.Context) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

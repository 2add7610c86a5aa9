package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heatboard/heatboard/internal/adapters/chart"
	"github.com/heatboard/heatboard/internal/adapters/http/api"
	"github.com/heatboard/heatboard/internal/adapters/sheet"
	"github.com/heatboard/heatboard/internal/adapters/snapshot"
	"github.com/heatboard/heatboard/internal/app"
	"github.com/heatboard/heatboard/internal/config"
	"github.com/heatboard/heatboard/pkg/logger"
	"github.com/heatboard/heatboard/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := buildStore(cfg)
	if err != nil {
		os.Stderr.WriteString("failed to open snapshot store: " + err.Error() + "\n")
		return
	}
	codec := snapshot.NewCodec(store, cfg.TaskID,
		snapshot.WithChunkSize(cfg.SnapshotChunkSize),
		snapshot.WithTTL(time.Duration(cfg.SnapshotTTLHours)*time.Hour),
	)
	fetcher := sheet.New(cfg.SheetURL, cfg.TaskID,
		sheet.WithTimeout(time.Duration(cfg.FetchTimeoutMS)*time.Millisecond),
	)
	renderer := chart.New(chart.WithLegendLimit(cfg.ChartLegendLimit))

	svc := app.New(
		app.WithLogger(log),
		app.WithFetcher(fetcher),
		app.WithSnapshotCodec(codec),
		app.WithPollInterval(time.Duration(cfg.PollIntervalS)*time.Second),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	// Derive once at startup so the endpoints have data immediately; a
	// failed first fetch is not fatal, the next refresh may succeed.
	if _, err := svc.Refresh(ctx); err != nil {
		log.Warn(ctx, "initial refresh failed", logger.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	api.NewServer(svc, renderer, cfg.MaxStandingsLimit).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// buildStore picks the snapshot backend: file-backed when a directory is
// configured, otherwise in-memory.
func buildStore(cfg *config.Config) (snapshot.Store, error) {
	if cfg.SnapshotDir == "" {
		return snapshot.NewMemoryStore(), nil
	}
	return snapshot.NewFileStore(cfg.SnapshotDir)
}

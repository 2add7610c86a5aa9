// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/heatboard/heatboard/internal/app"
	"github.com/heatboard/heatboard/internal/domain/model"
	"github.com/heatboard/heatboard/internal/domain/series"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Refresh re-derives both artifacts; the returned run ID tags the pass.
	Refresh(ctx context.Context) (string, error)

	// Read operations expose the latest derived artifacts.
	Standings(ctx context.Context) []model.StandingsRow
	Series(ctx context.Context) *series.Result
	Distribution(ctx context.Context) []series.DistributionBar
	Status(ctx context.Context) app.Status
}

// ChartRenderer draws the derived series as PNG images.
type ChartRenderer interface {
	ScoreTrajectories(res *series.Result) ([]byte, error)
	RankTrajectories(res *series.Result) ([]byte, error)
	ScoreDistribution(bars []series.DistributionBar) ([]byte, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	standingsHandler *StandingsHandler
	refreshHandler   *RefreshHandler
	statusHandler    *StatusHandler
	chartsHandler    *ChartsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, renderer ChartRenderer, maxStandingsLimit int) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		standingsHandler: NewStandingsHandler(deps, maxStandingsLimit),
		refreshHandler:   NewRefreshHandler(deps),
		statusHandler:    NewStatusHandler(deps),
		chartsHandler:    NewChartsHandler(deps, renderer),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandlePostRefresh, "refresh"))
	mux.HandleFunc("/status", MetricsMiddleware(s.statusHandler.HandleGetStatus, "status"))
	mux.HandleFunc("/charts/score.png", MetricsMiddleware(s.chartsHandler.HandleScoreChart, "chart_score"))
	mux.HandleFunc("/charts/rank.png", MetricsMiddleware(s.chartsHandler.HandleRankChart, "chart_rank"))
	mux.HandleFunc("/charts/distribution.png", MetricsMiddleware(s.chartsHandler.HandleDistributionChart, "chart_distribution"))
}

// errorResponse is the JSON error shape.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

package api

import (
	"net/http"
)

// ChartsHandler serves the rendered PNG charts.
type ChartsHandler struct {
	deps     Dependencies
	renderer ChartRenderer
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(deps Dependencies, renderer ChartRenderer) *ChartsHandler {
	return &ChartsHandler{deps: deps, renderer: renderer}
}

// HandleScoreChart handles GET /charts/score.png requests.
func (h *ChartsHandler) HandleScoreChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart_score"
	h.servePNG(w, r, op, func() ([]byte, error) {
		res := h.deps.Series(r.Context())
		if res == nil {
			return nil, NewKind(op, ErrNoSeries)
		}
		return h.renderer.ScoreTrajectories(res)
	})
}

// HandleRankChart handles GET /charts/rank.png requests.
func (h *ChartsHandler) HandleRankChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart_rank"
	h.servePNG(w, r, op, func() ([]byte, error) {
		res := h.deps.Series(r.Context())
		if res == nil {
			return nil, NewKind(op, ErrNoSeries)
		}
		return h.renderer.RankTrajectories(res)
	})
}

// HandleDistributionChart handles GET /charts/distribution.png requests.
func (h *ChartsHandler) HandleDistributionChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart_distribution"
	h.servePNG(w, r, op, func() ([]byte, error) {
		return h.renderer.ScoreDistribution(h.deps.Distribution(r.Context()))
	})
}

func (h *ChartsHandler) servePNG(w http.ResponseWriter, r *http.Request, op string, render func() ([]byte, error)) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	data, err := render()
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "chart_unavailable", Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

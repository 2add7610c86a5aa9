package api

import (
	"net/http"
)

// RefreshHandler triggers a derivation pass.
type RefreshHandler struct {
	deps Dependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps Dependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// refreshResponse mirrors the POST /refresh response shape.
type refreshResponse struct {
	RunID string `json:"run_id"`
}

// HandlePostRefresh handles POST /refresh requests.
func (h *RefreshHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_refresh"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	runID, err := h.deps.Refresh(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "fetch_failed", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{RunID: runID})
}

// StatusHandler reports the outcome of the most recent refresh.
type StatusHandler struct {
	deps Dependencies
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(deps Dependencies) *StatusHandler {
	return &StatusHandler{deps: deps}
}

// HandleGetStatus handles GET /status requests.
func (h *StatusHandler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Status(r.Context()))
}

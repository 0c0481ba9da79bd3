package api

import (
	"net/http"
)

// AnalysisHandler serves the read-only analytics endpoints.
type AnalysisHandler struct {
	deps AnalysisDependencies
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(deps AnalysisDependencies) *AnalysisHandler {
	return &AnalysisHandler{deps: deps}
}

// HandleGetRecommendation handles GET /recommendation.
func (h *AnalysisHandler) HandleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Recommend(r.Context()))
}

// HandleGetPatterns handles GET /patterns.
func (h *AnalysisHandler) HandleGetPatterns(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Patterns(r.Context()))
}

// HandleGetHeatmap handles GET /heatmap and GET /heatmap?format=text.
func (h *AnalysisHandler) HandleGetHeatmap(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_heatmap"
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	heatmap := h.deps.Heatmap(r.Context())
	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, heatmap)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(heatmap.String()))
	default:
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
	}
}

package api

import (
	"net/http"

	"github.com/okian/racebet/internal/domain/analysis"
	"github.com/okian/racebet/internal/domain/model"
)

// raceResponse is one history row with its finishing order.
type raceResponse struct {
	Game  model.GameID                        `json:"game,omitempty"`
	Round int                                 `json:"round"`
	Ranks [model.Positions]model.CompetitorID `json:"ranks"`
	Order analysis.OrderKey                   `json:"order"`
}

// HistoryHandler serves the recorded races and the live session.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleGetRaces handles GET /races.
func (h *HistoryHandler) HandleGetRaces(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	rows := h.deps.Snapshot(r.Context()).Rows()
	out := make([]raceResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, raceResponse{
			Game:  row.Game,
			Round: row.Round,
			Ranks: row.Ranks,
			Order: analysis.OrderKeyOf(row),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGetSession handles GET /session.
func (h *HistoryHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Session(r.Context()))
}

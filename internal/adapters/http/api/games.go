package api

import (
	"errors"
	"net/http"

	service "github.com/okian/racebet/internal/app"
)

// GamesHandler starts and finishes games.
type GamesHandler struct {
	deps GameDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

// HandleStartGame handles POST /games.
func (h *GamesHandler) HandleStartGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.start_game"
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	sess, err := h.deps.StartGame(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNotStarted) {
			writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// HandleFinishGame handles POST /games/current/finish.
func (h *GamesHandler) HandleFinishGame(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	writeJSON(w, http.StatusOK, h.deps.FinishGame(r.Context()))
}

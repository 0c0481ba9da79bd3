package api

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	service "github.com/okian/racebet/internal/app"
	"github.com/okian/racebet/internal/domain/analysis"
	"github.com/okian/racebet/internal/domain/model"
	"github.com/okian/racebet/internal/domain/session"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AnalysisDependencies
	HistoryDependencies
	GameDependencies
	ResultDependencies
}

// AnalysisDependencies exposes the read-only analytics.
type AnalysisDependencies interface {
	Recommend(ctx context.Context) service.Recommendation
	Patterns(ctx context.Context) []analysis.PatternEntry
	Heatmap(ctx context.Context) analysis.Heatmap
}

// HistoryDependencies exposes the recorded races and the live session.
type HistoryDependencies interface {
	Snapshot(ctx context.Context) model.Table
	Session(ctx context.Context) session.Session
}

// GameDependencies drives the game lifecycle.
type GameDependencies interface {
	StartGame(ctx context.Context) (session.Session, error)
	FinishGame(ctx context.Context) session.Session
}

// ResultDependencies records races.
type ResultDependencies interface {
	Submit(ctx context.Context, submissionID string, positions []model.CompetitorID) (service.SubmitResult, error)
}

// Server wires handlers to their dependencies.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	analysisHandler *AnalysisHandler
	historyHandler  *HistoryHandler
	gamesHandler    *GamesHandler
	resultsHandler  *ResultsHandler
}

// NewServer creates a Server backed by deps.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(nil),
		statsHandler:    NewStatsHandler(statsProvider),
		analysisHandler: NewAnalysisHandler(deps),
		historyHandler:  NewHistoryHandler(deps),
		gamesHandler:    NewGamesHandler(deps),
		resultsHandler:  NewResultsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/recommendation", MetricsMiddleware(s.analysisHandler.HandleGetRecommendation, "recommendation"))
	mux.HandleFunc("/patterns", MetricsMiddleware(s.analysisHandler.HandleGetPatterns, "patterns"))
	mux.HandleFunc("/heatmap", MetricsMiddleware(s.analysisHandler.HandleGetHeatmap, "heatmap"))
	mux.HandleFunc("/races", MetricsMiddleware(s.historyHandler.HandleGetRaces, "races"))
	mux.HandleFunc("/session", MetricsMiddleware(s.historyHandler.HandleGetSession, "session"))
	mux.HandleFunc("/games", MetricsMiddleware(s.gamesHandler.HandleStartGame, "games"))
	mux.HandleFunc("/games/current/finish", MetricsMiddleware(s.gamesHandler.HandleFinishGame, "games_finish"))
	mux.HandleFunc("/results", MetricsMiddleware(s.resultsHandler.HandlePostResult, "results"))
}

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

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(r.URL.Path, ErrMethodNotAllowed))
	return false
}

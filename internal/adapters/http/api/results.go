package api

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/goccy/go-json"

	"github.com/okian/racebet/internal/adapters/mq/queue"
	service "github.com/okian/racebet/internal/app"
	"github.com/okian/racebet/internal/domain/model"
	"github.com/okian/racebet/internal/domain/session"
)

const maxResultBodyBytes = 1 << 16

// resultRequest mirrors the OpenAPI schema for POST /results.
type resultRequest struct {
	SubmissionID string `json:"submission_id" validate:"omitempty,max=128"`
	Positions    []int  `json:"positions" validate:"required,len=4,unique,dive,min=1"`
}

func (req resultRequest) competitors() []model.CompetitorID {
	out := make([]model.CompetitorID, len(req.Positions))
	for i, p := range req.Positions {
		out[i] = model.CompetitorID(p)
	}
	return out
}

// ResultsHandler records race results.
type ResultsHandler struct {
	deps ResultDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandlePostResult handles POST /results.
func (h *ResultsHandler) HandlePostResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_result"
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req resultRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxResultBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Submit(r.Context(), strings.TrimSpace(req.SubmissionID), req.competitors())
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	if res.Duplicate {
		writeJSON(w, http.StatusOK, res)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// statusFor maps submission errors to HTTP status codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalidPositions):
		return http.StatusBadRequest, "invalid_positions"
	case errors.Is(err, session.ErrNoActiveGame):
		return http.StatusConflict, "no_active_game"
	case errors.Is(err, service.ErrSubmissionInProgress):
		return http.StatusConflict, "in_progress"
	// ErrClosed wraps ErrBackpressure, so it is matched first.
	case errors.Is(err, queue.ErrClosed),
		errors.Is(err, service.ErrNotStarted),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, queue.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// jsonFieldName reports validation failures by their JSON names.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/fairway/internal/adapters/repository"
)

// HistoryDependencies defines the read side of the shot history.
type HistoryDependencies interface {
	Latest(ctx context.Context) (repository.Record, error)
	Get(ctx context.Context, id string) (repository.Record, error)
	TopN(ctx context.Context, n int) ([]repository.Entry, error)
}

// HistoryHandler serves stored analyses.
type HistoryHandler struct {
	deps     HistoryDependencies
	maxLimit int
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies, maxLimit int) *HistoryHandler {
	if maxLimit < 1 {
		maxLimit = defaultMaxLimit
	}
	return &HistoryHandler{deps: deps, maxLimit: maxLimit}
}

// HandleLatest handles GET /shots/latest.
func (h *HistoryHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.Latest(r.Context())
	if err != nil {
		writeStoreError(w, "api.latest_shot", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleGet handles GET /shots/{id}.
func (h *HistoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeStoreError(w, "api.get_shot", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleTop handles GET /shots/top?limit=N. A missing limit defaults to 10;
// a limit above the configured maximum is capped.
func (h *HistoryHandler) HandleTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.top_shots"

	n := defaultTopLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", wrap(op, ErrBadRequest, errors.New("limit must be a positive integer")))
			return
		}
		n = v
	}
	n = min(n, h.maxLimit)

	entries, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeStoreError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, ErrBadRequest, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/okian/fairway/internal/adapters/mq/queue"
	"github.com/okian/fairway/internal/domain/dedupe"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/pkg/metrics"
)

// ShotDependencies defines what shot intake needs.
type ShotDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, s queue.Shot) error
}

// ShotsHandler handles asynchronous shot intake.
type ShotsHandler struct {
	deps ShotDependencies
	now  func() time.Time
}

// NewShotsHandler creates a new shots handler.
func NewShotsHandler(deps ShotDependencies) *ShotsHandler {
	return &ShotsHandler{deps: deps, now: time.Now}
}

// HandlePostShot handles POST /shots.
func (h *ShotsHandler) HandlePostShot(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_shot"

	var msg model.ShotMessage
	if err := decodeShot(w, r, op, &msg); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	id := msg.Key()
	if h.deps.SeenAndRecord(r.Context(), id) {
		metrics.RecordShotDuplicate()
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", ID: id, Duplicate: true})
		return
	}

	err := h.deps.Enqueue(r.Context(), queue.Shot{ID: id, Shot: msg, ReceivedAt: h.now().UTC()})
	if err != nil {
		// Forget the key so the device can resend.
		h.deps.Unrecord(r.Context(), id)
		if errors.Is(err, queue.ErrFull) {
			writeError(w, http.StatusTooManyRequests, "backpressure", wrap(op, ErrBackpressure, err))
			return
		}
		writeError(w, http.StatusServiceUnavailable, "unavailable", wrap(op, ErrUnavailable, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", ID: id})
}

package api

import (
	"context"
	"net/http"

	"github.com/okian/fairway/internal/domain/analysis"
	"github.com/okian/fairway/internal/domain/model"
)

// Engine analyses one shot synchronously.
type Engine interface {
	Analyze(ctx context.Context, in analysis.Input) analysis.Result
}

// AnalyzeHandler handles synchronous analysis requests.
type AnalyzeHandler struct {
	engine Engine
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(engine Engine) *AnalyzeHandler {
	return &AnalyzeHandler{engine: engine}
}

// HandleAnalyze handles POST /analyze. The shot is not stored.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"

	var msg model.ShotMessage
	if err := decodeShot(w, r, op, &msg); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	res := h.engine.Analyze(r.Context(), analysis.Input{
		Measurement: msg.Measurement(),
		Handedness:  msg.Handedness,
	})
	writeJSON(w, http.StatusOK, res)
}

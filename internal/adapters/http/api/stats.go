package api

import (
	"maps"
	"net/http"
)

// StatsProvider reports service counters as a flat JSON object.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	provider StatsProvider
	maxLimit int
}

// NewStatsHandler reports provider's counters plus the API's own top limit.
func NewStatsHandler(provider StatsProvider, maxLimit int) *StatsHandler {
	return &StatsHandler{provider: provider, maxLimit: maxLimit}
}

// HandleStats never caches: the counters move with every shot.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	body := maps.Clone(h.provider.GetStats())
	if body == nil {
		body = map[string]any{}
	}
	body["maxTopLimit"] = h.maxLimit

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, body)
}

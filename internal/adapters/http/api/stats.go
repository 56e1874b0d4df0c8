package api

import (
	"net/http"
)

// StatsProvider exposes service statistics for monitoring.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	provider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(provider StatsProvider) *StatsHandler {
	return &StatsHandler{provider: provider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats := h.provider.GetStats()
	stats["ts"] = now().UTC().Format("2006-01-02T15:04:05Z07:00")
	writeJSON(w, http.StatusOK, stats)
}

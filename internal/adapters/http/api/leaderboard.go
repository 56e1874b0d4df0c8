package api

import (
	"net/http"
)

// handleGetLeaderboard handles GET /leaderboard requests. It returns the
// current standings view, including its state, so the surface can
// distinguish loading, empty and unavailable from a populated table.
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.LeaderboardView())
}

// handleGetEvents handles GET /events requests: the slide list plus the
// current carousel index.
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.EventsView())
}

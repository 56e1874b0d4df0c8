// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	service "github.com/swaralaya/scoreboard/internal/app"
	"github.com/swaralaya/scoreboard/internal/domain/model"
	"github.com/swaralaya/scoreboard/internal/domain/standings"
	"github.com/swaralaya/scoreboard/internal/view/carousel"
	"github.com/swaralaya/scoreboard/internal/view/scroll"
)

// Dependencies required by the HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Read operations expose the derived view models.
	LeaderboardView() standings.View
	EventsView() service.EventsView

	// Watch operations feed the WebSocket push routes.
	WatchLeaderboard() (<-chan standings.View, func())
	WatchEvents() (<-chan service.EventsView, func())

	// Carousel exposes the shared slide cursor for manual navigation.
	Carousel() *carousel.Carousel

	// Write operations back the admin routes.
	PutRecord(ctx context.Context, rec model.ScoreRecord) (model.ScoreRecord, error)
	DeleteRecord(ctx context.Context, id string) error
	PutSlide(ctx context.Context, slide model.Slide) (model.Slide, error)
	DeleteSlide(ctx context.Context, id string) error

	// GetStats returns service statistics for monitoring.
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the scoreboard API.
type Server struct {
	deps Dependencies

	adminPassword string
	displayURL    string
	scrollOpts    []scroll.Option

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	wsHandler     *wsHandler
	qrHandler     *qrHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithAdminPassword sets the shared secret gating the admin routes.
func WithAdminPassword(password string) ServerOption {
	return func(s *Server) {
		s.adminPassword = password
	}
}

// WithDisplayURL sets the URL encoded by the QR endpoint.
func WithDisplayURL(url string) ServerOption {
	return func(s *Server) {
		if url != "" {
			s.displayURL = url
		}
	}
}

// WithScrollOptions forwards auto-scroll tuning to the per-connection loops.
func WithScrollOptions(opts ...scroll.Option) ServerOption {
	return func(s *Server) {
		s.scrollOpts = opts
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		deps:          deps,
		displayURL:    "https://scoreboard.vercel.app/",
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.wsHandler = newWSHandler(deps, s.scrollOpts)
	s.qrHandler = newQRHandler(s.displayURL)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.handleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/events", MetricsMiddleware(s.handleGetEvents, "events"))
	mux.HandleFunc("/qr", MetricsMiddleware(s.qrHandler.HandleQR, "qr"))

	// WebSocket routes bypass the metrics middleware; their lifetime is the
	// connection, not a request/response cycle.
	mux.HandleFunc("/ws/leaderboard", s.wsHandler.HandleLeaderboardSocket)
	mux.HandleFunc("/ws/events", s.wsHandler.HandleEventsSocket)

	mux.HandleFunc("/admin/login", MetricsMiddleware(s.handleLogin, "admin_login"))
	mux.HandleFunc("/admin/records", MetricsMiddleware(s.requireAdmin(s.handlePutRecord), "admin_records"))
	mux.HandleFunc("/admin/records/", MetricsMiddleware(s.requireAdmin(s.handleDeleteRecord), "admin_records"))
	mux.HandleFunc("/admin/events", MetricsMiddleware(s.requireAdmin(s.handlePutSlide), "admin_events"))
	mux.HandleFunc("/admin/events/", MetricsMiddleware(s.requireAdmin(s.handleDeleteSlide), "admin_events"))
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

// decodeJSON reads a bounded request body.
func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}

// now is indirected for tests that pin response timestamps.
var now = time.Now

package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/quake-wall/internal/rotation"
	"github.com/couchcryptid/quake-wall/internal/ticker"
)

// DirectiveSource renders the view currently on the wall.
type DirectiveSource interface {
	Directive() rotation.Directive
}

// TickerSource renders the ticker strip and accepts its measured width.
type TickerSource interface {
	Frame() ticker.Frame
	SetContentWidth(w float64)
}

// Server exposes health, readiness, metrics and the display state over HTTP.
type Server struct {
	httpServer *http.Server
	directives DirectiveSource
	ticker     TickerSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /directive and /ticker routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, directives DirectiveSource, tk TickerSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		directives: directives,
		ticker:     tk,
		logger:     logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /directive", s.handleDirective)
	mux.HandleFunc("GET /ticker", s.handleTicker)
	mux.HandleFunc("PUT /ticker/width", s.handleTickerWidth)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleDirective(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.directives.Directive())
}

func (s *Server) handleTicker(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.ticker.Frame())
}

type widthRequest struct {
	Width float64 `json:"width"`
}

// handleTickerWidth lets the display report the measured width of one copy
// of the list. A zero width returns to the estimate.
func (s *Server) handleTickerWidth(w http.ResponseWriter, r *http.Request) {
	var req widthRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body: " + err.Error()})
		return
	}
	if req.Width < 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "width must not be negative"})
		return
	}
	s.ticker.SetContentWidth(req.Width)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response failed", "error", err)
	}
}

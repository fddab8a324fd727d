package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/sensor-feed-dashboard/internal/domain"
	"github.com/couchcryptid/sensor-feed-dashboard/internal/pipeline"
)

// SnapshotSource is the read side of the pipeline.
type SnapshotSource interface {
	sharedobs.ReadinessChecker
	View() (pipeline.State, *domain.Result)
	Status() pipeline.Status
}

// Option configures a Server.
type Option func(*Server)

// WithConditions publishes a weather report on /api/v1/conditions.
// A nil report leaves the endpoint returning 404.
func WithConditions(c *domain.Conditions) Option {
	return func(s *Server) { s.conditions = c }
}

// WithAllowedOrigins sets the CORS origins for the API routes.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) { s.origins = origins }
}

// Server exposes health, readiness, metrics, and the dashboard API.
type Server struct {
	httpServer *http.Server
	source     SnapshotSource
	conditions *domain.Conditions
	origins    []string
	logger     *slog.Logger
}

type snapshotResponse struct {
	State  pipeline.State `json:"state"`
	Result *domain.Result `json:"result"`
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api/v1 routes.
func NewServer(addr string, source SnapshotSource, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		source:  source,
		origins: []string{"*"},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", sharedobs.ReadinessHandler(source)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/snapshot", s.handleSnapshot).Methods(http.MethodGet)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/conditions", s.handleConditions).Methods(http.MethodGet)
	api.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })
	api.Use(handlers.CORS(
		handlers.AllowedOrigins(s.origins),
		handlers.AllowedMethods([]string{http.MethodGet}),
	))

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
	)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      recovery(r),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
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

// handleSnapshot serves the current result. Before the first snapshot the
// result is null and the state tells the dashboard to show a placeholder.
func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	state, result := s.source.View()
	sharedobs.WriteJSON(w, http.StatusOK, snapshotResponse{State: state, Result: result})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.source.Status())
}

func (s *Server) handleConditions(w http.ResponseWriter, _ *http.Request) {
	if s.conditions == nil {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "conditions unavailable"})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.conditions)
}

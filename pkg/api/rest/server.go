package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urbantraffic/agentmap/pkg/api/rest/middleware"
	"github.com/urbantraffic/agentmap/pkg/config"
	"github.com/urbantraffic/agentmap/pkg/observability"
)

// Config holds the REST server's own settings, assembled by the caller
// from a *config.Config (cmd/server does this wiring).
type Config struct {
	Host      string
	Port      int
	Auth      middleware.AuthConfig
	RateLimit middleware.RateLimitConfig
}

// Server is the batch-job HTTP service: it owns a JobStore, a Logger,
// and a Prometheus registry, and exposes them over the job-submission,
// job-status, health, stats and metrics routes.
type Server struct {
	cfg        Config
	handler    *Handler
	logger     *observability.Logger
	metrics    *observability.Metrics
	httpServer *http.Server
	mux        *http.ServeMux

	startTime  time.Time
	shutdownMu sync.Mutex
	isShutdown bool
}

// NewServer builds a Server around store, wiring logging and metrics
// from the supplied collaborators.
func NewServer(cfg Config, store *JobStore, logger *observability.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		cfg:       cfg,
		handler:   NewHandler(store),
		logger:    logger,
		metrics:   metrics,
		mux:       http.NewServeMux(),
		startTime: time.Now(),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.withMiddleware(s.mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/v1/health", s.handler.HealthCheck)
	s.mux.HandleFunc("/v1/stats", s.handler.GetStats)
	s.mux.HandleFunc("/v1/jobs", s.routeJobs)
	s.mux.HandleFunc("/v1/jobs/", s.routeJobsWithID)
	s.mux.Handle("/metrics", promhttp.Handler())
}

// routeJobs handles POST /v1/jobs.
func (s *Server) routeJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		s.handler.SubmitJob(w, r)
		return
	}
	writeError(w, "method not allowed", http.StatusMethodNotAllowed)
}

// routeJobsWithID dispatches GET /v1/jobs/{id} and
// GET /v1/jobs/{id}/mappings.
func (s *Server) routeJobsWithID(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/mappings") {
		s.handler.GetMappings(w, r)
		return
	}
	s.handler.GetJob(w, r)
}

// withMiddleware wraps handler with logging (outermost), rate
// limiting, then JWT auth (innermost).
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	handler = middleware.AuthMiddleware(s.cfg.Auth)(handler)

	limiter := middleware.NewRateLimiter(s.cfg.RateLimit)
	handler = middleware.RateLimitMiddleware(limiter)(handler)

	handler = s.loggingMiddleware(handler)

	return handler
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	access := observability.NewAccessLogger(s.logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		status := fmt.Sprintf("%d", wrapped.statusCode)
		access.LogAccess(r.Method, r.URL.Path, status, duration, nil)

		if s.metrics != nil {
			s.metrics.RecordRequest(r.Method, status, duration)
			if wrapped.statusCode >= http.StatusBadRequest {
				errorType := "client_error"
				if wrapped.statusCode >= http.StatusInternalServerError {
					errorType = "server_error"
				}
				s.metrics.RecordError(r.Method, errorType)
			}
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start runs the HTTP server until it is stopped or fails.
func (s *Server) Start() error {
	s.logger.Info("starting REST API server", map[string]interface{}{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("rest: server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the server, bounded by ctx's deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.shutdownMu.Lock()
	defer s.shutdownMu.Unlock()

	if s.isShutdown {
		return nil
	}
	s.isShutdown = true

	s.logger.Info("shutting down REST API server", nil)
	return s.httpServer.Shutdown(ctx)
}

// Uptime returns how long the server has been running.
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// NewServerFromConfig assembles a Config and Server straight from a
// *config.Config.
func NewServerFromConfig(cfg *config.Config, store *JobStore, logger *observability.Logger, metrics *observability.Metrics) *Server {
	restCfg := Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
		Auth: middleware.AuthConfig{
			Enabled:      cfg.Auth.Enabled,
			JWTSecret:    cfg.Auth.SigningKey,
			PublicPaths:  []string{"/v1/health", "/v1/stats", "/metrics"},
			RequireAdmin: false,
		},
		RateLimit: middleware.RateLimitConfig{
			Enabled:         cfg.RateLimit.Enabled,
			RequestsPerSec:  cfg.RateLimit.RequestsPerSecond,
			Burst:           cfg.RateLimit.Burst,
			PerIP:           true,
			CleanupInterval: cfg.RateLimit.CleanupInterval,
		},
	}
	return NewServer(restCfg, store, logger, metrics)
}

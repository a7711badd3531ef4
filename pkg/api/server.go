// Package api exposes the REST interface for managing simulation sessions.
package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solflu/outbreak/pkg/health"
	"github.com/solflu/outbreak/pkg/logging"
	"github.com/solflu/outbreak/pkg/metrics"
	"github.com/solflu/outbreak/pkg/orchestrator"
)

// Server represents the HTTP API server
type Server struct {
	orchestrator    *orchestrator.Orchestrator
	checker         *health.Checker
	metricsRegistry *metrics.Registry
	logger          logging.Logger
	startTime       time.Time
	version         string
}

// NewServer creates a new API server
func NewServer(o *orchestrator.Orchestrator, checker *health.Checker, registry *metrics.Registry, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	if registry == nil {
		registry = metrics.DefaultRegistry()
	}
	if checker == nil {
		checker = health.NewChecker()
	}

	return &Server{
		orchestrator:    o,
		checker:         checker,
		metricsRegistry: registry,
		logger:          logger.With(logging.Component("api")),
		startTime:       time.Now(),
		version:         "1.0.0",
	}
}

// Handler builds the full HTTP handler with middleware applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("/health", s.checker.HTTPHandler())
	mux.HandleFunc("/health/ready", s.checker.ReadinessHandler())
	mux.HandleFunc("/health/live", s.checker.LivenessHandler())
	mux.Handle("/metrics", promhttp.HandlerFor(
		s.metricsRegistry.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/status", s.handleStatus)

	// Session endpoints
	mux.HandleFunc("/api/v1/simulations", s.handleSessions)
	mux.HandleFunc("/api/v1/simulations/", s.handleSession) // /api/v1/simulations/{id}/...

	return s.panicRecoveryMiddleware(
		s.loggingMiddleware(
			s.metricsMiddleware(
				s.corsMiddleware(
					s.bodySizeLimitMiddleware(mux, 1<<20)))))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		Status:   "ok",
		Version:  s.version,
		Uptime:   time.Since(s.startTime).String(),
		Sessions: len(s.orchestrator.Sessions()),
	}
	s.respondJSON(w, http.StatusOK, response)
}

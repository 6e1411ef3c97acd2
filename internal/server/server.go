package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/smartninja/priceagent/internal/common"
	"github.com/smartninja/priceagent/internal/interfaces"
	"github.com/smartninja/priceagent/internal/services/history"
	"github.com/smartninja/priceagent/internal/services/scheduler"
)

// Server exposes the pipeline, price history, and alert management
// over HTTP, plus a WebSocket stream of pipeline events.
type Server struct {
	config    *common.Config
	logger    arbor.ILogger
	pipeline  interfaces.PipelineRunner
	storage   interfaces.StorageManager
	analyzer  *history.Analyzer
	scheduler *scheduler.Service
	ws        *WebSocketHandler
	server    *http.Server
}

// New creates an HTTP server wired to the given collaborators.
// scheduler may be nil when scheduling is disabled.
func New(
	config *common.Config,
	pipeline interfaces.PipelineRunner,
	storage interfaces.StorageManager,
	analyzer *history.Analyzer,
	sched *scheduler.Service,
	events interfaces.EventService,
	logger arbor.ILogger,
) *Server {
	s := &Server{
		config:    config,
		logger:    logger,
		pipeline:  pipeline,
		storage:   storage,
		analyzer:  analyzer,
		scheduler: sched,
		ws:        NewWebSocketHandler(events, logger),
	}

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.setupRoutes()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // pipeline runs scrape live
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.server.Addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down HTTP server...")

	s.ws.CloseAll()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket event stream
	mux.HandleFunc("/ws", s.ws.HandleWebSocket)

	// Pipeline
	mux.HandleFunc("/api/check", s.handleCheck) // POST - run the full pipeline

	// Price history
	mux.HandleFunc("/api/history", s.handleHistory) // GET - query history entries
	mux.HandleFunc("/api/metrics", s.handleMetrics) // GET - computed history metrics

	// Alerts
	mux.HandleFunc("/api/alerts", s.handleAlerts)               // GET (list), POST (create)
	mux.HandleFunc("/api/alerts/", s.handleAlertByID)           // DELETE /{id}
	mux.HandleFunc("/api/alerts/history", s.handleAlertHistory) // GET - triggered alert log

	// Scheduler
	mux.HandleFunc("/api/scheduler/status", s.handleSchedulerStatus)
	mux.HandleFunc("/api/scheduler/trigger", s.handleSchedulerTrigger)

	// System
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/health", s.handleHealth)

	return mux
}

// withMiddleware wraps the router with the middleware chain. WebSocket
// upgrades bypass everything except CORS.
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ws" {
			handler.ServeHTTP(w, r)
			return
		}
		s.loggingMiddleware(s.corsMiddleware(s.recoveryMiddleware(handler))).ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("duration", time.Since(start).String()).
			Msg("HTTP request")
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().
					Str("path", r.URL.Path).
					Str("panic", fmt.Sprint(rec)).
					Msg("Handler panicked")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/dabengine/pkg/engine"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host             string        `yaml:"host"`               // Host to bind to (default "localhost")
	Port             int           `yaml:"port"`               // Port to listen on (default 5000)
	ReadTimeout      time.Duration `yaml:"read_timeout"`       // Read timeout (default 30s)
	WriteTimeout     time.Duration `yaml:"write_timeout"`      // Write timeout (default 30s)
	IdleTimeout      time.Duration `yaml:"idle_timeout"`       // Idle timeout (default 60s)
	MaxDecideWorkers int           `yaml:"max_decide_workers"` // Max concurrent decisions (default 100)
	MaxUpdateWorkers int           `yaml:"max_update_workers"` // Max concurrent updates (default 1)
}

// DefaultConfig returns a ServerConfig with sensible defaults. The default
// port matches the original service this engine replaces.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host:             "localhost",
		Port:             5000,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     30 * time.Second,
		IdleTimeout:      60 * time.Second,
		MaxDecideWorkers: 100,
		MaxUpdateWorkers: 1,
	}
}

// LoadConfig reads a YAML server configuration file, filling unset fields
// from the defaults.
func LoadConfig(path string) (ServerConfig, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

// Server is the HTTP API server.
type Server struct {
	config   ServerConfig
	engine   *engine.Engine
	handlers *Handlers
	server   *http.Server
	pool     *WorkerPool
	version  string
}

// NewServer creates a new API server.
func NewServer(e *engine.Engine, config ServerConfig, version string) *Server {
	pool := NewWorkerPool(PoolConfig{
		MaxDecideWorkers: config.MaxDecideWorkers,
		MaxUpdateWorkers: config.MaxUpdateWorkers,
	})
	handlers := NewHandlersWithPool(e, version, pool)

	return &Server{
		config:   config,
		engine:   e,
		handlers: handlers,
		pool:     pool,
		version:  version,
	}
}

// Pool returns the worker pool for monitoring.
func (s *Server) Pool() *WorkerPool {
	return s.pool
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handlers.Health)
	mux.HandleFunc("POST /api/move", s.handlers.Move)
	mux.HandleFunc("POST /api/update", s.handlers.Update)
	mux.HandleFunc("POST /api/classify", s.handlers.Classify)
	mux.HandleFunc("GET /api/info", s.handlers.Info)
	mux.HandleFunc("GET /api/stats/stream", s.handlers.StatsSSE)
	mux.HandleFunc("/api/ws", s.handlers.WebSocket)

	return corsMiddleware(loggingMiddleware(mux))
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	log.Info().Str("addr", addr).Str("version", s.version).Msg("starting API server")
	log.Info().Msg("endpoints:")
	log.Info().Msg("  GET  /api/health       - health check")
	log.Info().Msg("  POST /api/move         - choose a move for a board")
	log.Info().Msg("  POST /api/update       - apply an observed outcome")
	log.Info().Msg("  POST /api/classify     - tactical move classification")
	log.Info().Msg("  GET  /api/info         - learning-state snapshot")
	log.Info().Msg("  GET  /api/stats/stream - SSE stream of learning stats")
	log.Info().Msg("  WS   /api/ws           - WebSocket for interactive play")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown starts the server and handles shutdown
// signals.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info().Msg("server stopped gracefully")
	return nil
}

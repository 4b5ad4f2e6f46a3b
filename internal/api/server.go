package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"contractloader/internal/contract"
	"contractloader/internal/decompiler"
)

// HealthChecker reports whether the RPC backend is usable
type HealthChecker interface {
	IsAvailable() bool
}

// Server represents the HTTP API server
// Provides endpoints for Prometheus metrics, health checks and contract lookups
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	loader     *contract.Loader
	decompiler *decompiler.Client
	health     HealthChecker
}

// NewServer creates a new API server instance
// health may be nil, the server then always reports healthy
func NewServer(port int, loader *contract.Loader, decompilerClient *decompiler.Client, health HealthChecker) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:        fmt.Sprintf(":%d", port),
			Handler:     mux,
			ReadTimeout: 15 * time.Second,
			// Decompilation of large contracts is slow
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:        mux,
		loader:     loader,
		decompiler: decompilerClient,
		health:     health,
	}

	// Register all HTTP routes
	s.registerRoutes()

	return s
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.mux
}

// registerRoutes sets up all HTTP routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", s.handleMetrics())

	// Contract endpoints
	s.mux.HandleFunc("/contracts/", s.handleContractRoutes)
}

// handleContractRoutes routes contract sub-endpoints
func (s *Server) handleContractRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/contracts/")
	parts := strings.Split(path, "/")

	if parts[0] == "" {
		s.sendError(w, "Contract ID required", http.StatusBadRequest)
		return
	}

	// GET /contracts/{id}
	if len(parts) == 1 {
		s.handleGetContract(w, r, parts[0])
		return
	}

	// GET /contracts/{id}/storage
	if len(parts) == 2 && parts[1] == "storage" {
		s.handleGetStorage(w, r, parts[0])
		return
	}

	// GET /contracts/{id}/decompiled
	if len(parts) == 2 && parts[1] == "decompiled" {
		s.handleGetDecompiled(w, r, parts[0])
		return
	}

	s.sendError(w, "Endpoint not found", http.StatusNotFound)
}

// Start binds the listening socket and serves in a goroutine.
// Bind errors are returned directly, serve errors are only logged.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	slog.Info("API server starting",
		"addr", ln.Addr().String(),
		"endpoints", []string{"/", "/health", "/metrics", "/contracts/{id}"},
	)

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the HTTP server
// Waits for active connections to close or context to timeout
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("API server shutting down...")
	return s.httpServer.Shutdown(ctx)
}

// Package httpserver exposes the webhook and operational HTTP surface.
package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"barber-bot/internal/convo"
	"barber-bot/internal/metrics"
	"barber-bot/internal/repo"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const apiVersion = "1.0.0"

// Handlers groups the webhook handlers to mount.
type Handlers struct {
	WhatsAppWebhook http.Handler
	BarberResponse  http.Handler
}

// Dependencies exposes core dependencies to handlers that need them.
type Dependencies struct {
	Store repo.Store
}

// Server wraps an http.Server with predefined routes.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	metrics    *metrics.Metrics
	handlers   Handlers
	deps       Dependencies
	basePath   string
}

// New creates a new HTTP server listening on addr with the webhook,
// catalog, health and metrics endpoints.
func New(addr string, logger *slog.Logger, metricRegistry *metrics.Metrics, handlers Handlers, basePath string) *Server {
	server := &Server{
		logger:   logger.With("component", "http"),
		metrics:  metricRegistry,
		handlers: handlers,
		basePath: normaliseBasePath(basePath),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", server.handleRoot)
	mux.HandleFunc("/health", handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/services", server.handleServices)
	mux.HandleFunc("/barbers", server.handleBarbers)

	if handlers.WhatsAppWebhook != nil {
		mux.Handle("/webhook/whatsapp", handlers.WhatsAppWebhook)
	}
	if handlers.BarberResponse != nil {
		mux.Handle("/webhook/barber-responds", handlers.BarberResponse)
	}

	handler := mountWithBasePath(server.basePath, mux)

	server.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if server.basePath != "" {
		server.logger.Info("http server configured with base path", "base_path", server.basePath)
	}

	return server
}

// SetDependencies makes dependencies accessible to handlers.
func (s *Server) SetDependencies(deps Dependencies) {
	s.deps = deps
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for incoming HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server listen: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}

// handleRoot serves the API index on "/" and a JSON 404 on every path no
// other route claimed.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONStatus(w, http.StatusNotFound, map[string]string{
			"error": "route not found",
			"path":  r.URL.Path,
		})
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{
		"message": "Barber WhatsApp Bot API",
		"version": apiVersion,
		"endpoints": map[string]string{
			"health":   "/health",
			"metrics":  "/metrics",
			"services": "/services",
			"barbers":  "/barbers",
			"whatsapp": "/webhook/whatsapp",
			"barber":   "/webhook/barber-responds",
		},
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{
		"status":    "ok",
		"message":   "service running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.Store == nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}

	services, err := s.deps.Store.ListServices(r.Context())
	if err != nil {
		s.logger.Error("failed listing services", "error", err)
		http.Error(w, "failed listing services", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"services":  services,
		"formatted": convo.FormatServices(services),
	})
}

func (s *Server) handleBarbers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.Store == nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}

	barbers, err := s.deps.Store.ListBarbers(r.Context())
	if err != nil {
		s.logger.Error("failed listing barbers", "error", err)
		http.Error(w, "failed listing barbers", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"barbers":   barbers,
		"formatted": convo.FormatBarbers(barbers),
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "failed to encode json", http.StatusInternalServerError)
	}
}

func mountWithBasePath(basePath string, handler http.Handler) http.Handler {
	if basePath == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, basePath) {
			http.NotFound(w, r)
			return
		}
		if len(r.URL.Path) > len(basePath) && r.URL.Path[len(basePath)] != '/' {
			http.NotFound(w, r)
			return
		}
		trimmed := strings.TrimPrefix(r.URL.Path, basePath)
		if trimmed == "" {
			trimmed = "/"
		}
		r.URL.Path = trimmed
		if r.URL.RawPath != "" {
			rawTrimmed := strings.TrimPrefix(r.URL.RawPath, basePath)
			if rawTrimmed == "" {
				rawTrimmed = "/"
			}
			r.URL.RawPath = rawTrimmed
		}
		handler.ServeHTTP(w, r)
	})
}

func normaliseBasePath(base string) string {
	base = strings.TrimSpace(base)
	if base == "" || base == "/" {
		return ""
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	return strings.TrimSuffix(base, "/")
}

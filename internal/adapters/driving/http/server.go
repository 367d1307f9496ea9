package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/folio/internal/binding"
	"github.com/custodia-labs/folio/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// SiteSource exposes the current page state. binding.SiteBinding satisfies it.
type SiteSource interface {
	State() binding.SiteState
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	version    string
	logger     *slog.Logger
	renderer   *renderer

	// Services
	site           SiteSource
	mediaResolver  driving.MediaResolver
	contactService driving.ContactService
	pushService    driving.PushService // Optional: nil disables the push endpoints
	live           *LiveHub            // Optional: nil disables /api/v1/live

	// Infrastructure
	redisClient Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	Version        string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// Services groups what the server renders and relays
type Services struct {
	Site    SiteSource
	Media   driving.MediaResolver
	Contact driving.ContactService
	Push    driving.PushService
	Live    *LiveHub
	Redis   Pinger
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, svc Services) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if svc.Site == nil {
		return nil, errors.New("http server requires a site source")
	}

	r, err := newRenderer(svc.Media)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:         http.NewServeMux(),
		version:        cfg.Version,
		logger:         logger,
		renderer:       r,
		site:           svc.Site,
		mediaResolver:  svc.Media,
		contactService: svc.Contact,
		pushService:    svc.Push,
		live:           svc.Live,
		redisClient:    svc.Redis,
	}

	s.setupRoutes()

	s.handler = NewRecoveryMiddleware(logger).Handler(
		NewLoggingMiddleware(logger).Handler(
			NewCORSMiddleware(cfg.AllowedOrigins).Handler(s.router)))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Pages
	s.router.HandleFunc("GET /{$}", s.handlePage)
	s.router.HandleFunc("GET /service-down", s.handleServiceDown)

	// Site data
	s.router.HandleFunc("GET /api/v1/site", s.handleGetSite)
	s.router.HandleFunc("GET /api/v1/media", s.handleResolveMedia)
	s.router.HandleFunc("POST /api/v1/contact", s.handleContact)

	// Theme preference (cookie)
	s.router.HandleFunc("GET /api/v1/preferences/theme", s.handleGetTheme)
	s.router.HandleFunc("PUT /api/v1/preferences/theme", s.handleSetTheme)

	if s.live != nil {
		s.router.HandleFunc("GET /api/v1/live", s.handleLive)
	}

	// Dashboard push endpoints (push token)
	if s.pushService != nil {
		pushAuth := NewPushAuthMiddleware(s.pushService)
		s.router.Handle("POST /api/v1/push/content",
			pushAuth.Authenticate(http.HandlerFunc(s.handlePushContent)))
		s.router.Handle("POST /api/v1/push/settings",
			pushAuth.Authenticate(http.HandlerFunc(s.handlePushSettings)))
	}
}

// Handler returns the routed handler wrapped in middleware
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server and disconnects live clients
func (s *Server) Stop(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.live != nil {
		s.live.Close()
	}
	return err
}

// Package server assembles the HTTP surface of the admin backend: router,
// middleware chain, health probes, and graceful shutdown.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cebutourist/sugbo/internal/audit"
	"github.com/cebutourist/sugbo/internal/auth"
	"github.com/cebutourist/sugbo/internal/config"
	"github.com/cebutourist/sugbo/internal/gateway"
	"github.com/cebutourist/sugbo/internal/handler"
	"github.com/cebutourist/sugbo/internal/model"
	"github.com/cebutourist/sugbo/internal/probe"
	"github.com/cebutourist/sugbo/internal/server/middleware"
	"github.com/cebutourist/sugbo/internal/service"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
	}
}

// Services bundles the entity services the router exposes.
type Services struct {
	Destinations *service.Destinations
	Delicacies   *service.Delicacies
	Users        *service.Users
	Admins       *service.Admins
}

// Server is the top-level HTTP server. It owns the Chi router, the backend
// gateway, and the token service.
type Server struct {
	cfg        Config
	router     chi.Router
	gw         *gateway.Gateway
	reg        *config.Registry
	tokens     *auth.TokenService
	aud        audit.Recorder
	svcs       Services
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server, wires up all routes and middleware, and returns it
// ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, gw *gateway.Gateway, reg *config.Registry, tokens *auth.TokenService, aud audit.Recorder, svcs Services, logger *slog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		gw:     gw,
		reg:    reg,
		tokens: tokens,
		aud:    aud,
		svcs:   svcs,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))

	// --- Health checks (no auth required) ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	sessionHandler := handler.NewSessionHandler(s.gw, s.tokens, s.aud, s.reg, s.logger)
	destHandler := handler.NewDestinationHandler(s.svcs.Destinations)
	deliHandler := handler.NewDelicacyHandler(s.svcs.Delicacies)
	userHandler := handler.NewUserHandler(s.svcs.Users)
	adminHandler := handler.NewAdminHandler(s.svcs.Admins)

	r.Route("/api/v1", func(r chi.Router) {

		// Login is unauthenticated but throttled per IP by the lockout
		// policy. Logout is self-authenticated.
		r.Group(func(r chi.Router) {
			r.Use(middleware.LoginThrottle(s.reg.Auth.MaxLoginAttempts, s.reg.Auth.LockoutDuration))
			r.Post("/admin/session", sessionHandler.Login)
		})
		r.Delete("/admin/session", sessionHandler.Logout)

		// Everything else requires a live admin session.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(s.tokens, s.gw))

			r.Route("/destinations", func(r chi.Router) {
				r.Get("/", destHandler.List)
				r.Post("/", destHandler.Create)
				r.Get("/stats", destHandler.Statistics)
				r.Get("/export", destHandler.Export)
				r.Get("/{id}", destHandler.Get)
				r.Patch("/{id}", destHandler.Update)
				r.Delete("/{id}", destHandler.Delete)
				r.Post("/{id}/featured", destHandler.ToggleFeatured)
			})

			r.Route("/delicacies", func(r chi.Router) {
				r.Get("/", deliHandler.List)
				r.Post("/", deliHandler.Create)
				r.Get("/stats", deliHandler.Statistics)
				r.Get("/export", deliHandler.Export)
				r.Get("/{id}", deliHandler.Get)
				r.Patch("/{id}", deliHandler.Update)
				r.Delete("/{id}", deliHandler.Delete)
				r.Post("/{id}/featured", deliHandler.ToggleFeatured)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Post("/", userHandler.Create)
				r.Get("/stats", userHandler.Statistics)
				r.Get("/{id}", userHandler.Get)
				r.Patch("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
				r.Post("/{id}/restore", userHandler.Restore)
			})

			// Admin account management is super-admin only. The service
			// enforces the role too; the middleware just fails earlier.
			r.Route("/admins", func(r chi.Router) {
				r.Use(middleware.RequireRole(model.RoleSuperAdmin))
				r.Get("/", adminHandler.List)
				r.Post("/", adminHandler.Create)
				r.Get("/{id}", adminHandler.Get)
				r.Patch("/{id}", adminHandler.Update)
				r.Delete("/{id}", adminHandler.Delete)
			})
		})
	})

	s.router = r
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the backend is
// reachable and every expected table answers, 503 otherwise with the
// detailed probe report.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	report := probe.Check(r.Context(), s.gw)
	status := http.StatusOK
	if report.Status != probe.StatusOK {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(report)
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing the backend connection.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.gw.Close(); err != nil {
		s.logger.Warn("closing backend connection", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

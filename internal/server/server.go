// Package server wires handlers, middleware, and routes, and owns the
// server lifecycle. It is the composition root: every dependency chain
// (DB → repository → service → handler) is assembled here, and the
// resources the server owns are released during graceful shutdown.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tahmid/codefix/internal/auth"
	"github.com/tahmid/codefix/internal/handler"
	"github.com/tahmid/codefix/internal/middleware"
	sqliteRepo "github.com/tahmid/codefix/internal/repository/sqlite"
	"github.com/tahmid/codefix/internal/runner"
	"github.com/tahmid/codefix/internal/service"
)

// Config holds server configuration.
type Config struct {
	Port   int
	DBPath string
	// AuthSecret protects /api/history when set. Empty disables auth
	// and leaves history public.
	AuthSecret string
	// AllowedOrigins is the CORS allowlist for browser clients.
	AllowedOrigins []string
}

// Server is the HTTP server and the resources it owns.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB // closed on shutdown
}

// New creates a Server, opening the database and wiring all routes.
// ai may be nil when no API key is configured; the diagnose endpoints
// then answer 502 instead of the server refusing to start.
func New(cfg Config, logger *slog.Logger, ai service.Completer) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(ai); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and all route handlers.
//
// Route structure:
//
//	POST /api/run       → execute code, unified result
//	POST /api/diagnose  → one-shot AI diagnosis
//	GET  /api/history   → recorded runs (bearer auth when configured)
//	GET  /ws/diagnose   → streaming diagnosis socket
//	GET  /healthz       → liveness probe
func (s *Server) setupRoutes(ai service.Completer) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	orchestrator := runner.New(s.logger)
	runService := service.NewRunService(orchestrator, s.db, s.logger)
	diagnoseService := service.NewDiagnoseService(ai, s.logger)

	runHandler := handler.NewRunHandler(runService, s.logger)
	diagnoseHandler := handler.NewDiagnoseHandler(diagnoseService, s.logger)
	wsHandler := handler.NewWSHandler(diagnoseService, s.logger)

	var requireAuth func(http.Handler) http.Handler
	if s.config.AuthSecret != "" {
		tokens, err := auth.NewTokenService(s.config.AuthSecret)
		if err != nil {
			return fmt.Errorf("configuring auth: %w", err)
		}
		requireAuth = auth.RequireAuth(tokens)
	}

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/run", runHandler.HandleRun)
		r.Post("/diagnose", diagnoseHandler.HandleDiagnose)

		r.Group(func(r chi.Router) {
			if requireAuth != nil {
				r.Use(requireAuth)
			}
			r.Get("/history", runHandler.HandleHistory)
		})
	})

	s.router.Get("/ws/diagnose", wsHandler.HandleDiagnoseWS)

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s,
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		// Code runs can legitimately take up to the execution timeout;
		// the write timeout must not cut them off.
		WriteTimeout: time.Duration(service.MaxTimeoutSeconds+30) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Package server wires the router, middleware, handlers, and their
// dependencies, and owns server startup and graceful shutdown.
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
	"github.com/rs/cors"

	"devboards/internal/auth"
	"devboards/internal/config"
	"devboards/internal/handler"
	"devboards/internal/middleware"
	sqliteRepo "devboards/internal/repository/sqlite"
	"devboards/internal/service"
)

// Server holds the router and the resources it owns. The database
// connection is closed during shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain:
// repositories into services, services into handlers, handlers onto routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
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

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The frontend runs on its own origin and authenticates with the
	// session cookie, so credentialed CORS is required.
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	pinService := service.NewPinService(s.db, s.logger)
	saveService := service.NewSaveService(s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	pinHandler := handler.NewPinHandler(pinService, s.logger)
	saveHandler := handler.NewSaveHandler(saveService)
	userHandler := handler.NewUserHandler(authService, pinService)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))

			r.Get("/pins", pinHandler.HandleList)
			r.Get("/pins/{id}", pinHandler.HandleGetByID)
			r.Get("/users/{id}", userHandler.HandleGetProfile)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", authHandler.HandleMe)

			r.Post("/pins", pinHandler.HandleCreate)
			// /pins/saved must be registered in the same tree as
			// /pins/{id}; chi routes the literal segment first.
			r.Get("/pins/saved", saveHandler.HandleListSaved)
			r.Put("/pins/{id}", pinHandler.HandleUpdate)
			r.Delete("/pins/{id}", pinHandler.HandleDelete)
			r.Post("/pins/{id}/save", saveHandler.HandleSave)
			r.Delete("/pins/{id}/save", saveHandler.HandleUnsave)
		})
	})

	if github != nil {
		s.router.Route("/auth/github", func(r chi.Router) {
			r.Get("/login", authHandler.HandleGitHubLogin)
			r.Get("/callback", authHandler.HandleGitHubCallback)
		})
	} else {
		s.logger.Info("GitHub OAuth not configured, login routes disabled")
	}

	return nil
}

// Start runs the server until SIGINT or SIGTERM, then drains in-flight
// requests and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
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

// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer: it connects handlers, middleware, and routes.
// It decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
// main.go creates:
//
//	config → logger → store (sqlite | postgres) → youtube.Client → server.New
//
// server.New creates:
//
//	TokenService, PasswordService → AuthService ─┐
//	Hub ─────────────────────────→ VideoService ─┼→ handlers → routes
//	                                EventsHandler┘
//
// This is the "composition root" pattern: all dependencies are wired in one
// place, rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/video-share/internal/auth"
	"github.com/sakif/video-share/internal/config"
	"github.com/sakif/video-share/internal/handler"
	"github.com/sakif/video-share/internal/metrics"
	"github.com/sakif/video-share/internal/middleware"
	"github.com/sakif/video-share/internal/notify"
	"github.com/sakif/video-share/internal/repository"
	pgRepo "github.com/sakif/video-share/internal/repository/postgres"
	sqliteRepo "github.com/sakif/video-share/internal/repository/sqlite"
	"github.com/sakif/video-share/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Migrator is implemented by both stores.
type Migrator interface {
	Migrate(ctx context.Context) error
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store. When Start returns, the store is closed to
// flush pending writes and release the file lock (sqlite) or pool (postgres).
type Server struct {
	router  *chi.Mux
	config  *config.Config
	logger  *slog.Logger
	store   repository.Store
	hub     *notify.Hub
	metrics *metrics.Metrics

	passwords *auth.PasswordService
}

// Option customizes a Server at construction.
type Option func(*Server)

// WithPasswordService overrides the bcrypt cost (tests use the minimum).
func WithPasswordService(p *auth.PasswordService) Option {
	return func(s *Server) { s.passwords = p }
}

// New wires every service and handler around store and provider.
//
// Each layer only receives what it needs:
// - Services get repository interfaces (not the concrete DB)
// - Handlers get services (not repositories)
func New(cfg *config.Config, logger *slog.Logger, store repository.Store, provider service.MetadataFetcher, opts ...Option) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("server: creating token service: %w", err)
	}

	m := metrics.New()
	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		store:     store,
		hub:       notify.NewHub(logger, m),
		metrics:   m,
		passwords: auth.NewPasswordService(),
	}
	for _, opt := range opts {
		opt(s)
	}

	authService := service.NewAuthService(store.Users(), tokens, s.passwords, logger, m)
	videoService := service.NewVideoService(authService, store.Videos(), provider, s.hub, cfg.YouTubeTimeout, logger, m)

	s.setupRoutes(tokens, authService, videoService)
	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz             → liveness + store ping
// GET    /metrics             → Prometheus exposition
// POST   /api/auth/register   → create account, returns token   (rate limited)
// POST   /api/auth/login      → exchange credentials for token  (rate limited)
// GET    /api/me              → current user                     (bearer)
// GET    /api/videos          → feed, newest first
// POST   /api/videos          → share a YouTube URL              (bearer)
// GET    /api/events          → realtime SSE stream              (bearer handshake)
//
// MIDDLEWARE ORDER MATTERS:
// 1. RequestID: assigns unique ID to each request (for tracing)
// 2. RealIP: extracts real client IP from proxy headers (httprate keys on it)
// 3. Recoverer: catches panics and returns 500 instead of crashing
// 4. Logger, Metrics: see the final status of every request
// 5. CORS: answers preflights before any route runs
func (s *Server) setupRoutes(tokens *auth.TokenService, authService *service.AuthService, videoService *service.VideoService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(s.metrics))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	healthHandler := handler.NewHealthHandler(s.store, s.logger)
	authHandler := handler.NewAuthHandler(authService, s.logger)
	videoHandler := handler.NewVideoHandler(videoService, s.logger)
	eventsHandler := handler.NewEventsHandler(tokens, s.hub, 0, s.logger)
	requireAuth := auth.RequireAuth(tokens)

	s.router.Get("/healthz", healthHandler.HandleHealthz)
	s.router.Handle("/metrics", s.metrics.Handler())

	s.router.Route("/api", func(r chi.Router) {
		// Credential endpoints are the brute-force target; limit them per IP.
		r.Group(func(r chi.Router) {
			r.Use(httprate.LimitByIP(s.config.RateLimitPerMinute, time.Minute))
			r.Post("/auth/register", authHandler.HandleRegister)
			r.Post("/auth/login", authHandler.HandleLogin)
		})

		r.With(requireAuth).Get("/me", authHandler.HandleMe)

		r.Get("/videos", videoHandler.HandleList)
		r.With(requireAuth).Post("/videos", videoHandler.HandleShare)

		r.Get("/events", eventsHandler.HandleEvents)
	})
}

// Handler exposes the router (tests drive it through httptest).
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub exposes the realtime hub.
func (s *Server) Hub() *notify.Hub {
	return s.hub
}

// Start serves until ctx is cancelled (SIGINT/SIGTERM in main), then shuts
// down gracefully and closes the store.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new connections
// 2. Cancel the base context so open SSE streams return
// 3. Wait for in-flight requests to finish (30s timeout)
// 4. Close the store
//
// errgroup runs the listener and the shutdown watcher side by side; whichever
// fails first cancels the other.
func (s *Server) Start(ctx context.Context) error {
	defer s.store.Close()

	// Request contexts derive from this, so cancelling it ends every stream.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("db_driver", s.config.DBDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listening: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutdown signal received")

		cancelBase()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}

// OpenStore opens the backend cfg.DBDriver names. The sqlite store creates
// its schema on open; postgres does not, call Migrate.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := pgRepo.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverSQLite:
		if cfg.DBPath != ":memory:" {
			// os.MkdirAll is `mkdir -p`: a no-op when the directory exists.
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, fmt.Errorf("server: creating database directory: %w", err)
			}
		}
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("server: unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Migrate brings store's schema up to date.
func Migrate(ctx context.Context, store repository.Store) error {
	m, ok := store.(Migrator)
	if !ok {
		return fmt.Errorf("server: %T cannot migrate", store)
	}
	return m.Migrate(ctx)
}

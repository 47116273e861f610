// Package server exposes diagnosis and intelligent restore over HTTP,
// together with run status and Prometheus metrics.
package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/recoveryd-dev/recoveryd/internal/config"
	"github.com/recoveryd-dev/recoveryd/internal/diagnose"
	"github.com/recoveryd-dev/recoveryd/internal/intel"
	"github.com/recoveryd-dev/recoveryd/internal/recovery"
)

// Server represents the HTTP server
type Server struct {
	router       *gin.Engine
	config       *config.Config
	logger       zerolog.Logger
	validator    *validator.Validate
	registry     *diagnose.Registry
	orchestrator *recovery.Orchestrator
	tracker      *recovery.Tracker
	version      string

	// recoverMu serialises intelligent restores; they share one target directory
	recoverMu sync.Mutex
}

// New creates a new server instance
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	validate := validator.New()

	// Tenants end up in chown arguments; keep them to safe characters
	if err := validate.RegisterValidation("tenant", func(fl validator.FieldLevel) bool {
		return diagnose.ValidTenant(fl.Field().String())
	}); err != nil {
		return nil, err
	}

	registry := diagnose.NewDefaultRegistry(zlog)
	tracker := recovery.NewTracker()
	orchestrator := recovery.NewOrchestrator(
		registry,
		intel.NewStatic(cfg.Intel, zlog),
		cfg.Recovery,
		zlog,
		recovery.WithTracker(tracker),
	)

	server := &Server{
		config:       cfg,
		logger:       zlog.With().Str("component", "http_server").Logger(),
		validator:    validate,
		registry:     registry,
		orchestrator: orchestrator,
		tracker:      tracker,
		version:      version,
	}

	server.setupRouter()

	return server, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	if s.config.DebugMode {
		gin.SetMode(gin.DebugMode)
	}

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	origins := s.config.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/healthz", s.healthz)
	s.router.GET("/status", s.getStatus)
	s.router.GET("/metrics", s.metricsHandler())

	api := s.router.Group("/api")
	{
		api.POST("/repair", s.suggestRepair)
		api.POST("/recover", s.runRecovery)
	}
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address from the server configuration
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))
}

// Start serves HTTP until SIGINT or SIGTERM, then shuts down gracefully
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves HTTP until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.Addr(),
		Handler: s.router,
		// Recoveries run inside the request
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       5 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Str("version", s.version).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.logger.Error().Err(err).Msg("HTTP server error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

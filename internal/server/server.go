// Package server assembles the HTTP API and manages its lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"poker-bankroll/internal/auth"
	"poker-bankroll/internal/config"
	"poker-bankroll/internal/handler"
	"poker-bankroll/internal/service"
)

// Server wraps the gin engine and http.Server with application dependencies.
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	http   *http.Server

	sessionHandler  *handler.SessionHandler
	bankrollHandler *handler.BankrollHandler
	healthHandler   *handler.HealthHandler
}

// Dependencies holds everything the API handlers need.
type Dependencies struct {
	Config          *config.Config
	SessionService  *service.SessionService
	BankrollService *service.BankrollService
	StatsService    *service.StatsService
	// DB backs /readyz. Leave nil when running without a database.
	DB handler.Pinger
}

// New creates a new Server with the given dependencies.
func New(deps *Dependencies) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}
	if deps.SessionService == nil || deps.BankrollService == nil || deps.StatsService == nil {
		return nil, fmt.Errorf("session, bankroll and stats services are required")
	}

	if deps.Config.Server.Mode != "" {
		gin.SetMode(deps.Config.Server.Mode)
	}

	s := &Server{
		cfg:             deps.Config,
		engine:          gin.New(),
		sessionHandler:  handler.NewSessionHandler(deps.SessionService),
		bankrollHandler: handler.NewBankrollHandler(deps.BankrollService, deps.StatsService),
		healthHandler:   handler.NewHealthHandler(deps.DB),
	}

	s.registerMiddleware()
	s.registerHandlers()

	s.http = &http.Server{
		Addr:         deps.Config.Server.Addr,
		Handler:      s.engine,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
	}

	return s, nil
}

// registerMiddleware registers all middleware.
func (s *Server) registerMiddleware() {
	s.engine.Use(RecoveryMiddleware())
	s.engine.Use(LoggingMiddleware())
}

// registerHandlers registers all routes.
func (s *Server) registerHandlers() {
	s.healthHandler.Register(s.engine)

	api := s.engine.Group("/", auth.Middleware(s.JWT()))
	s.sessionHandler.Register(api)
	s.bankrollHandler.Register(api)
}

// JWT returns the token signer configured for this server.
func (s *Server) JWT() auth.JWT {
	return JWTFromConfig(s.cfg.Auth)
}

// JWTFromConfig builds the token signer from auth settings.
func JWTFromConfig(cfg config.AuthConfig) auth.JWT {
	return auth.JWT{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.Issuer,
		TokenTTL: cfg.TokenTTL,
	}
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves HTTP until Stop is called. It returns nil after a graceful stop.
func (s *Server) Start() error {
	log.Info().Str("addr", s.http.Addr).Msg("Starting HTTP server...")

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	log.Info().Msg("Stopping HTTP server...")
	return s.http.Shutdown(ctx)
}

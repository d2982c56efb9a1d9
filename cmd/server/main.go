// Package main is the entry point for the bankroll API server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"poker-bankroll/internal/config"
	"poker-bankroll/internal/handler"
	"poker-bankroll/internal/pkg/cache"
	"poker-bankroll/internal/pkg/db"
	"poker-bankroll/internal/pkg/lock"
	"poker-bankroll/internal/repository"
	"poker-bankroll/internal/server"
	"poker-bankroll/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "bankroll-server",
		Short:         "Poker bankroll API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config", "Directory containing config.yaml")

	root.AddCommand(newServeCmd(&configPath), newTokenCmd(&configPath))
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	var memory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if memory {
				// The database block is unused without postgres.
				cfg.Database.PoolSize = max(cfg.Database.PoolSize, 1)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			setupLogging(cfg.Log)
			log.Info().Msg("Configuration loaded successfully")

			return serve(cmd.Context(), cfg, memory)
		},
	}

	cmd.Flags().BoolVar(&memory, "memory", false, "Keep data in memory instead of PostgreSQL")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, memory bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		sessions  service.SessionRepository
		bankrolls service.BankrollRepository
		pinger    handler.Pinger
	)

	if memory {
		log.Warn().Msg("Running with in-memory storage; data is lost on exit")
		sessions = repository.NewMemorySessionRepository()
		bankrolls = repository.NewMemoryBankrollRepository()
	} else {
		pool, err := db.NewPool(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool.Pool); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}

		sessions = repository.NewSessionRepository(pool.Pool)
		bankrolls = repository.NewBankrollRepository(pool.Pool)
		pinger = pool
	}

	store, err := cache.New(&cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}
	reports := service.NewReportCache(store, cfg.Cache.TTL)

	sessionService := service.NewSessionService(sessions, lock.NewKeyedLock())
	sessionService.SetReportCache(reports)
	bankrollService := service.NewBankrollService(bankrolls)
	bankrollService.SetReportCache(reports)
	statsService := service.NewStatsService(sessions, bankrolls)
	statsService.SetReportCache(reports)

	srv, err := server.New(&server.Dependencies{
		Config:          cfg,
		SessionService:  sessionService,
		BankrollService: bankrollService,
		StatsService:    statsService,
		DB:              pinger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	if err := <-errChan; err != nil {
		return err
	}

	log.Info().Msg("Server stopped gracefully")
	return nil
}

func newTokenCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
				return fmt.Errorf("auth.jwt_secret is required")
			}

			token, expiresAt, err := server.JWTFromConfig(cfg.Auth).Sign(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
}

func setupLogging(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.JSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

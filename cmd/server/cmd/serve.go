package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Togather-Foundation/gallery/internal/api"
	"github.com/Togather-Foundation/gallery/internal/api/middleware"
	"github.com/Togather-Foundation/gallery/internal/auth"
	"github.com/Togather-Foundation/gallery/internal/config"
	"github.com/Togather-Foundation/gallery/internal/domain/users"
	"github.com/Togather-Foundation/gallery/internal/email"
	"github.com/Togather-Foundation/gallery/internal/metrics"
	"github.com/Togather-Foundation/gallery/internal/storage/objectstore"
	"github.com/Togather-Foundation/gallery/internal/storage/postgres"
	"github.com/Togather-Foundation/gallery/internal/telemetry"
)

const (
	tokenIssuer     = "gallery"
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the gallery HTTP server",
		Long: `Start the gallery HTTP server and begin accepting API requests.

On startup the server:
- loads configuration from the environment (or --config)
- applies pending database migrations unless MIGRATE_ON_START=false
- creates the bootstrap admin from ADMIN_EMAIL/ADMIN_PASSWORD if no admin exists
- shuts down gracefully on SIGINT/SIGTERM

Examples:
  server serve
  server serve --host 0.0.0.0 --port 8080
  server serve --config /etc/gallery/config.yaml --log-format console`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, config.NewLogger(cfg.Logging))
		},
	}
}

func runServer(ctx context.Context, cfg config.Config, logger zerolog.Logger) error {
	logger.Info().Str("version", Version).Str("env", cfg.Environment).Msg("starting gallery server")
	metrics.Init(Version, GitCommit, BuildDate)

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	shutdownTracing, err := telemetry.InitTracing(startCtx, cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer flushCancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown error")
		}
	}()

	if cfg.Database.MigrateOnStart {
		if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info().Msg("database migrations applied")
	}

	pool, err := postgres.Connect(startCtx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := metrics.RegisterPool(pool); err != nil {
		logger.Warn().Err(err).Msg("database pool metrics not registered")
	}

	repo, err := postgres.NewRepository(pool)
	if err != nil {
		return err
	}

	created, err := users.NewService(repo.Users(), logger).
		EnsureAdmin(startCtx, cfg.AdminBootstrap.Email, cfg.AdminBootstrap.Password)
	if err != nil {
		logger.Error().Err(err).Msg("admin bootstrap failed")
	} else if created {
		if cfg.Environment == "production" {
			logger.Info().Msg("bootstrapped admin user")
		} else {
			logger.Info().Str("email", cfg.AdminBootstrap.Email).Msg("bootstrapped admin user")
		}
	}

	notifier, err := email.NewNotifier(cfg.Email, logger)
	if err != nil {
		return fmt.Errorf("email notifier: %w", err)
	}
	store, err := objectstore.New(cfg.Storage)
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	defer limiter.Stop()

	server := &http.Server{
		Addr: cfg.Server.Addr(),
		Handler: api.NewRouter(api.Dependencies{
			Config:   cfg,
			Logger:   logger,
			Repo:     repo,
			Probe:    repo,
			Store:    store,
			Notifier: notifier,
			Tokens:   auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, tokenIssuer),
			Limiter:  limiter,
			Build:    api.BuildInfo{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate},
		}),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second, // uploads stream through to S3
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return serveUntilDone(ctx, server, logger)
}

// serveUntilDone runs server until ctx is cancelled or the listener fails,
// then drains in-flight requests.
func serveUntilDone(ctx context.Context, server *http.Server, logger zerolog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info().Msg("server stopped")
		return nil
	})
	return g.Wait()
}

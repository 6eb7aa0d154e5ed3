package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"shop-inventory/internal/database"
	"shop-inventory/internal/logger"
	"shop-inventory/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long in-flight requests may take to finish
const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadValidConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting inventory API",
		zap.String("env", cfg.Server.Env),
		zap.String("port", cfg.Server.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return err
	}
	log.Info("Database health check", zap.Any("health", db.Health(ctx)))

	if err := database.RunMigrations(db.DB(), log); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("Database migrations completed successfully")

	srv, err := server.NewServer(cfg, log, db)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() { _ = srv.Close() }()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Info("Shutting down gracefully, press Ctrl+C again to force")
		stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		return err
	}

	log.Info("Graceful shutdown complete")
	return nil
}

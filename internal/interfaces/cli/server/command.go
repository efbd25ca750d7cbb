package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/homechef-inc/mealsub/internal/infrastructure/database"
	"github.com/homechef-inc/mealsub/internal/infrastructure/migration"
	"github.com/homechef-inc/mealsub/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/homechef-inc/mealsub/internal/interfaces/http"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

var (
	env           string
	autoMigrate   bool
	withScheduler bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the billing HTTP API: checkout, lifecycle, order skips, admin operations and the payment webhook.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup (not recommended for production)")
	cmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "Also run the renewal and maintenance jobs in this process")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	env = bootstrap.ResolveEnv(env)

	cfg, log, err := bootstrap.Init(env)
	if err != nil {
		return err
	}
	defer database.Close()

	cfg.Server.Mode = bootstrap.MapEnvToGinMode(env)
	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	log.Infow("starting server",
		"environment", env,
		"auto_migrate", autoMigrate,
		"with_scheduler", withScheduler,
	)

	if autoMigrate {
		if env == "production" {
			log.Warnw("auto-migration is enabled in production environment - this is not recommended!")
		}
		if err := migration.NewManager(cfg.Database.Driver).Migrate(database.Get()); err != nil {
			return fmt.Errorf("auto-migration failed: %w", err)
		}
	}

	redisClient, err := bootstrap.OpenRedis(cfg, log)
	if err != nil {
		return err
	}

	container := httpRouter.NewContainer(database.Get(), redisClient, cfg, log)
	container.SetupRoutes()

	if withScheduler && cfg.Scheduler.Enabled {
		manager, err := container.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		manager.Start()
		defer func() {
			if err := manager.Stop(); err != nil {
				log.Errorw("failed to stop scheduler", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting", "address", cfg.Server.GetAddr(), "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Infow("shutting down server", "signal", sig.String())
	case err := <-serveErr:
		log.Errorw("failed to start server", "error", err)
		return err
	}

	return shutdown(srv, container, log)
}

func shutdown(srv *http.Server, container *httpRouter.Container, log logger.Interface) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}
	container.Shutdown(ctx)

	log.Infow("server exited gracefully")
	return nil
}

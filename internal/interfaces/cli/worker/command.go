package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/homechef-inc/mealsub/internal/infrastructure/database"
	"github.com/homechef-inc/mealsub/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/homechef-inc/mealsub/internal/interfaces/http"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the scheduled billing jobs",
		Long:  `Run the weekly and monthly renewal batches, the fulfillment retry and the credit expiry sweep until interrupted.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	env = bootstrap.ResolveEnv(env)

	cfg, log, err := bootstrap.Init(env)
	if err != nil {
		return err
	}
	defer database.Close()

	if !cfg.Scheduler.Enabled {
		log.Warnw("scheduler is disabled by configuration, worker exiting")
		return nil
	}

	redisClient, err := bootstrap.OpenRedis(cfg, log)
	if err != nil {
		return err
	}

	container := httpRouter.NewContainer(database.Get(), redisClient, cfg, log)
	defer container.Shutdown(context.Background())

	manager, err := container.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	log.Infow("starting billing worker", "environment", env, "jobs", len(manager.Jobs()))
	manager.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Infow("received signal, shutting down", "signal", sig.String())
	if err := manager.Stop(); err != nil {
		log.Errorw("scheduler did not stop cleanly", "error", err)
		return err
	}

	log.Infow("billing worker stopped")
	return nil
}

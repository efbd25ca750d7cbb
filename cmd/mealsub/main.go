package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/homechef-inc/mealsub/internal/interfaces/cli/migrate"
	"github.com/homechef-inc/mealsub/internal/interfaces/cli/renew"
	"github.com/homechef-inc/mealsub/internal/interfaces/cli/server"
	"github.com/homechef-inc/mealsub/internal/interfaces/cli/worker"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mealsub",
		Short: "Mealsub - meal subscription billing and fulfillment",
		Long:  `Mealsub runs the billing API, the renewal worker, database migrations and manual renewal batches.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		worker.NewCommand(),
		migrate.NewCommand(),
		renew.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

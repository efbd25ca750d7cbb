package renew

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/infrastructure/database"
	"github.com/homechef-inc/mealsub/internal/interfaces/cli/bootstrap"
	httpRouter "github.com/homechef-inc/mealsub/internal/interfaces/http"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
)

var (
	env    string
	period string
	date   string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Run a renewal batch now",
		Long: `Bill the next cycle of every active group whose renewal falls on the given date.
Safe to repeat: groups already renewed for the next cycle are left alone.`,
		RunE: run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&period, "period", "p", "weekly", "Renewal cadence (weekly, monthly)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "Renewal date YYYY-MM-DD (default: today)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	p := calendar.Period(period)
	if !p.IsValid() {
		return fmt.Errorf("invalid period %q", period)
	}

	cfg, log, err := bootstrap.Init(bootstrap.ResolveEnv(env))
	if err != nil {
		return err
	}
	defer database.Close()

	runDate := biztime.Today()
	if date != "" {
		runDate, err = biztime.ParseDate(date)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", date, err)
		}
	}

	redisClient, err := bootstrap.OpenRedis(cfg, log)
	if err != nil {
		return err
	}

	container := httpRouter.NewContainer(database.Get(), redisClient, cfg, log)
	defer container.Shutdown(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := container.RenewalRunner().Execute(ctx, billingUsecases.RunRenewalsCommand{
		Period: p,
		Date:   runDate,
	})
	if err != nil {
		return fmt.Errorf("renewal run failed: %w", err)
	}

	printResult(p, runDate, result)
	return nil
}

func printResult(p calendar.Period, runDate time.Time, result *billingUsecases.RunRenewalsResult) {
	out := os.Stdout
	fmt.Fprintf(out, "\nRenewal run (%s, %s):\n", p, biztime.FormatDate(runDate))
	fmt.Fprintf(out, "  Next cycle starts: %s\n", biztime.FormatDate(result.Horizon))
	fmt.Fprintf(out, "  Renewed:           %d\n", result.Count)
	fmt.Fprintf(out, "  Skipped:           %d\n", len(result.Skipped))
	fmt.Fprintf(out, "  Failed:            %d\n", len(result.Errors))

	for _, inv := range result.Invoices {
		fmt.Fprintf(out, "    group %d  invoice %s  total %d  credits %d\n",
			inv.GroupID, inv.InvoiceSID, inv.Total, inv.CreditsApplied)
	}
	for _, s := range result.Skipped {
		fmt.Fprintf(out, "    group %d  skipped: %s\n", s.GroupID, s.Reason)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(out, "    group %d  error: %v\n", e.GroupID, e.Err)
	}
}

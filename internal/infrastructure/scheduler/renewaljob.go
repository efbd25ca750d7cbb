package scheduler

import (
	"context"
	"time"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type RenewalRunner interface {
	Execute(ctx context.Context, cmd billingUsecases.RunRenewalsCommand) (*billingUsecases.RunRenewalsResult, error)
}

// RenewalJob runs the renewal batch for one period when today is the
// configured renewal day.
type RenewalJob struct {
	runner   RenewalRunner
	settings setting.PlatformConfigProvider
	period   calendar.Period
	logger   logger.Interface
}

func NewRenewalJob(runner RenewalRunner, settings setting.PlatformConfigProvider, period calendar.Period, logger logger.Interface) *RenewalJob {
	return &RenewalJob{
		runner:   runner,
		settings: settings,
		period:   period,
		logger:   logger,
	}
}

var _ BatchJob = (*RenewalJob)(nil)

func (j *RenewalJob) Execute(ctx context.Context) (int, error) {
	cfg, err := j.settings.Load(ctx)
	if err != nil {
		return 0, err
	}

	today := biztime.Today()
	if !isRenewalDay(today, j.period, cfg) {
		j.logger.Debugw("not a renewal day", "period", j.period, "date", biztime.FormatDate(today))
		return 0, nil
	}

	result, err := j.runner.Execute(ctx, billingUsecases.RunRenewalsCommand{Period: j.period, Date: today})
	if err != nil {
		return 0, err
	}
	for _, e := range result.Errors {
		j.logger.Warnw("group renewal failed",
			"group_id", e.GroupID,
			"error", e.Err,
		)
	}
	return result.Count, nil
}

func isRenewalDay(date time.Time, period calendar.Period, cfg setting.PlatformConfig) bool {
	switch period {
	case calendar.PeriodWeekly:
		return date.Weekday() == cfg.WeeklyRenewalDay
	case calendar.PeriodMonthly:
		return date.Day() == cfg.MonthlyRenewalDay
	}
	return false
}

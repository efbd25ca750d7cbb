// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// BatchJob defines the interface for a scheduled batch processing job.
// Each Execute call processes a batch and returns the number of items processed.
type BatchJob interface {
	Execute(ctx context.Context) (int, error)
}

// SchedulerManager owns the single gocron scheduler of the worker process.
// Cron expressions are evaluated in the business timezone.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	started   bool
	startedMu sync.RWMutex
}

func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// ========================================
// Renewal Jobs (daily cron, due-day check inside)
// ========================================

// RegisterRenewalJobs schedules the weekly run at 02:00 and the monthly run
// at 02:30. Both fire daily; the job itself decides whether today is the
// configured renewal day, so a changed setting takes effect without a
// restart.
func (m *SchedulerManager) RegisterRenewalJobs(weekly, monthly BatchJob) error {
	jobs := []struct {
		name    string
		crontab string
		job     BatchJob
	}{
		{"renewals-weekly", "0 2 * * *", weekly},
		{"renewals-monthly", "30 2 * * *", monthly},
	}

	for _, j := range jobs {
		j := j
		_, err := m.scheduler.NewJob(
			gocron.CronJob(j.crontab, false),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
				defer cancel()
				m.runBatch(ctx, j.name, j.job)
			}),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithTags("billing", "renewals"),
			gocron.WithName(j.name),
		)
		if err != nil {
			return err
		}
	}

	m.logger.Infow("registered renewal jobs", "weekly", "02:00", "monthly", "02:30")
	return nil
}

// ========================================
// Maintenance Jobs (interval, start immediately)
// ========================================

// RegisterMaintenanceJobs schedules the fulfillment retry and the credit
// expiry sweep.
func (m *SchedulerManager) RegisterMaintenanceJobs(
	retryFulfillment BatchJob,
	expireCredits BatchJob,
	retryPeriod time.Duration,
	expiryPeriod time.Duration,
) error {
	if retryPeriod <= 0 {
		retryPeriod = 5 * time.Minute
	}
	if expiryPeriod <= 0 {
		expiryPeriod = time.Hour
	}

	_, err := m.scheduler.NewJob(
		gocron.DurationJob(retryPeriod),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), retryPeriod)
			defer cancel()
			m.runBatch(ctx, "fulfillment-retry", retryFulfillment)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("fulfillment", "retry"),
		gocron.WithName("fulfillment-retry"),
	)
	if err != nil {
		return err
	}

	_, err = m.scheduler.NewJob(
		gocron.DurationJob(expiryPeriod),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()
			m.runBatch(ctx, "credit-expiry", expireCredits)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("credit", "expire"),
		gocron.WithName("credit-expiry"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered maintenance jobs",
		"fulfillment_retry_interval", retryPeriod,
		"credit_expiry_interval", expiryPeriod,
	)
	return nil
}

func (m *SchedulerManager) runBatch(ctx context.Context, name string, job BatchJob) {
	startTime := biztime.NowUTC()

	count, err := job.Execute(ctx)
	if err != nil {
		m.logger.Errorw("scheduled job failed",
			"job", name,
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}
	if count > 0 {
		m.logger.Infow("scheduled job processed items",
			"job", name,
			"count", count,
			"duration", time.Since(startTime),
		)
	}
}

// ========================================
// Scheduler Lifecycle Methods
// ========================================

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop waits for running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}

package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type mockRunner struct {
	mu    sync.Mutex
	calls []billingUsecases.RunRenewalsCommand

	// Error injection for testing
	err error
}

func (m *mockRunner) Execute(ctx context.Context, cmd billingUsecases.RunRenewalsCommand) (*billingUsecases.RunRenewalsResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, cmd)
	if m.err != nil {
		return nil, m.err
	}
	return &billingUsecases.RunRenewalsResult{
		Count:  2,
		Errors: []billingUsecases.RenewalError{{GroupID: 9, Err: errors.New("gateway down")}},
	}, nil
}

type staticSettings struct {
	cfg setting.PlatformConfig
}

func (s staticSettings) Load(ctx context.Context) (setting.PlatformConfig, error) {
	return s.cfg, nil
}

func freeze(t *testing.T, instant time.Time) {
	t.Helper()
	biztime.MustInit("Asia/Kolkata")
	restore := biztime.SetClock(func() time.Time { return instant })
	t.Cleanup(restore)
}

func TestRenewalJob_RunsOnlyOnRenewalDay(t *testing.T) {
	settings := staticSettings{cfg: setting.PlatformConfig{WeeklyRenewalDay: time.Friday, MonthlyRenewalDay: 25}}

	tests := []struct {
		name    string
		now     time.Time
		period  calendar.Period
		wantRun bool
	}{
		// 2024-06-14 is a Friday; 02:00 IST is 20:30 UTC the day before.
		{"weekly on friday", time.Date(2024, 6, 13, 20, 30, 0, 0, time.UTC), calendar.PeriodWeekly, true},
		{"weekly on thursday", time.Date(2024, 6, 13, 10, 0, 0, 0, time.UTC), calendar.PeriodWeekly, false},
		{"monthly on the 25th", time.Date(2024, 6, 24, 21, 0, 0, 0, time.UTC), calendar.PeriodMonthly, true},
		{"monthly on the 24th", time.Date(2024, 6, 24, 10, 0, 0, 0, time.UTC), calendar.PeriodMonthly, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			freeze(t, tt.now)
			runner := &mockRunner{}
			job := NewRenewalJob(runner, settings, tt.period, logger.Nop())

			n, err := job.Execute(context.Background())
			require.NoError(t, err)

			if !tt.wantRun {
				assert.Zero(t, n)
				assert.Empty(t, runner.calls)
				return
			}
			assert.Equal(t, 2, n)
			require.Len(t, runner.calls, 1)
			assert.Equal(t, tt.period, runner.calls[0].Period)
			assert.True(t, biztime.Today().Equal(runner.calls[0].Date))
		})
	}
}

func TestRenewalJob_PropagatesRunnerError(t *testing.T) {
	freeze(t, time.Date(2024, 6, 13, 20, 30, 0, 0, time.UTC))
	runner := &mockRunner{err: errors.New("db down")}
	job := NewRenewalJob(runner, staticSettings{cfg: setting.PlatformConfig{WeeklyRenewalDay: time.Friday}}, calendar.PeriodWeekly, logger.Nop())

	_, err := job.Execute(context.Background())
	assert.Error(t, err)
}

type countingJob struct {
	mu    sync.Mutex
	calls int
}

func (j *countingJob) Execute(ctx context.Context) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.calls++
	return 1, nil
}

func (j *countingJob) Calls() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.calls
}

func TestSchedulerManager_RegistersAndRunsJobs(t *testing.T) {
	biztime.MustInit("Asia/Kolkata")
	m, err := NewSchedulerManager(logger.Nop())
	require.NoError(t, err)

	retry := &countingJob{}
	expire := &countingJob{}
	require.NoError(t, m.RegisterRenewalJobs(&countingJob{}, &countingJob{}))
	require.NoError(t, m.RegisterMaintenanceJobs(retry, expire, time.Hour, time.Hour))
	assert.Len(t, m.Jobs(), 4)

	m.Start()
	assert.True(t, m.IsStarted())

	// Interval jobs start immediately.
	assert.Eventually(t, func() bool { return retry.Calls() == 1 && expire.Calls() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.False(t, m.IsStarted())
}

package usecases_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	"github.com/homechef-inc/mealsub/internal/application/testutil"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/order"
)

func TestRunRenewals_BillsNextCycleWithCredits(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.FreezeClock(t, testutil.At("2024-06-14", 2, 0))

	s := env.SeedPaidGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "mon", "wed", "fri"))
	env.IssueCredit(t, s.Group.ID(), 5000, testutil.At("2024-09-30", 0, 0))
	ctx := testutil.Ctx()

	result, err := env.Renewals.Execute(ctx, usecases.RunRenewalsCommand{
		Period: calendar.PeriodWeekly,
		Date:   calendar.MustDate("2024-06-14"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.True(t, calendar.MustDate("2024-06-17").Equal(result.Horizon))

	renewed := result.Invoices[0]
	assert.Equal(t, int64(30000), renewed.Subtotal)
	assert.Equal(t, int64(5000), renewed.CreditsApplied)
	assert.Equal(t, int64(25000), renewed.Total)
	assert.False(t, renewed.SettledByCredits)
	assert.True(t, calendar.MustDate("2024-06-17").Equal(renewed.CycleStart))
	assert.True(t, calendar.MustDate("2024-06-23").Equal(renewed.CycleEnd))

	require.Len(t, env.Gateway.Requests, 1)
	assert.Equal(t, int64(25000), env.Gateway.Requests[0].Amount)

	spent, err := env.Credits.ListByGroup(ctx, s.Group.ID(), credit.StatusConsumed)
	require.NoError(t, err)
	assert.Len(t, spent, 1)

	again, err := env.Renewals.Execute(ctx, usecases.RunRenewalsCommand{
		Period: calendar.PeriodWeekly,
		Date:   calendar.MustDate("2024-06-14"),
	})
	require.NoError(t, err)
	assert.Zero(t, again.Count)
	assert.Equal(t, 1, env.Gateway.OrderCount())
}

func TestRunRenewals_CreditsCoverWholeCycle(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.FreezeClock(t, testutil.At("2024-06-14", 2, 0))

	s := env.SeedPaidGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "mon"))
	env.IssueCredit(t, s.Group.ID(), 15000, testutil.At("2024-09-30", 0, 0))
	ctx := testutil.Ctx()

	result, err := env.Renewals.Execute(ctx, usecases.RunRenewalsCommand{
		Period: calendar.PeriodWeekly,
		Date:   calendar.MustDate("2024-06-14"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Count)
	assert.True(t, result.Invoices[0].SettledByCredits)
	assert.Zero(t, result.Invoices[0].Total)
	assert.Zero(t, env.Gateway.OrderCount())

	orders, err := env.Orders.ListByGroupInRange(ctx, s.Group.ID(),
		calendar.MustDate("2024-06-17"), calendar.MustDate("2024-06-23"), order.StatusScheduled)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	// The unspent ₹50 comes back as a remainder credit.
	available, err := env.Credits.ListByGroup(ctx, s.Group.ID(), credit.StatusAvailable)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, int64(5000), available[0].Amount().Minor())
}

func TestRunRenewals_SkipsUnpaidAndPaused(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.FreezeClock(t, testutil.At("2024-06-14", 2, 0))
	ctx := testutil.Ctx()

	unpaid := env.SeedGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "mon"))
	paused := env.SeedPaidGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "mon"))
	require.NoError(t, paused.Group.Pause(calendar.MustDate("2024-06-10"), paused.Cycle.ID()))
	require.NoError(t, env.Groups.Update(ctx, paused.Group))

	result, err := env.Renewals.Execute(ctx, usecases.RunRenewalsCommand{
		Period: calendar.PeriodWeekly,
		Date:   calendar.MustDate("2024-06-14"),
	})
	require.NoError(t, err)
	assert.Zero(t, result.Count)
	assert.Empty(t, result.Skipped, "paused groups are not due")

	// The unpaid group shows up as a failure naming its invoice.
	require.Len(t, result.Errors, 1)
	assert.Equal(t, unpaid.Group.ID(), result.Errors[0].GroupID)
	assert.ErrorIs(t, result.Errors[0].Err, usecases.ErrPreviousCycleUnpaid)
	assert.Contains(t, result.Errors[0].Err.Error(), unpaid.Invoice.SID())
}

func TestRunRenewals_CancelledContextSchedulesNothing(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.FreezeClock(t, testutil.At("2024-06-14", 2, 0))
	env.SeedPaidGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "mon"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := env.Renewals.Execute(ctx, usecases.RunRenewalsCommand{
		Period: calendar.PeriodWeekly,
		Date:   calendar.MustDate("2024-06-14"),
	})
	if err != nil {
		// Listing due groups may itself observe the cancellation.
		return
	}
	assert.Zero(t, result.Count)
}

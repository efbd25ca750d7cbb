package usecases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	"github.com/homechef-inc/mealsub/internal/application/subscription/usecases"
	"github.com/homechef-inc/mealsub/internal/application/testutil"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/order"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
)

func TestClassifyResume(t *testing.T) {
	cycle, err := subscription.NewCycle(1, subscription.CycleKindRegular,
		calendar.NewRange(calendar.MustDate("2024-06-10"), calendar.MustDate("2024-06-16")), calendar.PeriodWeekly)
	require.NoError(t, err)

	tests := []struct {
		date string
		want usecases.ResumeScenario
	}{
		{"2024-06-12", usecases.ScenarioSameCycle},
		{"2024-06-16", usecases.ScenarioSameCycle},
		{"2024-06-17", usecases.ScenarioNextCycleStart},
		{"2024-06-19", usecases.ScenarioMidNextCycle},
		{"2024-06-23", usecases.ScenarioMidNextCycle},
		{"2024-06-24", usecases.ScenarioFutureCycle},
		{"2024-07-27", usecases.ScenarioFutureCycle},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got := usecases.ClassifyResume(cycle, calendar.MustDate(tt.date), calendar.PeriodWeekly)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResume_SameCycleReinstatesWithoutInvoice(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.FreezeClock(t, testutil.At("2024-06-08", 10, 0))

	s := env.SeedPaidGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "mon", "wed", "fri"))
	ctx := testutil.Ctx()

	_, err := env.Pause().Confirm(ctx, usecases.PauseCommand{
		PrincipalID: testutil.ConsumerID,
		GroupID:     s.Group.ID(),
		PauseDate:   calendar.MustDate("2024-06-10"),
	})
	require.NoError(t, err)

	cmd := usecases.ResumeCommand{
		PrincipalID: testutil.ConsumerID,
		GroupID:     s.Group.ID(),
		ResumeDate:  calendar.MustDate("2024-06-12"),
	}
	preview, err := env.Resume().Preview(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, usecases.ScenarioSameCycle, preview.Scenario)
	assert.Len(t, preview.Orders, 2)
	assert.False(t, preview.NewCycle)

	result, err := env.Resume().Confirm(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Reinstated)
	assert.Empty(t, result.InvoiceID)

	invoices, err := env.Invoices.ListByGroup(ctx, s.Group.ID())
	require.NoError(t, err)
	assert.Len(t, invoices, 1, "same-cycle resume must not bill")

	// Monday stays cancelled and keeps its credit; Wednesday and Friday
	// come back and their credits are spent.
	available, err := env.Credits.ListByGroup(ctx, s.Group.ID(), credit.StatusAvailable)
	require.NoError(t, err)
	require.Len(t, available, 1)
	consumed, err := env.Credits.ListByGroup(ctx, s.Group.ID(), credit.StatusConsumed)
	require.NoError(t, err)
	assert.Len(t, consumed, 2)

	scheduled, err := env.Orders.ListByGroupInRange(ctx, s.Group.ID(),
		calendar.MustDate("2024-06-10"), calendar.MustDate("2024-06-16"), order.StatusScheduled)
	require.NoError(t, err)
	assert.Len(t, scheduled, 2)

	assert.True(t, env.Reload(t, s.Group.ID()).IsActive())

	// Resuming an active group changes nothing.
	again, err := env.Resume().Confirm(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, again.AlreadyActive)
}

func TestResume_FutureCycleBillsResidualAfterCredits(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.FreezeClock(t, testutil.At("2024-07-25", 10, 0))

	everyDay := testutil.Lunch(25000, "mon", "tue", "wed", "thu", "fri", "sat", "sun")
	s := env.SeedGroup(t, "2024-06-10", "2024-06-16", everyDay)
	ctx := testutil.Ctx()

	require.NoError(t, s.Group.Pause(calendar.MustDate("2024-06-10"), s.Cycle.ID()))
	require.NoError(t, env.Groups.Update(ctx, s.Group))

	expiry := testutil.At("2024-09-30", 0, 0)
	env.IssueCredit(t, s.Group.ID(), 10000, expiry)
	env.IssueCredit(t, s.Group.ID(), 10000, expiry)

	// 40 days after the 2024-06-17 renewal.
	cmd := usecases.ResumeCommand{
		PrincipalID: testutil.ConsumerID,
		GroupID:     s.Group.ID(),
		ResumeDate:  calendar.MustDate("2024-07-27"),
	}

	preview, err := env.Resume().Preview(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, usecases.ScenarioFutureCycle, preview.Scenario)
	assert.True(t, preview.NewCycle)
	assert.Equal(t, int64(50000), preview.Estimate)
	assert.Equal(t, 2, preview.CreditsToApply)
	assert.Equal(t, int64(30000), preview.Payable)

	result, err := env.Resume().Confirm(ctx, cmd)
	require.NoError(t, err)
	require.NotEmpty(t, result.InvoiceID)
	assert.Equal(t, "pending_payment", result.InvoiceStatus)
	assert.Equal(t, "order_1", result.GatewayOrderRef)

	inv, err := env.Invoices.GetBySID(ctx, result.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), inv.Subtotal().Minor())
	assert.Equal(t, int64(20000), inv.CreditsApplied().Minor())
	assert.Equal(t, int64(30000), inv.Total().Minor())

	cycle, err := env.Cycles.GetByID(ctx, inv.CycleID())
	require.NoError(t, err)
	assert.True(t, calendar.MustDate("2024-07-27").Equal(cycle.Start()))
	assert.True(t, calendar.MustDate("2024-07-29").Equal(cycle.RenewalDate()))

	available, err := env.Credits.ListByGroup(ctx, s.Group.ID(), credit.StatusAvailable)
	require.NoError(t, err)
	assert.Empty(t, available)

	require.Len(t, env.Gateway.Requests, 1)
	assert.Equal(t, int64(30000), env.Gateway.Requests[0].Amount)
	assert.True(t, env.Reload(t, s.Group.ID()).IsActive())
}

func TestResume_NoticeIsEnforced(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.FreezeClock(t, testutil.At("2024-06-08", 10, 0))

	s := env.SeedPaidGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "mon", "wed", "fri"))
	ctx := testutil.Ctx()
	_, err := env.Pause().Confirm(ctx, usecases.PauseCommand{
		PrincipalID: testutil.ConsumerID,
		GroupID:     s.Group.ID(),
		PauseDate:   calendar.MustDate("2024-06-10"),
	})
	require.NoError(t, err)

	testutil.FreezeClock(t, testutil.At("2024-06-11", 20, 1))
	_, err = env.Resume().Confirm(ctx, usecases.ResumeCommand{
		PrincipalID: testutil.ConsumerID,
		GroupID:     s.Group.ID(),
		ResumeDate:  calendar.MustDate("2024-06-12"),
	})
	require.Error(t, err)
	assert.True(t, env.Reload(t, s.Group.ID()).IsPaused())
}

func pausePaidWeek(t *testing.T) (*testutil.Env, *testutil.Seeded) {
	t.Helper()
	env := testutil.NewEnv(t)
	testutil.FreezeClock(t, testutil.At("2024-06-08", 10, 0))

	s := env.SeedPaidGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "mon", "wed", "fri"))
	_, err := env.Pause().Confirm(testutil.Ctx(), usecases.PauseCommand{
		PrincipalID: testutil.ConsumerID,
		GroupID:     s.Group.ID(),
		PauseDate:   calendar.MustDate("2024-06-12"),
	})
	require.NoError(t, err)
	return env, s
}

func TestResume_NextCycleStartRenewsWithPauseCredits(t *testing.T) {
	env, s := pausePaidWeek(t)
	ctx := testutil.Ctx()

	cmd := usecases.ResumeCommand{
		PrincipalID: testutil.ConsumerID,
		GroupID:     s.Group.ID(),
		ResumeDate:  calendar.MustDate("2024-06-17"),
	}
	preview, err := env.Resume().Preview(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, usecases.ScenarioNextCycleStart, preview.Scenario)
	assert.Empty(t, preview.Orders)
	assert.False(t, preview.NewCycle, "the regular renewal bills this cycle")

	result, err := env.Resume().Confirm(ctx, cmd)
	require.NoError(t, err)
	assert.Zero(t, result.Reinstated)
	require.NotEmpty(t, result.InvoiceID)
	assert.Equal(t, "pending_payment", result.InvoiceStatus)
	assert.Equal(t, int64(30000), result.Estimate)
	assert.Equal(t, int64(20000), result.CreditsApplied)
	assert.Equal(t, int64(10000), result.Payable)
	assert.Equal(t, "order_1", result.GatewayOrderRef)
	assert.Empty(t, result.RenewalNote)

	inv, err := env.Invoices.GetBySID(ctx, result.InvoiceID)
	require.NoError(t, err)
	cycle, err := env.Cycles.GetByID(ctx, inv.CycleID())
	require.NoError(t, err)
	assert.True(t, calendar.MustDate("2024-06-17").Equal(cycle.Start()))
	assert.True(t, calendar.MustDate("2024-06-23").Equal(cycle.Range().LastDay()))

	available, err := env.Credits.ListByGroup(ctx, s.Group.ID(), credit.StatusAvailable)
	require.NoError(t, err)
	assert.Empty(t, available)
	assert.True(t, env.Reload(t, s.Group.ID()).IsActive())

	// Renewing again for the same start is a no-op.
	again, err := env.Renewals.Execute(ctx, billingUsecases.RunRenewalsCommand{
		Period: calendar.PeriodWeekly,
		Date:   calendar.MustDate("2024-06-14"),
	})
	require.NoError(t, err)
	assert.Zero(t, again.Count)
}

func TestResume_NextCycleStartWithUnpaidCycleReportsIt(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.FreezeClock(t, testutil.At("2024-06-08", 10, 0))
	ctx := testutil.Ctx()

	s := env.SeedGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "mon"))
	require.NoError(t, s.Group.Pause(calendar.MustDate("2024-06-10"), s.Cycle.ID()))
	require.NoError(t, env.Groups.Update(ctx, s.Group))

	result, err := env.Resume().Confirm(ctx, usecases.ResumeCommand{
		PrincipalID: testutil.ConsumerID,
		GroupID:     s.Group.ID(),
		ResumeDate:  calendar.MustDate("2024-06-17"),
	})
	require.NoError(t, err)
	assert.Empty(t, result.InvoiceID)
	assert.Contains(t, result.RenewalNote, "previous cycle unpaid")
	assert.Contains(t, result.RenewalNote, s.Invoice.SID())
	assert.True(t, env.Reload(t, s.Group.ID()).IsActive())
}

func TestResume_MidNextCycleBillsPartialCycle(t *testing.T) {
	env, s := pausePaidWeek(t)
	ctx := testutil.Ctx()

	cmd := usecases.ResumeCommand{
		PrincipalID: testutil.ConsumerID,
		GroupID:     s.Group.ID(),
		ResumeDate:  calendar.MustDate("2024-06-19"),
	}
	preview, err := env.Resume().Preview(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, usecases.ScenarioMidNextCycle, preview.Scenario)
	assert.True(t, preview.NewCycle)
	require.NotNil(t, preview.CycleStart)
	assert.True(t, calendar.MustDate("2024-06-19").Equal(*preview.CycleStart))
	assert.True(t, calendar.MustDate("2024-06-23").Equal(*preview.CycleEnd))
	assert.Equal(t, int64(20000), preview.Estimate)
	assert.Equal(t, 2, preview.CreditsToApply)
	assert.Zero(t, preview.Payable)

	result, err := env.Resume().Confirm(ctx, cmd)
	require.NoError(t, err)
	require.NotEmpty(t, result.InvoiceID)
	assert.Equal(t, "paid", result.InvoiceStatus, "pause credits cover the partial cycle")
	assert.Equal(t, 2, result.OrdersCreated)
	assert.Empty(t, result.GatewayOrderRef)

	inv, err := env.Invoices.GetBySID(ctx, result.InvoiceID)
	require.NoError(t, err)
	assert.Zero(t, inv.Total().Minor())
	assert.False(t, inv.IsFulfillmentPending())

	scheduled, err := env.Orders.ListByGroupInRange(ctx, s.Group.ID(),
		calendar.MustDate("2024-06-17"), calendar.MustDate("2024-06-23"), order.StatusScheduled)
	require.NoError(t, err)
	assert.Len(t, scheduled, 2)

	// A second confirm finds the group active.
	again, err := env.Resume().Confirm(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, again.AlreadyActive)
	invoices, err := env.Invoices.ListByGroup(ctx, s.Group.ID())
	require.NoError(t, err)
	assert.Len(t, invoices, 2)
}

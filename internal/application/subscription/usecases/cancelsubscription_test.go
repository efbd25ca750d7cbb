package usecases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homechef-inc/mealsub/internal/application/subscription/usecases"
	"github.com/homechef-inc/mealsub/internal/application/testutil"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/order"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
)

func cancelFixture(t *testing.T) (*testutil.Env, *testutil.Seeded) {
	t.Helper()
	env := testutil.NewEnv(t)
	testutil.FreezeClock(t, testutil.At("2024-06-08", 10, 0))

	s := env.SeedPaidGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "mon", "wed", "fri"))
	env.IssueCredit(t, s.Group.ID(), 5000, testutil.At("2024-09-30", 0, 0))
	return env, s
}

func TestCancel_RefundCoversRemainingMealsAndCredits(t *testing.T) {
	env, s := cancelFixture(t)
	ctx := testutil.Ctx()

	cmd := usecases.CancelCommand{
		PrincipalID:      testutil.ConsumerID,
		GroupID:          s.Group.ID(),
		CancelDate:       calendar.MustDate("2024-06-12"),
		Reason:           "moving cities",
		RefundPreference: setting.SettlementRefund,
		Confirm:          true,
	}

	preview, err := env.Cancel().Preview(ctx, cmd)
	require.NoError(t, err)
	assert.Len(t, preview.Orders, 2)
	assert.Equal(t, int64(20000), preview.RemainingMealsValue)
	assert.Equal(t, int64(5000), preview.CreditsValue)
	assert.Equal(t, int64(25000), preview.TotalRefundCredit)
	assert.ElementsMatch(t, []setting.Settlement{setting.SettlementRefund, setting.SettlementCredit}, preview.Offered)

	result, err := env.Cancel().Confirm(ctx, cmd)
	require.NoError(t, err)
	require.NotEmpty(t, result.RefundRequestID)
	assert.Nil(t, result.CreditID)

	refunds, err := env.Refunds.ListByGroup(ctx, s.Group.ID())
	require.NoError(t, err)
	require.Len(t, refunds, 1)
	assert.Equal(t, int64(25000), refunds[0].Amount().Minor())
	assert.Equal(t, "moving cities", refunds[0].Reason())

	cancelled, err := env.Orders.ListByGroupInRange(ctx, s.Group.ID(),
		calendar.MustDate("2024-06-10"), calendar.MustDate("2024-06-16"), order.StatusCancelled)
	require.NoError(t, err)
	require.Len(t, cancelled, 2)
	assert.Equal(t, order.CancelSourceCancellation, *cancelled[0].CancelSource())

	available, err := env.Credits.ListByGroup(ctx, s.Group.ID(), credit.StatusAvailable)
	require.NoError(t, err)
	assert.Empty(t, available)

	group := env.Reload(t, s.Group.ID())
	assert.True(t, group.IsCancelled())
	assert.Equal(t, "moving cities", group.CancelReason())

	again, err := env.Cancel().Confirm(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, again.AlreadyCancelled)
	refunds, err = env.Refunds.ListByGroup(ctx, s.Group.ID())
	require.NoError(t, err)
	assert.Len(t, refunds, 1)
}

func TestCancel_StoreCreditSettlement(t *testing.T) {
	env, s := cancelFixture(t)
	ctx := testutil.Ctx()

	result, err := env.Cancel().Confirm(ctx, usecases.CancelCommand{
		PrincipalID:      testutil.ConsumerID,
		GroupID:          s.Group.ID(),
		CancelDate:       calendar.MustDate("2024-06-12"),
		Reason:           "too spicy",
		RefundPreference: setting.SettlementCredit,
		Confirm:          true,
	})
	require.NoError(t, err)
	require.NotNil(t, result.CreditID)
	assert.Empty(t, result.RefundRequestID)

	available, err := env.Credits.ListByGroup(ctx, s.Group.ID(), credit.StatusAvailable)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, credit.ReasonCancellation, available[0].Reason())
	assert.Equal(t, int64(25000), available[0].Amount().Minor())
}

func TestCancel_RequiresConfirmationAndReason(t *testing.T) {
	env, s := cancelFixture(t)
	ctx := testutil.Ctx()

	base := usecases.CancelCommand{
		PrincipalID: testutil.ConsumerID,
		GroupID:     s.Group.ID(),
		CancelDate:  calendar.MustDate("2024-06-12"),
		Reason:      "done",
		Confirm:     true,
	}

	unconfirmed := base
	unconfirmed.Confirm = false
	_, err := env.Cancel().Confirm(ctx, unconfirmed)
	assert.True(t, apperrors.IsValidationError(err))

	noReason := base
	noReason.Reason = "  "
	_, err = env.Cancel().Confirm(ctx, noReason)
	assert.True(t, apperrors.IsValidationError(err))

	assert.True(t, env.Reload(t, s.Group.ID()).IsActive())
}

package usecases_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	"github.com/homechef-inc/mealsub/internal/application/testutil"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/order"
)

func TestRetryFulfillment_GeneratesAndClearsFlag(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.FreezeClock(t, testutil.At("2024-06-08", 10, 0))
	ctx := testutil.Ctx()

	a := env.SeedUnfulfilledGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "mon", "wed"))
	b := env.SeedUnfulfilledGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "fri"))
	// Unpaid invoices are never picked up.
	env.SeedGroup(t, "2024-06-10", "2024-06-16", testutil.Lunch(10000, "tue"))

	retry := usecases.NewRetryFulfillmentUseCase(env.Invoices, env.Finalizer, 2, env.Log)

	n, err := retry.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, s := range []*testutil.Seeded{a, b} {
		inv, err := env.Invoices.GetByID(ctx, s.Invoice.ID())
		require.NoError(t, err)
		assert.False(t, inv.IsFulfillmentPending())
	}

	orders, err := env.Orders.ListByGroupInRange(ctx, a.Group.ID(),
		calendar.MustDate("2024-06-10"), calendar.MustDate("2024-06-16"), order.StatusScheduled)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	n, err = retry.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

package repository_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homechef-inc/mealsub/internal/application/testutil"
	"github.com/homechef-inc/mealsub/internal/domain/billing"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/order"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/infrastructure/repository"
)

func TestVendorCapacityRepository_SeatsAreUnique(t *testing.T) {
	repo := repository.NewVendorCapacityRepository(testutil.NewDB(t))
	ctx := testutil.Ctx()
	date := calendar.MustDate("2024-06-10")

	require.NoError(t, repo.ClaimSeat(ctx, order.Seat{VendorID: 7, ServiceDate: date, Slot: vo.SlotLunch, SeatNo: 1, OrderID: 100}))

	err := repo.ClaimSeat(ctx, order.Seat{VendorID: 7, ServiceDate: date, Slot: vo.SlotLunch, SeatNo: 1, OrderID: 101})
	assert.ErrorIs(t, err, order.ErrSeatTaken)

	// Same seat number on another slot is a different seat.
	require.NoError(t, repo.ClaimSeat(ctx, order.Seat{VendorID: 7, ServiceDate: date, Slot: vo.SlotDinner, SeatNo: 1, OrderID: 102}))

	seats, err := repo.TakenSeats(ctx, 7, date, vo.SlotLunch)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, seats)

	require.NoError(t, repo.ReleaseSeat(ctx, 100))
	seats, err = repo.TakenSeats(ctx, 7, date, vo.SlotLunch)
	require.NoError(t, err)
	assert.Empty(t, seats)
}

func TestVendorCapacityRepository_SlotCapacity(t *testing.T) {
	repo := repository.NewVendorCapacityRepository(testutil.NewDB(t))
	ctx := testutil.Ctx()

	unset, err := repo.GetSlotCapacity(ctx, 7, vo.SlotLunch)
	require.NoError(t, err)
	assert.True(t, unset.IsUnlimited())

	require.NoError(t, repo.UpsertSlotCapacity(ctx, order.SlotCapacity{VendorID: 7, Slot: vo.SlotLunch, MaxPerDay: 10}))
	require.NoError(t, repo.UpsertSlotCapacity(ctx, order.SlotCapacity{VendorID: 7, Slot: vo.SlotLunch, MaxPerDay: 25}))

	got, err := repo.GetSlotCapacity(ctx, 7, vo.SlotLunch)
	require.NoError(t, err)
	assert.Equal(t, 25, got.MaxPerDay)
}

func TestCreditRepository_ExpireDue(t *testing.T) {
	testutil.FreezeClock(t, testutil.At("2024-06-08", 10, 0))
	repo := repository.NewCreditRepository(testutil.NewDB(t))
	ctx := testutil.Ctx()

	soon, err := credit.NewCredit(1, 1, shared.NewMoney(5000, "INR"), credit.ReasonPause, testutil.At("2024-06-09", 0, 0))
	require.NoError(t, err)
	later, err := credit.NewCredit(1, 1, shared.NewMoney(7000, "INR"), credit.ReasonHolidaySkip, testutil.At("2024-08-01", 0, 0))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, soon))
	require.NoError(t, repo.Create(ctx, later))

	expired, err := repo.ExpireDue(ctx, testutil.At("2024-06-10", 0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	available, err := repo.ListByGroup(ctx, 1, credit.StatusAvailable)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, int64(7000), available[0].Amount().Minor())

	// Expiring twice is a no-op.
	expired, err = repo.ExpireDue(ctx, testutil.At("2024-06-10", 0, 0).Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestRefundRequestRepository_OnePerInvoice(t *testing.T) {
	repo := repository.NewRefundRequestRepository(testutil.NewDB(t))
	ctx := testutil.Ctx()

	first, err := billing.NewInvoiceRefundRequest(1, 10, shared.Rupees(300), "payment captured after cancellation")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, first))

	dup, err := billing.NewInvoiceRefundRequest(1, 10, shared.Rupees(300), "payment captured after cancellation")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), billing.ErrRefundExists)

	// Cancellation refunds carry no invoice and never clash.
	for i := 0; i < 2; i++ {
		req, err := billing.NewRefundRequest(1, shared.Rupees(100), "moving cities")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, req))
	}

	all, err := repo.ListByGroup(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 3)
	linked := 0
	for _, r := range all {
		if r.InvoiceID() != nil {
			linked++
			assert.Equal(t, uint(10), *r.InvoiceID())
		}
	}
	assert.Equal(t, 1, linked)
}

func TestSubscriptionGroupRepository_CheckoutKey(t *testing.T) {
	repo := repository.NewSubscriptionGroupRepository(testutil.NewDB(t))
	ctx := testutil.Ctx()

	newGroup := func(consumerID uint, key string) *subscription.Group {
		g, err := subscription.NewGroup(consumerID, 7, calendar.PeriodWeekly, vo.PaymentMethodOneTime, shared.DefaultCurrency)
		require.NoError(t, err)
		g.SetCheckoutKey(key)
		return g
	}

	keyed := newGroup(42, "chk-1")
	require.NoError(t, repo.Create(ctx, keyed))

	got, err := repo.GetByCheckoutKey(ctx, 42, "chk-1")
	require.NoError(t, err)
	assert.Equal(t, keyed.ID(), got.ID())
	require.NotNil(t, got.CheckoutKey())
	assert.Equal(t, "chk-1", *got.CheckoutKey())

	assert.ErrorIs(t, repo.Create(ctx, newGroup(42, "chk-1")), subscription.ErrCheckoutKeyUsed)
	require.NoError(t, repo.Create(ctx, newGroup(43, "chk-1")))
	require.NoError(t, repo.Create(ctx, newGroup(42, "")))
	require.NoError(t, repo.Create(ctx, newGroup(42, "")))

	_, err = repo.GetByCheckoutKey(ctx, 42, "chk-2")
	assert.ErrorIs(t, err, subscription.ErrGroupNotFound)
}

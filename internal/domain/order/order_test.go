package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
)

func newLunch(t *testing.T, date string) *Order {
	t.Helper()
	o, err := NewOrder(1, 2, 3, 4, calendar.MustDate(date), vo.SlotLunch, shared.Rupees(100))
	require.NoError(t, err)
	return o
}

func TestOrder_CancelAndReinstate(t *testing.T) {
	o := newLunch(t, "2024-06-12")
	o.AssignSeat(3)

	require.NoError(t, o.Cancel(CancelSourcePause))
	assert.Equal(t, StatusCancelled, o.Status())
	assert.Nil(t, o.SeatNo())

	require.NoError(t, o.Reinstate())
	assert.True(t, o.IsScheduled())
	assert.Nil(t, o.CancelSource())
}

func TestOrder_ReinstateRequiresPauseSource(t *testing.T) {
	o := newLunch(t, "2024-06-12")
	require.NoError(t, o.Cancel(CancelSourceCancellation))

	assert.ErrorIs(t, o.Reinstate(), ErrNotReinstatable)

	delivered := newLunch(t, "2024-06-12")
	require.NoError(t, delivered.MarkDelivered())
	assert.ErrorIs(t, delivered.Reinstate(), ErrNotReinstatable)
}

func TestOrder_TerminalStatesAreFinal(t *testing.T) {
	o := newLunch(t, "2024-06-12")
	require.NoError(t, o.MarkDelivered())

	assert.ErrorIs(t, o.Cancel(CancelSourceVendor), ErrInvalidTransition)
	assert.ErrorIs(t, o.SkipByVendor(), ErrInvalidTransition)
	assert.ErrorIs(t, o.MarkFailedOps(), ErrInvalidTransition)
}

func TestOrder_SkipByCustomerCutoff(t *testing.T) {
	o := newLunch(t, "2024-06-12")
	// Lunch opens 12:30 IST = 07:00 UTC.
	assert.Equal(t, time.Date(2024, 6, 12, 7, 0, 0, 0, time.UTC), o.SlotStartsAt())

	late := time.Date(2024, 6, 11, 20, 0, 0, 0, time.UTC)
	assert.ErrorIs(t, o.SkipByCustomer(late, 12*time.Hour), ErrSkipCutoffPassed)

	early := time.Date(2024, 6, 11, 18, 0, 0, 0, time.UTC)
	require.NoError(t, o.SkipByCustomer(early, 12*time.Hour))
	assert.Equal(t, StatusSkippedByCustomer, o.Status())
}

func TestHoliday_Covers(t *testing.T) {
	day := calendar.MustDate("2024-06-12")
	whole := Holiday{VendorID: 4, Date: day}
	dinnerOnly := Holiday{VendorID: 4, Date: day, Slot: vo.SlotDinner}

	assert.True(t, whole.Covers(day, vo.SlotLunch))
	assert.False(t, dinnerOnly.Covers(day, vo.SlotLunch))
	assert.True(t, dinnerOnly.Covers(day, vo.SlotDinner))
	assert.False(t, whole.Covers(calendar.AddDays(day, 1), vo.SlotLunch))
}

package testutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	creditUsecases "github.com/homechef-inc/mealsub/internal/application/credit/usecases"
	fulfillmentUsecases "github.com/homechef-inc/mealsub/internal/application/fulfillment/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/billing"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
)

const (
	ConsumerID = uint(42)
	VendorID   = uint(7)
)

// LineSpec describes one meal line of a seeded group.
type LineSpec struct {
	Slot      vo.Slot
	Weekdays  calendar.WeekdaySet
	UnitPrice int64
}

// Lunch is a lunch line on the given weekday codes.
func Lunch(price int64, codes ...string) LineSpec {
	return LineSpec{Slot: vo.SlotLunch, Weekdays: calendar.MustWeekdaySet(codes...), UnitPrice: price}
}

// Seeded is what SeedGroup created.
type Seeded struct {
	Group   *subscription.Group
	Lines   []*subscription.Subscription
	Cycle   *subscription.Cycle
	Invoice *billing.Invoice
}

// SeedGroup creates an active weekly group with the given lines and a
// pending invoice for the cycle [first, last].
func (e *Env) SeedGroup(t *testing.T, first, last string, lines ...LineSpec) *Seeded {
	t.Helper()
	return e.seed(t, false, first, last, lines...)
}

func (e *Env) seed(t *testing.T, paid bool, first, last string, lines ...LineSpec) *Seeded {
	t.Helper()
	ctx := Ctx()

	group, err := subscription.NewGroup(ConsumerID, VendorID, calendar.PeriodWeekly, vo.PaymentMethodOneTime, shared.DefaultCurrency)
	require.NoError(t, err)
	require.NoError(t, e.Groups.Create(ctx, group))

	s := &Seeded{Group: group}
	for _, spec := range lines {
		line, err := subscription.NewSubscription(group.ID(), spec.Slot, spec.Weekdays,
			shared.NewMoney(spec.UnitPrice, group.Currency()), 2)
		require.NoError(t, err)
		require.NoError(t, e.Subs.Create(ctx, line))
		s.Lines = append(s.Lines, line)
	}

	r := calendar.NewRange(calendar.MustDate(first), calendar.MustDate(last))
	s.Cycle, err = subscription.NewCycle(group.ID(), subscription.CycleKindRegular, r, group.Cadence())
	require.NoError(t, err)
	require.NoError(t, e.Cycles.Create(ctx, s.Cycle))

	subtotal := subscription.EstimateLines(s.Lines, r, group.Currency())
	s.Invoice, err = billing.NewInvoice(group.ID(), s.Cycle.ID(), subtotal, shared.Zero(group.Currency()), billingUsecases.NewReceipt())
	require.NoError(t, err)
	if paid {
		require.NoError(t, s.Invoice.MarkAsPaid("pay_seed", time.Now().UTC()))
	}
	require.NoError(t, e.Invoices.Create(ctx, s.Invoice))
	return s
}

// SeedPaidGroup is SeedGroup with the invoice paid and orders generated.
func (e *Env) SeedPaidGroup(t *testing.T, first, last string, lines ...LineSpec) *Seeded {
	t.Helper()
	ctx := Ctx()

	s := e.seed(t, true, first, last, lines...)
	_, err := e.Generator.Execute(ctx, fulfillmentUsecases.GenerateOrdersCommand{
		GroupID: s.Group.ID(),
		CycleID: s.Cycle.ID(),
	})
	require.NoError(t, err)
	return s
}

// IssueCredit adds an available credit to the group.
func (e *Env) IssueCredit(t *testing.T, groupID uint, amount int64, expiresAt time.Time) *credit.Credit {
	t.Helper()
	c, err := e.Ledger.Issue(Ctx(), creditUsecases.IssueCommand{
		GroupID:   groupID,
		Amount:    shared.NewMoney(amount, shared.DefaultCurrency),
		Reason:    credit.ReasonCustomerSkip,
		ExpiresAt: expiresAt,
	})
	require.NoError(t, err)
	return c
}

// Reload fetches the group's current state.
func (e *Env) Reload(t *testing.T, groupID uint) *subscription.Group {
	t.Helper()
	g, err := e.Groups.GetByID(Ctx(), groupID)
	require.NoError(t, err)
	return g
}

// SeedUnfulfilledGroup is a paid group whose order generation failed and is
// waiting for the retry job.
func (e *Env) SeedUnfulfilledGroup(t *testing.T, first, last string, lines ...LineSpec) *Seeded {
	t.Helper()

	s := e.seed(t, true, first, last, lines...)
	s.Invoice.MarkFulfillmentPending(errors.New("vendor store unavailable"), time.Now().UTC())
	require.NoError(t, e.Invoices.UpdateMetadata(Ctx(), s.Invoice))
	return s
}

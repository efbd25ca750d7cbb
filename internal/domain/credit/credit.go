package credit

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusConsumed  Status = "consumed"
	StatusExpired   Status = "expired"
)

type Reason string

const (
	ReasonPause        Reason = "pause"
	ReasonHolidaySkip  Reason = "holiday_skip"
	ReasonCustomerSkip Reason = "customer_skip"
	ReasonCancellation Reason = "cancellation"
	ReasonRemainder    Reason = "remainder"
)

func (r Reason) IsValid() bool {
	switch r {
	case ReasonPause, ReasonHolidaySkip, ReasonCustomerSkip, ReasonCancellation, ReasonRemainder:
		return true
	}
	return false
}

var (
	ErrCreditNotFound     = errors.New("credit not found")
	ErrCreditNotAvailable = errors.New("credit is not available")
)

// Credit is value owed to a consumer, spendable on a later cycle until it
// expires. Credits are whole: they are consumed entirely or not at all.
type Credit struct {
	id             uint
	groupID        uint
	subscriptionID uint
	amount         shared.Money
	status         Status
	reason         Reason
	expiresAt      time.Time
	sourceOrderID  *uint
	consumedAt     *time.Time
	consumedRef    string
	createdAt      time.Time
}

func NewCredit(groupID, subscriptionID uint, amount shared.Money, reason Reason, expiresAt time.Time) (*Credit, error) {
	if groupID == 0 {
		return nil, fmt.Errorf("group ID is required")
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("credit amount must be positive")
	}
	if !reason.IsValid() {
		return nil, fmt.Errorf("invalid credit reason: %s", reason)
	}
	return &Credit{
		groupID:        groupID,
		subscriptionID: subscriptionID,
		amount:         amount,
		status:         StatusAvailable,
		reason:         reason,
		expiresAt:      expiresAt,
		createdAt:      biztime.NowUTC(),
	}, nil
}

func ReconstructCredit(
	id, groupID, subscriptionID uint,
	amount shared.Money,
	status Status,
	reason Reason,
	expiresAt time.Time,
	sourceOrderID *uint,
	consumedAt *time.Time,
	consumedRef string,
	createdAt time.Time,
) *Credit {
	return &Credit{
		id:             id,
		groupID:        groupID,
		subscriptionID: subscriptionID,
		amount:         amount,
		status:         status,
		reason:         reason,
		expiresAt:      expiresAt,
		sourceOrderID:  sourceOrderID,
		consumedAt:     consumedAt,
		consumedRef:    consumedRef,
		createdAt:      createdAt,
	}
}

// LinkOrder records the order whose cancellation produced the credit.
func (c *Credit) LinkOrder(orderID uint) {
	c.sourceOrderID = &orderID
}

// Consume spends the whole credit. ref names what it was spent on.
func (c *Credit) Consume(at time.Time, ref string) error {
	if c.status != StatusAvailable {
		return fmt.Errorf("%w: credit %d is %s", ErrCreditNotAvailable, c.id, c.status)
	}
	if c.IsExpiredAt(at) {
		return fmt.Errorf("%w: credit %d expired at %s", ErrCreditNotAvailable, c.id, c.expiresAt.Format(time.RFC3339))
	}
	c.status = StatusConsumed
	c.consumedAt = &at
	c.consumedRef = ref
	return nil
}

func (c *Credit) Expire() {
	if c.status == StatusAvailable {
		c.status = StatusExpired
	}
}

// IsExpiredAt reports whether the credit's expiry has passed at now,
// regardless of the stored status.
func (c *Credit) IsExpiredAt(now time.Time) bool {
	return !now.Before(c.expiresAt)
}

// IsSpendableAt reports whether the credit is available and unexpired.
func (c *Credit) IsSpendableAt(now time.Time) bool {
	return c.status == StatusAvailable && !c.IsExpiredAt(now)
}

func (c *Credit) ID() uint             { return c.id }
func (c *Credit) GroupID() uint        { return c.groupID }
func (c *Credit) SubscriptionID() uint { return c.subscriptionID }
func (c *Credit) Amount() shared.Money { return c.amount }
func (c *Credit) Status() Status       { return c.status }
func (c *Credit) Reason() Reason       { return c.reason }
func (c *Credit) ExpiresAt() time.Time { return c.expiresAt }
func (c *Credit) SourceOrderID() *uint { return c.sourceOrderID }
func (c *Credit) ConsumedAt() *time.Time {
	return c.consumedAt
}
func (c *Credit) ConsumedRef() string  { return c.consumedRef }
func (c *Credit) CreatedAt() time.Time { return c.createdAt }

func (c *Credit) SetID(id uint) {
	c.id = id
}

// SortFIFO orders credits soonest-expiring first, then oldest first.
func SortFIFO(credits []*Credit) {
	sort.SliceStable(credits, func(i, j int) bool {
		if !credits[i].expiresAt.Equal(credits[j].expiresAt) {
			return credits[i].expiresAt.Before(credits[j].expiresAt)
		}
		return credits[i].id < credits[j].id
	})
}

// Sum totals the amount of the given credits.
func Sum(credits []*Credit, currency string) shared.Money {
	total := shared.Zero(currency)
	for _, c := range credits {
		total = total.Add(c.amount)
	}
	return total
}

// Plan is the set of credits chosen to cover an amount.
type Plan struct {
	Use     []*Credit
	Applied shared.Money
	// Surplus is the unused value of the last credit in Use when it
	// overshoots the amount. It is reissued as a remainder credit.
	Surplus shared.Money
}

// Count is the number of whole credits the plan consumes.
func (p Plan) Count() int { return len(p.Use) }

// PlanConsumption picks credits soonest-expiring first until amount is
// covered. Credits are taken whole; Applied never exceeds amount.
func PlanConsumption(credits []*Credit, amount shared.Money) Plan {
	sorted := make([]*Credit, len(credits))
	copy(sorted, credits)
	SortFIFO(sorted)

	plan := Plan{
		Applied: shared.Zero(amount.Currency()),
		Surplus: shared.Zero(amount.Currency()),
	}
	if !amount.IsPositive() {
		return plan
	}

	taken := shared.Zero(amount.Currency())
	for _, c := range sorted {
		if !taken.LessThan(amount) {
			break
		}
		plan.Use = append(plan.Use, c)
		taken = taken.Add(c.amount)
	}

	plan.Applied = shared.Min(taken, amount)
	plan.Surplus = taken.Sub(plan.Applied)
	return plan
}

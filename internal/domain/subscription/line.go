package subscription

import (
	"fmt"
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
)

// Subscription is one meal-slot line of a group: a slot, the weekdays it is
// delivered on, and the unit price per meal.
type Subscription struct {
	id            uint
	groupID       uint
	slot          vo.Slot
	weekdays      calendar.WeekdaySet
	unitPrice     shared.Money
	skipAllowance int
	skipsUsed     int
	status        vo.GroupStatus
	createdAt     time.Time
	updatedAt     time.Time
}

func NewSubscription(groupID uint, slot vo.Slot, weekdays calendar.WeekdaySet, unitPrice shared.Money, skipAllowance int) (*Subscription, error) {
	if !slot.IsValid() {
		return nil, fmt.Errorf("invalid meal slot: %s", slot)
	}
	if weekdays.IsEmpty() {
		return nil, fmt.Errorf("at least one weekday is required")
	}
	if !unitPrice.IsPositive() {
		return nil, fmt.Errorf("unit price must be positive")
	}
	if skipAllowance < 0 {
		return nil, fmt.Errorf("skip allowance cannot be negative")
	}

	now := biztime.NowUTC()
	return &Subscription{
		groupID:       groupID,
		slot:          slot,
		weekdays:      weekdays,
		unitPrice:     unitPrice,
		skipAllowance: skipAllowance,
		status:        vo.StatusActive,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructSubscription(
	id, groupID uint,
	slot vo.Slot,
	weekdays calendar.WeekdaySet,
	unitPrice shared.Money,
	skipAllowance, skipsUsed int,
	status vo.GroupStatus,
	createdAt, updatedAt time.Time,
) *Subscription {
	return &Subscription{
		id:            id,
		groupID:       groupID,
		slot:          slot,
		weekdays:      weekdays,
		unitPrice:     unitPrice,
		skipAllowance: skipAllowance,
		skipsUsed:     skipsUsed,
		status:        status,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// UseSkip consumes one customer skip from the current cycle's allowance.
func (s *Subscription) UseSkip() error {
	if s.skipsUsed >= s.skipAllowance {
		return ErrNoSkipsLeft
	}
	s.skipsUsed++
	s.updatedAt = biztime.NowUTC()
	return nil
}

// ResetSkips starts a new cycle's allowance.
func (s *Subscription) ResetSkips() {
	s.skipsUsed = 0
	s.updatedAt = biztime.NowUTC()
}

// MirrorStatus copies the group status onto the line.
func (s *Subscription) MirrorStatus(status vo.GroupStatus) {
	s.status = status
	s.updatedAt = biztime.NowUTC()
}

// MealDates lists the delivery dates of this line inside r.
func (s *Subscription) MealDates(r calendar.Range) []time.Time {
	return calendar.DatesInSet(r.Start, r.LastDay(), s.weekdays)
}

// Estimate is the price of every meal this line delivers inside r.
func (s *Subscription) Estimate(r calendar.Range) shared.Money {
	return s.unitPrice.Mul(calendar.CountInSet(r.Start, r.LastDay(), s.weekdays))
}

func (s *Subscription) ID() uint                      { return s.id }
func (s *Subscription) GroupID() uint                 { return s.groupID }
func (s *Subscription) Slot() vo.Slot                 { return s.slot }
func (s *Subscription) Weekdays() calendar.WeekdaySet { return s.weekdays }
func (s *Subscription) UnitPrice() shared.Money       { return s.unitPrice }
func (s *Subscription) SkipAllowance() int            { return s.skipAllowance }
func (s *Subscription) SkipsUsed() int                { return s.skipsUsed }
func (s *Subscription) Status() vo.GroupStatus        { return s.status }
func (s *Subscription) CreatedAt() time.Time          { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time          { return s.updatedAt }

func (s *Subscription) SetID(id uint) {
	s.id = id
}

func (s *Subscription) SetGroupID(groupID uint) {
	s.groupID = groupID
}

// EstimateLines sums Estimate over every line.
func EstimateLines(lines []*Subscription, r calendar.Range, currency string) shared.Money {
	total := shared.Zero(currency)
	for _, l := range lines {
		total = total.Add(l.Estimate(r))
	}
	return total
}

package subscription

import (
	"fmt"
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
)

// CycleKind distinguishes renewing cycles from one-off trials.
type CycleKind string

const (
	CycleKindRegular CycleKind = "regular"
	CycleKindTrial   CycleKind = "trial"
)

// Cycle is a billing period [start, end] of a group. RenewalDate is the first
// day of the following cycle, so end is always RenewalDate minus one day.
// Cycles are append-only.
type Cycle struct {
	id          uint
	groupID     uint
	kind        CycleKind
	start       time.Time
	end         time.Time
	renewalDate time.Time
	createdAt   time.Time
}

// NewCycle builds a cycle over r. Partial cycles keep their requested start
// and must end on the aligned boundary of the group's cadence.
func NewCycle(groupID uint, kind CycleKind, r calendar.Range, period calendar.Period) (*Cycle, error) {
	aligned := calendar.CycleFor(r.Start, period)
	if kind == CycleKindRegular && !aligned.LastDay().Equal(r.LastDay()) {
		return nil, fmt.Errorf("cycle must end on %s, got %s",
			biztime.FormatDate(aligned.LastDay()), biztime.FormatDate(r.LastDay()))
	}
	if r.LastDay().Before(r.Start) {
		return nil, fmt.Errorf("cycle end precedes start")
	}

	return &Cycle{
		groupID:     groupID,
		kind:        kind,
		start:       r.Start,
		end:         r.LastDay(),
		renewalDate: calendar.AddDays(r.LastDay(), 1),
		createdAt:   biztime.NowUTC(),
	}, nil
}

func ReconstructCycle(id, groupID uint, kind CycleKind, start, end, renewalDate, createdAt time.Time) *Cycle {
	return &Cycle{
		id:          id,
		groupID:     groupID,
		kind:        kind,
		start:       start,
		end:         end,
		renewalDate: renewalDate,
		createdAt:   createdAt,
	}
}

// Range returns the cycle as a calendar range.
func (c *Cycle) Range() calendar.Range {
	return calendar.NewRange(c.start, c.end)
}

func (c *Cycle) Contains(date time.Time) bool {
	return c.Range().Contains(date)
}

func (c *Cycle) IsTrial() bool { return c.kind == CycleKindTrial }

func (c *Cycle) ID() uint               { return c.id }
func (c *Cycle) GroupID() uint          { return c.groupID }
func (c *Cycle) Kind() CycleKind        { return c.kind }
func (c *Cycle) Start() time.Time       { return c.start }
func (c *Cycle) End() time.Time         { return c.end }
func (c *Cycle) RenewalDate() time.Time { return c.renewalDate }
func (c *Cycle) CreatedAt() time.Time   { return c.createdAt }

func (c *Cycle) SetID(id uint) {
	c.id = id
}

func (c *Cycle) SetGroupID(groupID uint) {
	c.groupID = groupID
}

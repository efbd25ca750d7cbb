// Package calendar holds the date arithmetic for billing cycles, renewals and
// meal schedules. Every value is a civil date represented as UTC midnight;
// callers convert instants with DateOnly, which reads the business timezone.
package calendar

import (
	"fmt"
	"time"

	"github.com/homechef-inc/mealsub/internal/shared/biztime"
)

// Period is the renewal cadence of a subscription group.
type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func (p Period) IsValid() bool {
	return p == PeriodWeekly || p == PeriodMonthly
}

func (p Period) String() string {
	return string(p)
}

const day = 24 * time.Hour

// lastInstant is the offset of the final millisecond of a day.
const lastInstant = day - time.Millisecond

// Range is a closed date interval. Start is 00:00 of the first day and End
// is 23:59:59.999 of the last day.
type Range struct {
	Start time.Time
	End   time.Time
}

// LastDay returns the civil date of End.
func (r Range) LastDay() time.Time {
	return truncate(r.End)
}

// Contains reports whether the civil date falls inside the range.
func (r Range) Contains(date time.Time) bool {
	d := truncate(date)
	return !d.Before(r.Start) && !d.After(r.LastDay())
}

// Days is the number of calendar days covered by the range.
func (r Range) Days() int {
	return DaysBetween(r.Start, r.LastDay()) + 1
}

// NewRange builds a range from two civil dates, both inclusive.
func NewRange(first, last time.Time) Range {
	return Range{Start: truncate(first), End: truncate(last).Add(lastInstant)}
}

// DateOnly converts an instant to its civil date in the business timezone.
func DateOnly(t time.Time) time.Time {
	return biztime.CivilDate(t)
}

// ParseDate parses YYYY-MM-DD into a civil date.
func ParseDate(s string) (time.Time, error) {
	return biztime.ParseDate(s)
}

// AddDays shifts a civil date by n days.
func AddDays(date time.Time, n int) time.Time {
	d := truncate(date)
	return time.Date(d.Year(), d.Month(), d.Day()+n, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b (negative if b precedes a).
func DaysBetween(a, b time.Time) int {
	return int(truncate(b).Sub(truncate(a)) / day)
}

// WeeklyCycle returns the Monday-to-Sunday week containing date.
func WeeklyCycle(date time.Time) (start, end time.Time) {
	d := truncate(date)
	// time.Weekday has Sunday = 0; shift so Monday = 0.
	offset := (int(d.Weekday()) + 6) % 7
	start = AddDays(d, -offset)
	end = AddDays(start, 6).Add(lastInstant)
	return start, end
}

// MonthlyCycle returns the calendar month containing date.
func MonthlyCycle(date time.Time) (start, end time.Time) {
	d := truncate(date)
	start = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1).Add(lastInstant)
	return start, end
}

// CycleFor returns the aligned cycle of the given period containing date.
func CycleFor(date time.Time, period Period) Range {
	var start, end time.Time
	switch period {
	case PeriodMonthly:
		start, end = MonthlyCycle(date)
	default:
		start, end = WeeklyCycle(date)
	}
	return Range{Start: start, End: end}
}

// PartialCycle returns the range from date to the end of its aligned cycle.
// Checkout and resume start on the requested date but always end on the
// aligned boundary.
func PartialCycle(date time.Time, period Period) Range {
	aligned := CycleFor(date, period)
	return Range{Start: truncate(date), End: aligned.End}
}

// NextRenewalDate returns the first day of the cycle after the one containing
// from: the next Monday (weekly) or the next 1st (monthly). The result is
// always strictly after from.
func NextRenewalDate(from time.Time, period Period) time.Time {
	return AddDays(CycleFor(from, period).LastDay(), 1)
}

// NextFullCycle returns the aligned cycle starting at renewalDate.
func NextFullCycle(renewalDate time.Time, period Period) Range {
	return CycleFor(renewalDate, period)
}

// DatesInSet lists every date in [start, end] whose weekday is in set.
func DatesInSet(start, end time.Time, set WeekdaySet) []time.Time {
	var dates []time.Time
	last := truncate(end)
	for d := truncate(start); !d.After(last); d = AddDays(d, 1) {
		if set.Contains(d) {
			dates = append(dates, d)
		}
	}
	return dates
}

// CountInSet counts the dates in [start, end] whose weekday is in set.
func CountInSet(start, end time.Time, set WeekdaySet) int {
	n := 0
	last := truncate(end)
	for d := truncate(start); !d.After(last); d = AddDays(d, 1) {
		if set.Contains(d) {
			n++
		}
	}
	return n
}

// WeekdayOccurrence returns the first date on or after from that falls on wd.
func WeekdayOccurrence(from time.Time, wd time.Weekday) time.Time {
	d := truncate(from)
	return AddDays(d, (int(wd)-int(d.Weekday())+7)%7)
}

// MustDate is a test and fixture helper; it panics on malformed input.
func MustDate(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(fmt.Sprintf("calendar: %v", err))
	}
	return d
}

func truncate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

package calendar

import (
	"fmt"
	"strings"
	"time"
)

// WeekdaySet is a set over the fixed alphabet mon..sun, stored as a bitmask
// indexed by time.Weekday.
type WeekdaySet uint8

var weekdayCodes = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// codeOrder lists codes Monday first for rendering.
var codeOrder = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// ParseWeekday maps a three-letter code to a time.Weekday.
func ParseWeekday(code string) (time.Weekday, error) {
	c := strings.ToLower(strings.TrimSpace(code))
	for i, w := range weekdayCodes {
		if w == c {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", code)
}

// WeekdayCode returns the three-letter code for wd.
func WeekdayCode(wd time.Weekday) string {
	return weekdayCodes[wd]
}

// ParseWeekdaySet builds a set from codes; duplicates are ignored.
func ParseWeekdaySet(codes []string) (WeekdaySet, error) {
	var s WeekdaySet
	for _, c := range codes {
		wd, err := ParseWeekday(c)
		if err != nil {
			return 0, err
		}
		s = s.With(wd)
	}
	return s, nil
}

// MustWeekdaySet panics on an unknown code.
func MustWeekdaySet(codes ...string) WeekdaySet {
	s, err := ParseWeekdaySet(codes)
	if err != nil {
		panic(err)
	}
	return s
}

func (s WeekdaySet) With(wd time.Weekday) WeekdaySet {
	return s | 1<<uint(wd)
}

func (s WeekdaySet) Has(wd time.Weekday) bool {
	return s&(1<<uint(wd)) != 0
}

// Contains reports whether the weekday of date is in the set.
func (s WeekdaySet) Contains(date time.Time) bool {
	return s.Has(truncate(date).Weekday())
}

func (s WeekdaySet) IsEmpty() bool {
	return s&0x7f == 0
}

func (s WeekdaySet) Len() int {
	n := 0
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if s.Has(wd) {
			n++
		}
	}
	return n
}

// Codes renders the set Monday first.
func (s WeekdaySet) Codes() []string {
	codes := make([]string, 0, 7)
	for _, wd := range codeOrder {
		if s.Has(wd) {
			codes = append(codes, weekdayCodes[wd])
		}
	}
	return codes
}

// String renders the set as a comma separated list, the storage format.
func (s WeekdaySet) String() string {
	return strings.Join(s.Codes(), ",")
}

// ParseWeekdayList parses the comma separated storage format.
func ParseWeekdayList(list string) (WeekdaySet, error) {
	if strings.TrimSpace(list) == "" {
		return 0, nil
	}
	return ParseWeekdaySet(strings.Split(list, ","))
}

package valueobjects

import (
	"fmt"
	"time"
)

// Slot is a meal slot of the day.
type Slot string

const (
	SlotBreakfast Slot = "breakfast"
	SlotLunch     Slot = "lunch"
	SlotDinner    Slot = "dinner"
)

// slotStart is the delivery window start, in business-local time of day.
var slotStart = map[Slot]time.Duration{
	SlotBreakfast: 8 * time.Hour,
	SlotLunch:     12*time.Hour + 30*time.Minute,
	SlotDinner:    19*time.Hour + 30*time.Minute,
}

func ParseSlot(s string) (Slot, error) {
	slot := Slot(s)
	if !slot.IsValid() {
		return "", fmt.Errorf("unknown meal slot %q", s)
	}
	return slot, nil
}

func (s Slot) IsValid() bool {
	_, ok := slotStart[s]
	return ok
}

func (s Slot) String() string {
	return string(s)
}

// StartOffset is the time after local midnight at which the slot's delivery
// window opens.
func (s Slot) StartOffset() time.Duration {
	return slotStart[s]
}

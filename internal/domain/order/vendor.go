package order

import (
	"time"

	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
)

// SlotCapacity is a vendor's daily limit for one slot. Zero means unlimited.
type SlotCapacity struct {
	VendorID  uint
	Slot      vo.Slot
	MaxPerDay int
}

func (c SlotCapacity) IsUnlimited() bool {
	return c.MaxPerDay <= 0
}

// Holiday closes a vendor for a date, for one slot or (Slot empty) the whole day.
type Holiday struct {
	ID       uint
	VendorID uint
	Date     time.Time
	Slot     vo.Slot
	Note     string
}

// Covers reports whether the holiday applies to the date and slot.
func (h Holiday) Covers(date time.Time, slot vo.Slot) bool {
	if !h.Date.Equal(date) {
		return false
	}
	return h.Slot == "" || h.Slot == slot
}

// Seat is one unit of booked capacity for (vendor, date, slot). The store
// keeps seats unique so concurrent generators cannot overbook.
type Seat struct {
	VendorID    uint
	ServiceDate time.Time
	Slot        vo.Slot
	SeatNo      int
	OrderID     uint
}

package models

import "time"

type OrderModel struct {
	ID             uint      `gorm:"primaryKey"`
	GroupID        uint      `gorm:"index;not null"`
	SubscriptionID uint      `gorm:"not null;uniqueIndex:idx_order_sub_date_slot"`
	CycleID        uint      `gorm:"index;not null"`
	VendorID       uint      `gorm:"not null;index:idx_order_vendor_date_slot"`
	ServiceDate    time.Time `gorm:"not null;uniqueIndex:idx_order_sub_date_slot;index:idx_order_vendor_date_slot"`
	Slot           string    `gorm:"size:10;not null;uniqueIndex:idx_order_sub_date_slot;index:idx_order_vendor_date_slot"`
	Status         string    `gorm:"size:24;not null;index"`
	UnitPrice      int64     `gorm:"not null"`
	Currency       string    `gorm:"size:3;not null;default:'INR'"`
	CancelSource   *string   `gorm:"size:16"`
	SeatNo         *int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (OrderModel) TableName() string {
	return "orders"
}

type VendorSlotCapacityModel struct {
	ID        uint   `gorm:"primaryKey"`
	VendorID  uint   `gorm:"not null;uniqueIndex:idx_capacity_vendor_slot"`
	Slot      string `gorm:"size:10;not null;uniqueIndex:idx_capacity_vendor_slot"`
	MaxPerDay int    `gorm:"not null;default:0"`
	UpdatedAt time.Time
}

func (VendorSlotCapacityModel) TableName() string {
	return "vendor_slot_capacities"
}

type VendorHolidayModel struct {
	ID        uint      `gorm:"primaryKey"`
	VendorID  uint      `gorm:"not null;uniqueIndex:idx_holiday_vendor_date_slot"`
	Date      time.Time `gorm:"column:holiday_date;not null;uniqueIndex:idx_holiday_vendor_date_slot"`
	Slot      string    `gorm:"size:10;not null;default:'';uniqueIndex:idx_holiday_vendor_date_slot"`
	Note      string    `gorm:"size:255"`
	CreatedAt time.Time
}

func (VendorHolidayModel) TableName() string {
	return "vendor_holidays"
}

// SlotSeatModel is one unit of booked capacity. Its unique index is the
// store-level guard against overbooking.
type SlotSeatModel struct {
	ID          uint      `gorm:"primaryKey"`
	VendorID    uint      `gorm:"not null;uniqueIndex:idx_seat_vendor_date_slot_no"`
	ServiceDate time.Time `gorm:"not null;uniqueIndex:idx_seat_vendor_date_slot_no"`
	Slot        string    `gorm:"size:10;not null;uniqueIndex:idx_seat_vendor_date_slot_no"`
	SeatNo      int       `gorm:"not null;uniqueIndex:idx_seat_vendor_date_slot_no"`
	OrderID     uint      `gorm:"not null;uniqueIndex"`
	CreatedAt   time.Time
}

func (SlotSeatModel) TableName() string {
	return "slot_seats"
}

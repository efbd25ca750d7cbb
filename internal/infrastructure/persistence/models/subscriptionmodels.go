package models

import "time"

type SubscriptionGroupModel struct {
	ID            uint    `gorm:"primaryKey"`
	ConsumerID    uint    `gorm:"index;not null;uniqueIndex:idx_group_checkout_key,priority:1"`
	VendorID      uint    `gorm:"index;not null"`
	Status        string  `gorm:"size:20;not null;index:idx_group_status_cadence"`
	PaymentMethod string  `gorm:"size:20;not null"`
	Cadence       string  `gorm:"size:10;not null;index:idx_group_status_cadence"`
	Currency      string  `gorm:"size:3;not null;default:'INR'"`
	CustomerRef   *string `gorm:"size:128"`
	MandateRef    *string `gorm:"size:128"`
	CheckoutKey   *string `gorm:"size:64;uniqueIndex:idx_group_checkout_key,priority:2"`
	PausedFrom    *time.Time
	PausedCycleID *uint
	CancelledAt   *time.Time
	CancelReason  string `gorm:"size:255"`
	Version       int    `gorm:"not null;default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (SubscriptionGroupModel) TableName() string {
	return "subscription_groups"
}

type SubscriptionModel struct {
	ID            uint   `gorm:"primaryKey"`
	GroupID       uint   `gorm:"index;not null"`
	Slot          string `gorm:"size:10;not null"`
	Weekdays      string `gorm:"size:32;not null"`
	UnitPrice     int64  `gorm:"not null"`
	Currency      string `gorm:"size:3;not null;default:'INR'"`
	SkipAllowance int    `gorm:"not null;default:0"`
	SkipsUsed     int    `gorm:"not null;default:0"`
	Status        string `gorm:"size:20;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (SubscriptionModel) TableName() string {
	return "subscriptions"
}

type CycleModel struct {
	ID          uint      `gorm:"primaryKey"`
	GroupID     uint      `gorm:"not null;uniqueIndex:idx_cycle_group_start"`
	Kind        string    `gorm:"size:10;not null;default:'regular'"`
	StartDate   time.Time `gorm:"not null;uniqueIndex:idx_cycle_group_start"`
	EndDate     time.Time `gorm:"not null"`
	RenewalDate time.Time `gorm:"not null;index"`
	CreatedAt   time.Time
}

func (CycleModel) TableName() string {
	return "cycles"
}

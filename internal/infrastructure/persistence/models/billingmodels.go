package models

import (
	"time"

	"gorm.io/datatypes"
)

type InvoiceModel struct {
	ID              uint    `gorm:"primaryKey"`
	SID             string  `gorm:"column:sid;uniqueIndex;size:32;not null"`
	GroupID         uint    `gorm:"index;not null"`
	CycleID         uint    `gorm:"uniqueIndex;not null"`
	Subtotal        int64   `gorm:"not null"`
	CreditsApplied  int64   `gorm:"not null;default:0"`
	TotalAmount     int64   `gorm:"not null"`
	Currency        string  `gorm:"size:3;not null;default:'INR'"`
	Status          string  `gorm:"size:20;not null;index"`
	Receipt         string  `gorm:"size:64;not null"`
	GatewayOrderRef *string `gorm:"size:128;index"`
	PaymentRef      *string `gorm:"size:128"`
	RefundRef       *string `gorm:"size:128"`
	PaidAt          *time.Time
	RefundedAt      *time.Time
	// FulfillmentPending mirrors the metadata flag so the retry job can
	// query it without JSON functions.
	FulfillmentPending bool              `gorm:"not null;default:false;index"`
	Metadata           datatypes.JSONMap `gorm:"type:json"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (InvoiceModel) TableName() string {
	return "invoices"
}

type RefundRequestModel struct {
	ID        uint   `gorm:"primaryKey"`
	SID       string `gorm:"column:sid;uniqueIndex;size:32;not null"`
	GroupID   uint   `gorm:"index;not null"`
	InvoiceID *uint  `gorm:"uniqueIndex"`
	Amount    int64  `gorm:"not null"`
	Currency  string `gorm:"size:3;not null;default:'INR'"`
	Reason    string `gorm:"size:255"`
	Status    string `gorm:"size:20;not null"`
	CreatedAt time.Time
}

func (RefundRequestModel) TableName() string {
	return "refund_requests"
}

type CreditModel struct {
	ID             uint      `gorm:"primaryKey"`
	GroupID        uint      `gorm:"not null;index:idx_credit_group_status"`
	SubscriptionID uint      `gorm:"index;not null"`
	Amount         int64     `gorm:"not null"`
	Currency       string    `gorm:"size:3;not null;default:'INR'"`
	Status         string    `gorm:"size:20;not null;index:idx_credit_group_status"`
	Reason         string    `gorm:"size:20;not null"`
	ExpiresAt      time.Time `gorm:"not null;index"`
	SourceOrderID  *uint     `gorm:"index"`
	ConsumedAt     *time.Time
	ConsumedRef    string `gorm:"size:64"`
	CreatedAt      time.Time
}

func (CreditModel) TableName() string {
	return "credits"
}

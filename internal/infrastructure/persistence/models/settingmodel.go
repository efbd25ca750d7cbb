package models

import "time"

type PlatformSettingModel struct {
	Key       string `gorm:"column:setting_key;primaryKey;size:64"`
	Value     string `gorm:"column:setting_value;size:255;not null"`
	UpdatedAt time.Time
}

func (PlatformSettingModel) TableName() string {
	return "platform_settings"
}

// All lists every model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&SubscriptionGroupModel{},
		&SubscriptionModel{},
		&CycleModel{},
		&InvoiceModel{},
		&RefundRequestModel{},
		&CreditModel{},
		&OrderModel{},
		&VendorSlotCapacityModel{},
		&VendorHolidayModel{},
		&SlotSeatModel{},
		&PlatformSettingModel{},
	}
}

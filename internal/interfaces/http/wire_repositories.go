package http

import (
	"time"

	"gorm.io/gorm"

	"github.com/homechef-inc/mealsub/internal/domain/billing"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/order"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	"github.com/homechef-inc/mealsub/internal/infrastructure/cache"
	"github.com/homechef-inc/mealsub/internal/infrastructure/repository"
)

// repositories holds all repository instances used by the application.
type repositories struct {
	groupRepo    subscription.GroupRepository
	subRepo      subscription.SubscriptionRepository
	cycleRepo    subscription.CycleRepository
	invoiceRepo  billing.InvoiceRepository
	refundRepo   billing.RefundRequestRepository
	creditRepo   credit.Repository
	orderRepo    order.Repository
	capacityRepo order.CapacityRepository
	holidayRepo  order.HolidayRepository
	settingRepo  setting.Repository
}

// newRepositories creates all repository instances from the database
// connection. Slot capacity reads go through an in-process cache.
func newRepositories(db *gorm.DB, capacityTTL time.Duration) *repositories {
	return &repositories{
		groupRepo:    repository.NewSubscriptionGroupRepository(db),
		subRepo:      repository.NewSubscriptionRepository(db),
		cycleRepo:    repository.NewCycleRepository(db),
		invoiceRepo:  repository.NewInvoiceRepository(db),
		refundRepo:   repository.NewRefundRequestRepository(db),
		creditRepo:   repository.NewCreditRepository(db),
		orderRepo:    repository.NewOrderRepository(db),
		capacityRepo: cache.NewSlotCapacityCache(repository.NewVendorCapacityRepository(db), capacityTTL),
		holidayRepo:  repository.NewVendorHolidayRepository(db),
		settingRepo:  repository.NewPlatformSettingRepository(db),
	}
}

// Package testutil wires the engine over an in-memory SQLite database for
// use case tests, with hand mocks for the gateway and operator alerts.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	creditUsecases "github.com/homechef-inc/mealsub/internal/application/credit/usecases"
	fulfillmentUsecases "github.com/homechef-inc/mealsub/internal/application/fulfillment/usecases"
	settingUsecases "github.com/homechef-inc/mealsub/internal/application/setting/usecases"
	subscriptionUsecases "github.com/homechef-inc/mealsub/internal/application/subscription/usecases"
	"github.com/homechef-inc/mealsub/internal/infrastructure/database"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
	"github.com/homechef-inc/mealsub/internal/infrastructure/repository"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	sharedConfig "github.com/homechef-inc/mealsub/internal/shared/config"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// Env is a fully wired engine over a private in-memory database.
type Env struct {
	DB    *gorm.DB
	TxMgr *db.TransactionManager
	Log   logger.Interface

	Groups   *repository.SubscriptionGroupRepository
	Subs     *repository.SubscriptionRepository
	Cycles   *repository.CycleRepository
	Invoices *repository.InvoiceRepository
	Refunds  *repository.RefundRequestRepository
	Credits  *repository.CreditRepository
	Orders   *repository.OrderRepository
	Capacity *repository.VendorCapacityRepository
	Holidays *repository.VendorHolidayRepository
	Settings *repository.PlatformSettingRepository

	Provider     *settingUsecases.SettingProvider
	Ledger       *creditUsecases.Ledger
	Checker      *fulfillmentUsecases.CapacityChecker
	Generator    *fulfillmentUsecases.GenerateOrdersUseCase
	Finalizer    *billingUsecases.FinalizeInvoiceUseCase
	PaymentOrder *billingUsecases.CreatePaymentOrderUseCase
	Renewals     *billingUsecases.RunRenewalsUseCase

	Gateway *MockGateway
	Alerter *MockAlerter
}

// DefaultPlatform mirrors the configured production defaults.
func DefaultPlatform() sharedConfig.PlatformConfig {
	return sharedConfig.PlatformConfig{
		SkipCutoffHoursBeforeSlot: 12,
		CreditExpiryDays:          60,
		WeeklyRenewalDay:          "fri",
		MonthlyRenewalDay:         25,
		NoticeHours:               24,
		RefundPolicy:              "customer_choice",
		TrialDays:                 3,
	}
}

// NewDB opens a migrated in-memory database private to the test.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	biztime.MustInit(biztime.DefaultTimezone)

	gdb, err := database.Open(&sharedConfig.DatabaseConfig{
		Driver: "sqlite",
		Path:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func NewEnv(t *testing.T) *Env {
	t.Helper()

	gdb := NewDB(t)
	log := logger.Nop()
	e := &Env{
		DB:       gdb,
		TxMgr:    db.NewTransactionManager(gdb),
		Log:      log,
		Groups:   repository.NewSubscriptionGroupRepository(gdb),
		Subs:     repository.NewSubscriptionRepository(gdb),
		Cycles:   repository.NewCycleRepository(gdb),
		Invoices: repository.NewInvoiceRepository(gdb),
		Refunds:  repository.NewRefundRequestRepository(gdb),
		Credits:  repository.NewCreditRepository(gdb),
		Orders:   repository.NewOrderRepository(gdb),
		Capacity: repository.NewVendorCapacityRepository(gdb),
		Holidays: repository.NewVendorHolidayRepository(gdb),
		Settings: repository.NewPlatformSettingRepository(gdb),
		Gateway:  NewMockGateway(),
		Alerter:  &MockAlerter{},
	}

	e.Provider = settingUsecases.NewSettingProvider(e.Settings, DefaultPlatform(), log)
	e.Ledger = creditUsecases.NewLedger(e.Credits, log)
	e.Checker = fulfillmentUsecases.NewCapacityChecker(e.Capacity, e.Orders, log)
	e.Generator = fulfillmentUsecases.NewGenerateOrdersUseCase(
		e.Groups, e.Subs, e.Cycles, e.Orders, e.Holidays, e.Checker, e.Ledger, e.Provider, e.TxMgr, log)
	e.Finalizer = billingUsecases.NewFinalizeInvoiceUseCase(e.Invoices, e.Refunds, e.Generator, e.TxMgr, log)
	e.Finalizer.SetAlerter(e.Alerter)
	e.PaymentOrder = billingUsecases.NewCreatePaymentOrderUseCase(e.Invoices, e.Gateway, log)
	e.Renewals = billingUsecases.NewRunRenewalsUseCase(
		e.Groups, e.Subs, e.Cycles, e.Invoices, e.Ledger, e.Finalizer, e.TxMgr, 4, log)
	e.Renewals.SetPaymentOrderCreator(e.PaymentOrder)

	return e
}

// FreezeClock pins biztime.NowUTC to instant for the rest of the test.
func FreezeClock(t *testing.T, instant time.Time) {
	t.Helper()
	restore := biztime.SetClock(func() time.Time { return instant })
	t.Cleanup(restore)
}

// At returns the UTC instant of a business-local wall clock time.
func At(date string, hour, minute int) time.Time {
	d, err := biztime.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, biztime.Location()).UTC()
}

// Ctx is a background context for tests.
func Ctx() context.Context {
	return context.Background()
}

func (e *Env) Pause() *subscriptionUsecases.PauseSubscriptionUseCase {
	return subscriptionUsecases.NewPauseSubscriptionUseCase(
		e.Groups, e.Subs, e.Cycles, e.Orders, e.Checker, e.Ledger, e.Provider, e.TxMgr, e.Log)
}

func (e *Env) Resume() *subscriptionUsecases.ResumeSubscriptionUseCase {
	uc := subscriptionUsecases.NewResumeSubscriptionUseCase(
		e.Groups, e.Subs, e.Cycles, e.Orders, e.Invoices, e.Credits, e.Checker, e.Ledger,
		e.Renewals, e.Finalizer, e.Provider, e.TxMgr, e.Log)
	uc.SetPaymentOrderCreator(e.PaymentOrder)
	return uc
}

func (e *Env) Cancel() *subscriptionUsecases.CancelSubscriptionUseCase {
	return subscriptionUsecases.NewCancelSubscriptionUseCase(
		e.Groups, e.Subs, e.Orders, e.Invoices, e.Refunds, e.Checker, e.Ledger, e.Provider, e.TxMgr, e.Log)
}

func (e *Env) Checkout() *subscriptionUsecases.CheckoutUseCase {
	return subscriptionUsecases.NewCheckoutUseCase(
		e.Groups, e.Subs, e.Cycles, e.Invoices, e.Gateway, e.PaymentOrder, e.Provider, e.TxMgr, e.Log)
}

func (e *Env) GetGroup() *subscriptionUsecases.GetGroupUseCase {
	return subscriptionUsecases.NewGetGroupUseCase(
		e.Groups, e.Subs, e.Cycles, e.Invoices, e.Refunds, e.Credits, e.Ledger, e.Log)
}

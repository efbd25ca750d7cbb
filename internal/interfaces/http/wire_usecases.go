package http

import (
	"github.com/homechef-inc/mealsub/internal/application/billing/paymentgateway"
	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	creditUsecases "github.com/homechef-inc/mealsub/internal/application/credit/usecases"
	fulfillmentUsecases "github.com/homechef-inc/mealsub/internal/application/fulfillment/usecases"
	settingUsecases "github.com/homechef-inc/mealsub/internal/application/setting/usecases"
	subUsecases "github.com/homechef-inc/mealsub/internal/application/subscription/usecases"
	"github.com/homechef-inc/mealsub/internal/shared/config"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Settings
	settingProvider *settingUsecases.SettingProvider
	updateSettings  *settingUsecases.UpdateSettingsUseCase

	// Credits
	ledger        *creditUsecases.Ledger
	expireCredits *creditUsecases.ExpireCreditsUseCase

	// Fulfillment
	capacityChecker *fulfillmentUsecases.CapacityChecker
	generateOrders  *fulfillmentUsecases.GenerateOrdersUseCase
	skipOrder       *fulfillmentUsecases.SkipOrderUseCase
	vendorHoliday   *fulfillmentUsecases.ApplyVendorHolidayUseCase
	slotCapacity    *fulfillmentUsecases.SetSlotCapacityUseCase

	// Billing
	finalizer        *billingUsecases.FinalizeInvoiceUseCase
	paymentOrder     *billingUsecases.CreatePaymentOrderUseCase
	renewals         *billingUsecases.RunRenewalsUseCase
	retryFulfillment *billingUsecases.RetryFulfillmentUseCase
	webhook          *billingUsecases.HandlePaymentWebhookUseCase

	// Subscription lifecycle
	checkout *subUsecases.CheckoutUseCase
	getGroup *subUsecases.GetGroupUseCase
	pause    *subUsecases.PauseSubscriptionUseCase
	resume   *subUsecases.ResumeSubscriptionUseCase
	cancel   *subUsecases.CancelSubscriptionUseCase
}

// newUseCases wires the use cases bottom-up: settings and ledger first,
// then fulfillment, billing, and the lifecycle operations built on both.
func newUseCases(
	repos *repositories,
	txMgr *db.TransactionManager,
	gateway paymentgateway.PaymentGateway,
	verifier paymentgateway.WebhookVerifier,
	platform config.PlatformConfig,
	workers int,
	log logger.Interface,
) *allUseCases {
	u := &allUseCases{}

	u.settingProvider = settingUsecases.NewSettingProvider(repos.settingRepo, platform, log)
	u.updateSettings = settingUsecases.NewUpdateSettingsUseCase(repos.settingRepo, u.settingProvider, log)

	u.ledger = creditUsecases.NewLedger(repos.creditRepo, log)
	u.expireCredits = creditUsecases.NewExpireCreditsUseCase(repos.creditRepo, log)

	u.capacityChecker = fulfillmentUsecases.NewCapacityChecker(repos.capacityRepo, repos.orderRepo, log)
	u.generateOrders = fulfillmentUsecases.NewGenerateOrdersUseCase(
		repos.groupRepo, repos.subRepo, repos.cycleRepo, repos.orderRepo, repos.holidayRepo,
		u.capacityChecker, u.ledger, u.settingProvider, txMgr, log,
	)
	u.skipOrder = fulfillmentUsecases.NewSkipOrderUseCase(
		repos.subRepo, repos.groupRepo, repos.orderRepo, u.capacityChecker, u.ledger,
		u.settingProvider, txMgr, log,
	)
	u.vendorHoliday = fulfillmentUsecases.NewApplyVendorHolidayUseCase(
		repos.holidayRepo, repos.orderRepo, u.capacityChecker, u.ledger, u.settingProvider, txMgr, log,
	)
	u.slotCapacity = fulfillmentUsecases.NewSetSlotCapacityUseCase(repos.capacityRepo, log)

	u.finalizer = billingUsecases.NewFinalizeInvoiceUseCase(repos.invoiceRepo, repos.refundRepo, u.generateOrders, txMgr, log)
	u.paymentOrder = billingUsecases.NewCreatePaymentOrderUseCase(repos.invoiceRepo, gateway, log)
	u.renewals = billingUsecases.NewRunRenewalsUseCase(
		repos.groupRepo, repos.subRepo, repos.cycleRepo, repos.invoiceRepo, u.ledger, u.finalizer,
		txMgr, workers, log,
	)
	u.renewals.SetPaymentOrderCreator(u.paymentOrder)
	u.retryFulfillment = billingUsecases.NewRetryFulfillmentUseCase(repos.invoiceRepo, u.finalizer, workers, log)
	u.webhook = billingUsecases.NewHandlePaymentWebhookUseCase(verifier, u.finalizer, log)

	u.checkout = subUsecases.NewCheckoutUseCase(
		repos.groupRepo, repos.subRepo, repos.cycleRepo, repos.invoiceRepo, gateway, u.paymentOrder,
		u.settingProvider, txMgr, log,
	)
	u.getGroup = subUsecases.NewGetGroupUseCase(
		repos.groupRepo, repos.subRepo, repos.cycleRepo, repos.invoiceRepo, repos.refundRepo,
		repos.creditRepo, u.ledger, log,
	)
	u.pause = subUsecases.NewPauseSubscriptionUseCase(
		repos.groupRepo, repos.subRepo, repos.cycleRepo, repos.orderRepo, u.capacityChecker, u.ledger,
		u.settingProvider, txMgr, log,
	)
	u.resume = subUsecases.NewResumeSubscriptionUseCase(
		repos.groupRepo, repos.subRepo, repos.cycleRepo, repos.orderRepo, repos.invoiceRepo,
		repos.creditRepo, u.capacityChecker, u.ledger, u.renewals, u.finalizer, u.settingProvider,
		txMgr, log,
	)
	u.resume.SetPaymentOrderCreator(u.paymentOrder)
	u.cancel = subUsecases.NewCancelSubscriptionUseCase(
		repos.groupRepo, repos.subRepo, repos.orderRepo, repos.invoiceRepo, repos.refundRepo,
		u.capacityChecker, u.ledger, u.settingProvider, txMgr, log,
	)

	return u
}

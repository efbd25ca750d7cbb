package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/homechef-inc/mealsub/internal/application/billing/paymentgateway"
	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/billing"
	billingVO "github.com/homechef-inc/mealsub/internal/domain/billing/valueobjects"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type CheckoutLine struct {
	Slot          vo.Slot
	Weekdays      calendar.WeekdaySet
	UnitPrice     int64
	SkipAllowance int
}

type CheckoutCommand struct {
	PrincipalID   uint
	VendorID      uint
	Cadence       calendar.Period
	Lines         []CheckoutLine
	StartDate     time.Time
	PaymentMethod vo.PaymentMethod
	Trial         bool
	// IdempotencyKey makes a retried checkout continue the group the first
	// attempt created instead of opening a second one.
	IdempotencyKey string
}

const maxCheckoutKeyLen = 64

type CheckoutResult struct {
	GroupID         uint      `json:"group_id"`
	InvoiceID       string    `json:"invoice_id"`
	TotalAmount     int64     `json:"total_amount"`
	Currency        string    `json:"currency"`
	RenewalDate     time.Time `json:"renewal_date"`
	CycleStart      time.Time `json:"cycle_start"`
	CycleEnd        time.Time `json:"cycle_end"`
	Trial           bool      `json:"trial"`
	GatewayOrderRef string    `json:"gateway_order_ref,omitempty"`
	Replayed        bool      `json:"replayed"`
}

// CheckoutUseCase opens a subscription: group, lines, first cycle and its
// pending invoice, then the gateway order the consumer pays against.
type CheckoutUseCase struct {
	groupRepo    subscription.GroupRepository
	subRepo      subscription.SubscriptionRepository
	cycleRepo    subscription.CycleRepository
	invoiceRepo  billing.InvoiceRepository
	gateway      paymentgateway.PaymentGateway
	paymentOrder *billingUsecases.CreatePaymentOrderUseCase
	settings     setting.PlatformConfigProvider
	txMgr        *db.TransactionManager
	logger       logger.Interface
}

func NewCheckoutUseCase(
	groupRepo subscription.GroupRepository,
	subRepo subscription.SubscriptionRepository,
	cycleRepo subscription.CycleRepository,
	invoiceRepo billing.InvoiceRepository,
	gateway paymentgateway.PaymentGateway,
	paymentOrder *billingUsecases.CreatePaymentOrderUseCase,
	settings setting.PlatformConfigProvider,
	txMgr *db.TransactionManager,
	logger logger.Interface,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		groupRepo:    groupRepo,
		subRepo:      subRepo,
		cycleRepo:    cycleRepo,
		invoiceRepo:  invoiceRepo,
		gateway:      gateway,
		paymentOrder: paymentOrder,
		settings:     settings,
		txMgr:        txMgr,
		logger:       logger,
	}
}

func (uc *CheckoutUseCase) validate(cmd CheckoutCommand) error {
	if cmd.PrincipalID == 0 {
		return apperrors.NewUnauthorizedError("principal is required")
	}
	if cmd.VendorID == 0 {
		return apperrors.NewValidationError("vendor_id is required")
	}
	if !cmd.Cadence.IsValid() {
		return apperrors.NewValidationError("invalid renewal cadence", string(cmd.Cadence))
	}
	if !cmd.PaymentMethod.IsValid() {
		return apperrors.NewValidationError("invalid payment method", string(cmd.PaymentMethod))
	}
	if len(cmd.IdempotencyKey) > maxCheckoutKeyLen {
		return apperrors.NewValidationError("idempotency key is too long")
	}
	if len(cmd.Lines) == 0 {
		return apperrors.NewValidationError("at least one meal line is required")
	}
	seen := make(map[vo.Slot]struct{}, len(cmd.Lines))
	for _, l := range cmd.Lines {
		if _, dup := seen[l.Slot]; dup {
			return apperrors.NewValidationError("duplicate meal slot", l.Slot.String())
		}
		seen[l.Slot] = struct{}{}
	}
	return nil
}

func (uc *CheckoutUseCase) Execute(ctx context.Context, cmd CheckoutCommand) (*CheckoutResult, error) {
	if err := uc.validate(cmd); err != nil {
		return nil, err
	}

	if cmd.IdempotencyKey != "" {
		existing, err := uc.groupRepo.GetByCheckoutKey(ctx, cmd.PrincipalID, cmd.IdempotencyKey)
		if err == nil {
			return uc.replay(ctx, existing)
		}
		if !errors.Is(err, subscription.ErrGroupNotFound) {
			return nil, err
		}
	}

	cfg, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireNotice(cfg, cmd.StartDate, biztime.NowUTC()); err != nil {
		return nil, err
	}
	if cmd.Trial && cfg.TrialDays <= 0 {
		return nil, apperrors.NewValidationError("trials are not offered")
	}

	var (
		group   *subscription.Group
		lines   []*subscription.Subscription
		cycle   *subscription.Cycle
		invoice *billing.Invoice
	)
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		group, err = subscription.NewGroup(cmd.PrincipalID, cmd.VendorID, cmd.Cadence, cmd.PaymentMethod, shared.DefaultCurrency)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		group.SetCheckoutKey(cmd.IdempotencyKey)
		if err := uc.groupRepo.Create(txCtx, group); err != nil {
			if errors.Is(err, subscription.ErrCheckoutKeyUsed) {
				return apperrors.NewConflictError("a checkout with this idempotency key is in progress")
			}
			return err
		}

		for _, l := range cmd.Lines {
			line, err := subscription.NewSubscription(group.ID(), l.Slot, l.Weekdays,
				shared.NewMoney(l.UnitPrice, group.Currency()), l.SkipAllowance)
			if err != nil {
				return apperrors.NewValidationError(err.Error())
			}
			if err := uc.subRepo.Create(txCtx, line); err != nil {
				return err
			}
			lines = append(lines, line)
		}

		kind, r := subscription.CycleKindRegular, calendar.PartialCycle(cmd.StartDate, cmd.Cadence)
		if cmd.Trial {
			kind = subscription.CycleKindTrial
			r = calendar.NewRange(cmd.StartDate, calendar.AddDays(cmd.StartDate, cfg.TrialDays-1))
		}
		cycle, err = subscription.NewCycle(group.ID(), kind, r, cmd.Cadence)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := uc.cycleRepo.Create(txCtx, cycle); err != nil {
			return err
		}

		subtotal := subscription.EstimateLines(lines, cycle.Range(), group.Currency())
		if !subtotal.IsPositive() {
			return apperrors.NewValidationError("no meals fall inside the first cycle")
		}
		invoice, err = billing.NewInvoice(group.ID(), cycle.ID(), subtotal, shared.Zero(group.Currency()), billingUsecases.NewReceipt())
		if err != nil {
			return err
		}
		return uc.invoiceRepo.Create(txCtx, invoice)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("checkout created",
		"group_id", group.ID(),
		"invoice_id", invoice.ID(),
		"total", invoice.Total().Minor(),
		"trial", cmd.Trial,
	)

	return uc.complete(ctx, group, lines, cycle, invoice)
}

// complete runs the gateway steps after the checkout is stored. Both are
// skipped when already done, so a replay only repeats what failed.
func (uc *CheckoutUseCase) complete(
	ctx context.Context,
	group *subscription.Group,
	lines []*subscription.Subscription,
	cycle *subscription.Cycle,
	invoice *billing.Invoice,
) (*CheckoutResult, error) {
	result := &CheckoutResult{
		GroupID:     group.ID(),
		InvoiceID:   invoice.SID(),
		TotalAmount: invoice.Total().Minor(),
		Currency:    invoice.Total().Currency(),
		RenewalDate: cycle.RenewalDate(),
		CycleStart:  cycle.Start(),
		CycleEnd:    cycle.Range().LastDay(),
		Trial:       cycle.IsTrial(),
	}

	if group.PaymentMethod().IsRecurring() && group.MandateRef() == nil {
		if err := uc.registerMandate(ctx, group, lines); err != nil {
			return nil, err
		}
	}

	if invoice.Status() == billingVO.InvoiceStatusPendingPayment {
		if err := uc.paymentOrder.Execute(ctx, invoice); err != nil {
			uc.logger.Warnw("checkout stored without gateway order, retry with the same key",
				"group_id", group.ID(),
				"invoice_id", invoice.ID(),
			)
			return nil, err
		}
	}
	if ref := invoice.GatewayOrderRef(); ref != nil {
		result.GatewayOrderRef = *ref
	}
	return result, nil
}

// replay answers a checkout retried with a key that already created a
// group, finishing any gateway step the first attempt did not.
func (uc *CheckoutUseCase) replay(ctx context.Context, group *subscription.Group) (*CheckoutResult, error) {
	invoices, err := uc.invoiceRepo.ListByGroup(ctx, group.ID())
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, fmt.Errorf("group %d has no checkout invoice", group.ID())
	}
	first := invoices[0]
	for _, inv := range invoices[1:] {
		if inv.ID() < first.ID() {
			first = inv
		}
	}

	cycle, err := uc.cycleRepo.GetByID(ctx, first.CycleID())
	if err != nil {
		return nil, err
	}
	lines, err := uc.subRepo.ListByGroup(ctx, group.ID())
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("checkout replayed",
		"group_id", group.ID(),
		"invoice_id", first.ID(),
	)
	result, err := uc.complete(ctx, group, lines, cycle, first)
	if err != nil {
		return nil, err
	}
	result.Replayed = true
	return result, nil
}

// registerMandate creates the gateway customer and the recurring debit
// authorization, capped at one full cycle of meals.
func (uc *CheckoutUseCase) registerMandate(ctx context.Context, group *subscription.Group, lines []*subscription.Subscription) error {
	customer, err := uc.gateway.CreateCustomer(ctx, paymentgateway.CreateCustomerRequest{
		ConsumerID:     group.ConsumerID(),
		IdempotencyKey: fmt.Sprintf("group-%d-customer", group.ID()),
	})
	if err != nil {
		return apperrors.NewExternalDependencyError("payment gateway is unavailable", err)
	}

	fullCycle := calendar.CycleFor(biztime.Today(), group.Cadence())
	mandate, err := uc.gateway.StoreMandate(ctx, paymentgateway.StoreMandateRequest{
		CustomerRef:    customer.CustomerRef,
		Method:         group.PaymentMethod().String(),
		MaxAmount:      subscription.EstimateLines(lines, fullCycle, group.Currency()).Minor(),
		Currency:       group.Currency(),
		IdempotencyKey: fmt.Sprintf("group-%d-mandate", group.ID()),
	})
	if err != nil {
		return apperrors.NewExternalDependencyError("payment gateway is unavailable", err)
	}

	group.SetGatewayRefs(customer.CustomerRef, mandate.MandateRef)
	if err := saveGroup(ctx, uc.groupRepo, group); err != nil {
		return err
	}

	uc.logger.Infow("payment mandate stored",
		"group_id", group.ID(),
		"customer_ref", customer.CustomerRef,
	)
	return nil
}

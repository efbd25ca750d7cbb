package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	creditUsecases "github.com/homechef-inc/mealsub/internal/application/credit/usecases"
	fulfillmentUsecases "github.com/homechef-inc/mealsub/internal/application/fulfillment/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/billing"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/order"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// ResumeScenario places a resume date relative to the cycle that was in
// effect when the group was paused.
type ResumeScenario string

const (
	ScenarioSameCycle      ResumeScenario = "same_cycle"
	ScenarioNextCycleStart ResumeScenario = "next_cycle_start"
	ScenarioMidNextCycle   ResumeScenario = "mid_next_cycle"
	ScenarioFutureCycle    ResumeScenario = "future_cycle"
)

// ClassifyResume picks the scenario for resuming on date a group paused
// during pausedCycle.
func ClassifyResume(pausedCycle *subscription.Cycle, date time.Time, cadence calendar.Period) ResumeScenario {
	renewal := pausedCycle.RenewalDate()
	switch {
	case !date.After(pausedCycle.Range().LastDay()):
		return ScenarioSameCycle
	case date.Equal(renewal):
		return ScenarioNextCycleStart
	case calendar.CycleFor(renewal, cadence).Contains(date):
		return ScenarioMidNextCycle
	default:
		return ScenarioFutureCycle
	}
}

type ResumeCommand struct {
	PrincipalID uint
	GroupID     uint
	ResumeDate  time.Time
}

type ResumePreview struct {
	GroupID    uint           `json:"group_id"`
	ResumeDate time.Time      `json:"resume_date"`
	Scenario   ResumeScenario `json:"scenario,omitempty"`
	// Orders are the pause-cancelled orders that come back.
	Orders         []AffectedOrder `json:"orders"`
	NewCycle       bool            `json:"new_cycle"`
	CycleStart     *time.Time      `json:"cycle_start,omitempty"`
	CycleEnd       *time.Time      `json:"cycle_end,omitempty"`
	Estimate       int64           `json:"estimate"`
	CreditsToApply int             `json:"credits_to_apply"`
	CreditsApplied int64           `json:"credits_applied"`
	Payable        int64           `json:"payable"`
	Currency       string          `json:"currency"`
	AlreadyActive  bool            `json:"already_active"`
}

type ResumeResult struct {
	ResumePreview
	Reinstated      int    `json:"reinstated"`
	InvoiceID       string `json:"invoice_id,omitempty"`
	InvoiceStatus   string `json:"invoice_status,omitempty"`
	GatewayOrderRef string `json:"gateway_order_ref,omitempty"`
	OrdersCreated   int    `json:"orders_created"`
	RenewalNote     string `json:"renewal_note,omitempty"`
}

// ResumeSubscriptionUseCase reactivates a paused group. Pause credits of
// reinstated orders are consumed; a resume past the paused cycle bills a new
// cycle with the remaining credits deducted.
type ResumeSubscriptionUseCase struct {
	groupRepo    subscription.GroupRepository
	subRepo      subscription.SubscriptionRepository
	cycleRepo    subscription.CycleRepository
	orderRepo    order.Repository
	invoiceRepo  billing.InvoiceRepository
	creditRepo   credit.Repository
	capacity     *fulfillmentUsecases.CapacityChecker
	ledger       *creditUsecases.Ledger
	renewals     *billingUsecases.RunRenewalsUseCase
	finalizer    *billingUsecases.FinalizeInvoiceUseCase
	paymentOrder *billingUsecases.CreatePaymentOrderUseCase
	settings     setting.PlatformConfigProvider
	txMgr        *db.TransactionManager
	logger       logger.Interface
}

func NewResumeSubscriptionUseCase(
	groupRepo subscription.GroupRepository,
	subRepo subscription.SubscriptionRepository,
	cycleRepo subscription.CycleRepository,
	orderRepo order.Repository,
	invoiceRepo billing.InvoiceRepository,
	creditRepo credit.Repository,
	capacity *fulfillmentUsecases.CapacityChecker,
	ledger *creditUsecases.Ledger,
	renewals *billingUsecases.RunRenewalsUseCase,
	finalizer *billingUsecases.FinalizeInvoiceUseCase,
	settings setting.PlatformConfigProvider,
	txMgr *db.TransactionManager,
	logger logger.Interface,
) *ResumeSubscriptionUseCase {
	return &ResumeSubscriptionUseCase{
		groupRepo:   groupRepo,
		subRepo:     subRepo,
		cycleRepo:   cycleRepo,
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		creditRepo:  creditRepo,
		capacity:    capacity,
		ledger:      ledger,
		renewals:    renewals,
		finalizer:   finalizer,
		settings:    settings,
		txMgr:       txMgr,
		logger:      logger,
	}
}

// SetPaymentOrderCreator enables gateway orders for resume invoices.
func (uc *ResumeSubscriptionUseCase) SetPaymentOrderCreator(creator *billingUsecases.CreatePaymentOrderUseCase) {
	uc.paymentOrder = creator
}

type reinstatement struct {
	order  *order.Order
	credit *credit.Credit
}

type resumePlan struct {
	group    *subscription.Group
	lines    []*subscription.Subscription
	restore  []reinstatement
	cycle    *calendar.Range
	spend    []*credit.Credit
	estimate credit.Plan
	preview  *ResumePreview
}

func (uc *ResumeSubscriptionUseCase) plan(ctx context.Context, cmd ResumeCommand, cfg setting.PlatformConfig, now time.Time) (*resumePlan, error) {
	group, err := loadOwnedGroup(ctx, uc.groupRepo, cmd.GroupID, cmd.PrincipalID)
	if err != nil {
		return nil, err
	}

	preview := &ResumePreview{
		GroupID:    group.ID(),
		ResumeDate: cmd.ResumeDate,
		Currency:   group.Currency(),
		Orders:     []AffectedOrder{},
	}

	switch {
	case group.IsCancelled():
		return nil, apperrors.NewValidationError("subscription group is cancelled")
	case group.IsActive():
		preview.AlreadyActive = true
		return &resumePlan{group: group, preview: preview}, nil
	}

	if err := requireNotice(cfg, cmd.ResumeDate, now); err != nil {
		return nil, err
	}

	pausedCycle, err := uc.pausedCycle(ctx, group)
	if err != nil {
		return nil, err
	}
	preview.Scenario = ClassifyResume(pausedCycle, cmd.ResumeDate, group.Cadence())

	p := &resumePlan{group: group, preview: preview}

	restore, err := uc.reinstatable(ctx, group.ID(), cmd.ResumeDate, now)
	if err != nil {
		return nil, err
	}
	p.restore = restore
	reserved := make(map[uint]struct{}, len(restore))
	for _, r := range restore {
		reserved[r.credit.ID()] = struct{}{}
		preview.Orders = append(preview.Orders, AffectedOrder{
			OrderID:     r.order.ID(),
			ServiceDate: r.order.ServiceDate(),
			Slot:        r.order.Slot().String(),
			Amount:      r.order.UnitPrice().Minor(),
		})
	}

	if preview.Scenario == ScenarioSameCycle || preview.Scenario == ScenarioNextCycleStart {
		return p, nil
	}

	_, err = uc.cycleRepo.GetContaining(ctx, group.ID(), cmd.ResumeDate)
	if err == nil {
		// Billed before the pause; reinstatement restores it.
		return p, nil
	}
	if !errors.Is(err, subscription.ErrCycleNotFound) {
		return nil, err
	}

	r := calendar.PartialCycle(cmd.ResumeDate, group.Cadence())
	p.cycle = &r
	start, end := r.Start, r.LastDay()
	preview.NewCycle = true
	preview.CycleStart = &start
	preview.CycleEnd = &end

	p.lines, err = uc.subRepo.ListByGroup(ctx, group.ID())
	if err != nil {
		return nil, err
	}
	estimate := subscription.EstimateLines(p.lines, r, group.Currency())

	available, err := uc.ledger.ListAvailableByGroup(ctx, group.ID())
	if err != nil {
		return nil, err
	}
	for _, c := range available {
		if _, ok := reserved[c.ID()]; !ok {
			p.spend = append(p.spend, c)
		}
	}
	p.estimate = credit.PlanConsumption(p.spend, estimate)

	preview.Estimate = estimate.Minor()
	preview.CreditsToApply = p.estimate.Count()
	preview.CreditsApplied = p.estimate.Applied.Minor()
	preview.Payable = estimate.Sub(p.estimate.Applied).ClampZero().Minor()
	return p, nil
}

func (uc *ResumeSubscriptionUseCase) pausedCycle(ctx context.Context, group *subscription.Group) (*subscription.Cycle, error) {
	if id := group.PausedCycleID(); id != nil {
		return uc.cycleRepo.GetByID(ctx, *id)
	}
	return uc.cycleRepo.GetLatest(ctx, group.ID(), subscription.CycleKindRegular)
}

// reinstatable lists pause-cancelled orders on or after from whose pause
// credit is still unspent.
func (uc *ResumeSubscriptionUseCase) reinstatable(ctx context.Context, groupID uint, from, now time.Time) ([]reinstatement, error) {
	cancelled, err := uc.orderRepo.ListByGroupInRange(ctx, groupID, from, farFuture, order.StatusCancelled)
	if err != nil {
		return nil, err
	}

	var out []reinstatement
	for _, o := range cancelled {
		src := o.CancelSource()
		if src == nil || *src != order.CancelSourcePause {
			continue
		}
		c, err := uc.creditRepo.GetBySourceOrder(ctx, o.ID())
		if err != nil {
			if errors.Is(err, credit.ErrCreditNotFound) {
				continue
			}
			return nil, err
		}
		if !c.IsSpendableAt(now) {
			continue
		}
		out = append(out, reinstatement{order: o, credit: c})
	}
	return out, nil
}

func (uc *ResumeSubscriptionUseCase) Preview(ctx context.Context, cmd ResumeCommand) (*ResumePreview, error) {
	cfg, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	p, err := uc.plan(ctx, cmd, cfg, biztime.NowUTC())
	if err != nil {
		return nil, err
	}
	return p.preview, nil
}

func (uc *ResumeSubscriptionUseCase) Confirm(ctx context.Context, cmd ResumeCommand) (*ResumeResult, error) {
	cfg, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	var (
		result  *ResumeResult
		invoice *billing.Invoice
	)
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		now := biztime.NowUTC()
		p, err := uc.plan(txCtx, cmd, cfg, now)
		if err != nil {
			return err
		}
		result = &ResumeResult{ResumePreview: *p.preview}
		if p.preview.AlreadyActive {
			return nil
		}

		ref := fmt.Sprintf("resume:%d:%s", p.group.ID(), biztime.FormatDate(cmd.ResumeDate))
		for _, r := range p.restore {
			ok, err := uc.reinstate(txCtx, r, ref)
			if err != nil {
				return err
			}
			if ok {
				result.Reinstated++
			}
		}

		if p.cycle != nil {
			invoice, err = uc.billCycle(txCtx, p, now)
			if err != nil {
				return err
			}
		}

		if err := p.group.Resume(); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := saveGroup(txCtx, uc.groupRepo, p.group); err != nil {
			return err
		}
		return uc.subRepo.MirrorGroupStatus(txCtx, p.group)
	})
	if err != nil {
		return nil, err
	}
	if result.AlreadyActive {
		return result, nil
	}

	switch {
	case result.Scenario == ScenarioNextCycleStart:
		uc.renewAfterResume(ctx, cmd, result)
	case invoice != nil:
		uc.settleInvoice(ctx, invoice, result)
	}

	uc.logger.Infow("subscription group resumed",
		"group_id", cmd.GroupID,
		"resume_date", biztime.FormatDate(cmd.ResumeDate),
		"scenario", result.Scenario,
		"reinstated", result.Reinstated,
		"invoice_id", result.InvoiceID,
	)
	return result, nil
}

// reinstate brings one order back if its slot still has room. The order
// stays cancelled, and its credit unspent, when the slot has filled up.
func (uc *ResumeSubscriptionUseCase) reinstate(ctx context.Context, r reinstatement, ref string) (bool, error) {
	if err := r.order.Reinstate(); err != nil {
		return false, err
	}
	ok, err := uc.capacity.Reserve(ctx, r.order)
	if err != nil {
		return false, err
	}
	if !ok {
		uc.logger.Warnw("order not reinstated, slot is full",
			"order_id", r.order.ID(),
			"service_date", biztime.FormatDate(r.order.ServiceDate()),
		)
		return false, nil
	}
	if err := uc.orderRepo.Update(ctx, r.order); err != nil {
		return false, err
	}
	if err := uc.ledger.ConsumeAll(ctx, []*credit.Credit{r.credit}, ref); err != nil {
		return false, err
	}
	return true, nil
}

func (uc *ResumeSubscriptionUseCase) billCycle(ctx context.Context, p *resumePlan, now time.Time) (*billing.Invoice, error) {
	cycle, err := subscription.NewCycle(p.group.ID(), subscription.CycleKindRegular, *p.cycle, p.group.Cadence())
	if err != nil {
		return nil, err
	}
	if err := uc.cycleRepo.Create(ctx, cycle); err != nil {
		if errors.Is(err, subscription.ErrCycleExists) {
			return nil, apperrors.NewConflictError("a cycle already starts on the resume date")
		}
		return nil, err
	}

	subtotal := subscription.EstimateLines(p.lines, cycle.Range(), p.group.Currency())
	receipt := billingUsecases.NewReceipt()
	consumed, err := uc.ledger.Consume(ctx, p.spend, subtotal, receipt)
	if err != nil {
		return nil, err
	}

	inv, err := billing.NewInvoice(p.group.ID(), cycle.ID(), subtotal, consumed.Applied, receipt)
	if err != nil {
		return nil, err
	}
	if !inv.Total().IsPositive() {
		if err := inv.SettleWithCredits(now); err != nil {
			return nil, err
		}
		inv.MarkFulfillmentPending(nil, now)
	}
	if err := uc.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (uc *ResumeSubscriptionUseCase) renewAfterResume(ctx context.Context, cmd ResumeCommand, result *ResumeResult) {
	group, err := uc.groupRepo.GetByID(ctx, cmd.GroupID)
	if err != nil {
		uc.logger.Errorw("failed to reload group after resume", "group_id", cmd.GroupID, "error", err)
		return
	}
	renewed, skip, err := uc.renewals.RenewGroup(ctx, group.ID(), cmd.ResumeDate, group.Cadence())
	if errors.Is(err, billingUsecases.ErrPreviousCycleUnpaid) {
		uc.logger.Warnw("renewal after resume blocked", "group_id", cmd.GroupID, "error", err)
		result.RenewalNote = err.Error()
		return
	}
	if err != nil {
		// The next renewal run picks the group up again.
		uc.logger.Errorw("renewal after resume failed", "group_id", cmd.GroupID, "error", err)
		result.RenewalNote = "renewal deferred to the next batch run"
		return
	}
	if skip != "" {
		result.RenewalNote = skip
		return
	}
	result.InvoiceID = renewed.InvoiceSID
	if renewed.SettledByCredits {
		result.InvoiceStatus = "paid"
	} else {
		result.InvoiceStatus = "pending_payment"
	}
	result.Payable = renewed.Total
	result.CreditsApplied = renewed.CreditsApplied
	result.Estimate = renewed.Subtotal

	if inv, err := uc.invoiceRepo.GetByID(ctx, renewed.InvoiceID); err == nil && inv.GatewayOrderRef() != nil {
		result.GatewayOrderRef = *inv.GatewayOrderRef()
	}
}

func (uc *ResumeSubscriptionUseCase) settleInvoice(ctx context.Context, inv *billing.Invoice, result *ResumeResult) {
	result.InvoiceID = inv.SID()
	result.InvoiceStatus = inv.Status().String()

	if inv.IsPaid() {
		created, err := uc.finalizer.Fulfill(ctx, inv)
		if err != nil {
			uc.logger.Warnw("resume cycle settled by credits but not fulfilled",
				"invoice_id", inv.ID(),
				"error", err,
			)
		}
		result.OrdersCreated = created
		return
	}

	if uc.paymentOrder == nil {
		return
	}
	if err := uc.paymentOrder.Execute(ctx, inv); err != nil {
		uc.logger.Warnw("resume invoice created without gateway order",
			"invoice_id", inv.ID(),
			"error", err,
		)
		return
	}
	if inv.GatewayOrderRef() != nil {
		result.GatewayOrderRef = *inv.GatewayOrderRef()
	}
}

package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	creditUsecases "github.com/homechef-inc/mealsub/internal/application/credit/usecases"
	fulfillmentUsecases "github.com/homechef-inc/mealsub/internal/application/fulfillment/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/billing"
	billingVO "github.com/homechef-inc/mealsub/internal/domain/billing/valueobjects"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/order"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type CancelCommand struct {
	PrincipalID      uint
	GroupID          uint
	CancelDate       time.Time
	Reason           string
	RefundPreference setting.Settlement
	Confirm          bool
}

type CancelPreview struct {
	GroupID             uint                 `json:"group_id"`
	CancelDate          time.Time            `json:"cancel_date"`
	Orders              []AffectedOrder      `json:"orders"`
	RemainingMealsValue int64                `json:"remaining_meals_value"`
	CreditsValue        int64                `json:"credits_value"`
	TotalRefundCredit   int64                `json:"total_refund_credit"`
	Currency            string               `json:"currency"`
	Offered             []setting.Settlement `json:"offered"`
	Settlement          setting.Settlement   `json:"settlement"`
	// UnpaidInvoices are voided so a later capture is refunded.
	UnpaidInvoices   []string `json:"unpaid_invoices"`
	AlreadyCancelled bool     `json:"already_cancelled"`
}

type CancelResult struct {
	CancelPreview
	CreditID        *uint  `json:"credit_id,omitempty"`
	RefundRequestID string `json:"refund_request_id,omitempty"`
}

// CancelSubscriptionUseCase ends a group for good. Unserved meals and
// unspent credits are settled as one refund request or one store credit;
// unpaid invoices are voided.
type CancelSubscriptionUseCase struct {
	groupRepo   subscription.GroupRepository
	subRepo     subscription.SubscriptionRepository
	orderRepo   order.Repository
	invoiceRepo billing.InvoiceRepository
	refundRepo  billing.RefundRequestRepository
	capacity    *fulfillmentUsecases.CapacityChecker
	ledger      *creditUsecases.Ledger
	settings    setting.PlatformConfigProvider
	txMgr       *db.TransactionManager
	logger      logger.Interface
}

func NewCancelSubscriptionUseCase(
	groupRepo subscription.GroupRepository,
	subRepo subscription.SubscriptionRepository,
	orderRepo order.Repository,
	invoiceRepo billing.InvoiceRepository,
	refundRepo billing.RefundRequestRepository,
	capacity *fulfillmentUsecases.CapacityChecker,
	ledger *creditUsecases.Ledger,
	settings setting.PlatformConfigProvider,
	txMgr *db.TransactionManager,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		groupRepo:   groupRepo,
		subRepo:     subRepo,
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		refundRepo:  refundRepo,
		capacity:    capacity,
		ledger:      ledger,
		settings:    settings,
		txMgr:       txMgr,
		logger:      logger,
	}
}

type cancelPlan struct {
	group   *subscription.Group
	orders  []*order.Order
	credits []*credit.Credit
	unpaid  []*billing.Invoice
	total   shared.Money
	preview *CancelPreview
}

var unpaidStatuses = []billingVO.InvoiceStatus{billingVO.InvoiceStatusPendingPayment, billingVO.InvoiceStatusFailed}

func (uc *CancelSubscriptionUseCase) plan(ctx context.Context, cmd CancelCommand, cfg setting.PlatformConfig, now time.Time) (*cancelPlan, error) {
	group, err := loadOwnedGroup(ctx, uc.groupRepo, cmd.GroupID, cmd.PrincipalID)
	if err != nil {
		return nil, err
	}

	preview := &CancelPreview{
		GroupID:        group.ID(),
		CancelDate:     cmd.CancelDate,
		Currency:       group.Currency(),
		Orders:         []AffectedOrder{},
		Offered:        cfg.RefundPolicy.Offered(),
		UnpaidInvoices: []string{},
	}
	if group.IsCancelled() {
		preview.AlreadyCancelled = true
		return &cancelPlan{group: group, preview: preview}, nil
	}

	if err := requireNotice(cfg, cmd.CancelDate, now); err != nil {
		return nil, err
	}
	settlement, err := cfg.RefundPolicy.Resolve(cmd.RefundPreference)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	preview.Settlement = settlement

	orders, err := uc.orderRepo.ListByGroupInRange(ctx, group.ID(), cmd.CancelDate, farFuture, order.StatusScheduled)
	if err != nil {
		return nil, err
	}
	remaining := shared.Zero(group.Currency())
	for _, o := range orders {
		preview.Orders = append(preview.Orders, AffectedOrder{
			OrderID:     o.ID(),
			ServiceDate: o.ServiceDate(),
			Slot:        o.Slot().String(),
			Amount:      o.UnitPrice().Minor(),
		})
		remaining = remaining.Add(o.UnitPrice())
	}

	credits, err := uc.ledger.ListAvailableByGroup(ctx, group.ID())
	if err != nil {
		return nil, err
	}
	creditsValue := credit.Sum(credits, group.Currency())

	invoices, err := uc.invoiceRepo.ListByGroup(ctx, group.ID())
	if err != nil {
		return nil, err
	}
	var unpaid []*billing.Invoice
	for _, inv := range invoices {
		if inv.Status() == billingVO.InvoiceStatusPendingPayment || inv.Status() == billingVO.InvoiceStatusFailed {
			unpaid = append(unpaid, inv)
			preview.UnpaidInvoices = append(preview.UnpaidInvoices, inv.SID())
		}
	}

	total := remaining.Add(creditsValue).ClampZero()
	preview.RemainingMealsValue = remaining.Minor()
	preview.CreditsValue = creditsValue.Minor()
	preview.TotalRefundCredit = total.Minor()

	return &cancelPlan{
		group:   group,
		orders:  orders,
		credits: credits,
		unpaid:  unpaid,
		total:   total,
		preview: preview,
	}, nil
}

// Preview fails on an already-cancelled group; Confirm treats it as done.
func (uc *CancelSubscriptionUseCase) Preview(ctx context.Context, cmd CancelCommand) (*CancelPreview, error) {
	cfg, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	p, err := uc.plan(ctx, cmd, cfg, biztime.NowUTC())
	if err != nil {
		return nil, err
	}
	if p.preview.AlreadyCancelled {
		return nil, apperrors.NewValidationError("subscription group is cancelled")
	}
	return p.preview, nil
}

func (uc *CancelSubscriptionUseCase) Confirm(ctx context.Context, cmd CancelCommand) (*CancelResult, error) {
	if !cmd.Confirm {
		return nil, apperrors.NewValidationError("cancellation must be explicitly confirmed")
	}
	if strings.TrimSpace(cmd.Reason) == "" {
		return nil, apperrors.NewValidationError("cancellation reason is required")
	}

	cfg, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	var result *CancelResult
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		now := biztime.NowUTC()
		p, err := uc.plan(txCtx, cmd, cfg, now)
		if err != nil {
			return err
		}
		result = &CancelResult{CancelPreview: *p.preview}
		if p.preview.AlreadyCancelled {
			return nil
		}

		for _, o := range p.orders {
			if err := o.Cancel(order.CancelSourceCancellation); err != nil {
				return fmt.Errorf("order %d: %w", o.ID(), err)
			}
			if err := uc.orderRepo.Update(txCtx, o); err != nil {
				return err
			}
			if err := uc.capacity.Release(txCtx, o.ID()); err != nil {
				return err
			}
		}

		if err := uc.voidUnpaid(txCtx, p.unpaid, now); err != nil {
			return err
		}

		ref := fmt.Sprintf("cancel:%d", p.group.ID())
		if err := uc.ledger.ConsumeAll(txCtx, p.credits, ref); err != nil {
			return err
		}

		if err := p.group.Cancel(cmd.CancelDate, cmd.Reason); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := saveGroup(txCtx, uc.groupRepo, p.group); err != nil {
			return err
		}
		if err := uc.subRepo.MirrorGroupStatus(txCtx, p.group); err != nil {
			return err
		}

		if !p.total.IsPositive() {
			return nil
		}
		switch p.preview.Settlement {
		case setting.SettlementCredit:
			c, err := uc.ledger.Issue(txCtx, creditUsecases.IssueCommand{
				GroupID:   p.group.ID(),
				Amount:    p.total,
				Reason:    credit.ReasonCancellation,
				ExpiresAt: cfg.CreditExpiryFrom(now),
			})
			if err != nil {
				return err
			}
			id := c.ID()
			result.CreditID = &id
		default:
			req, err := billing.NewRefundRequest(p.group.ID(), p.total, cmd.Reason)
			if err != nil {
				return err
			}
			if err := uc.refundRepo.Create(txCtx, req); err != nil {
				return err
			}
			result.RefundRequestID = req.SID()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyCancelled {
		uc.logger.Infow("cancellation already confirmed", "group_id", cmd.GroupID)
		return result, nil
	}

	uc.logger.Infow("subscription group cancelled",
		"group_id", cmd.GroupID,
		"cancel_date", biztime.FormatDate(cmd.CancelDate),
		"orders_cancelled", len(result.Orders),
		"settlement", result.Settlement,
		"total", result.TotalRefundCredit,
	)
	return result, nil
}

// voidUnpaid closes invoices that were never paid. One that a capture paid
// in the meantime stays paid; the finalizer refunds it once it sees the
// cancelled group.
func (uc *CancelSubscriptionUseCase) voidUnpaid(ctx context.Context, invoices []*billing.Invoice, now time.Time) error {
	for _, inv := range invoices {
		if err := inv.VoidUnpaid(billing.VoidReasonGroupCancelled, now); err != nil {
			return err
		}
		err := uc.invoiceRepo.CompareAndSetStatus(ctx, inv, unpaidStatuses)
		if errors.Is(err, billing.ErrStatusChanged) {
			uc.logger.Warnw("invoice paid during cancellation, left for the finalizer",
				"invoice_id", inv.ID(),
				"group_id", inv.GroupID(),
			)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

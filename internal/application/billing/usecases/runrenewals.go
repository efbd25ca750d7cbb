package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	creditUsecases "github.com/homechef-inc/mealsub/internal/application/credit/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/billing"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/goroutine"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// ErrPreviousCycleUnpaid blocks a renewal until the group's latest invoice
// is paid. It is reported as a failure so operators chase the payment.
var ErrPreviousCycleUnpaid = errors.New("previous cycle unpaid")

type RunRenewalsCommand struct {
	Period calendar.Period
	Date   time.Time
}

type RenewedInvoice struct {
	GroupID          uint
	CycleID          uint
	InvoiceID        uint
	InvoiceSID       string
	Subtotal         int64
	CreditsApplied   int64
	Total            int64
	SettledByCredits bool
	CycleStart       time.Time
	CycleEnd         time.Time
}

type SkippedRenewal struct {
	GroupID uint
	Reason  string
}

type RenewalError struct {
	GroupID uint
	Err     error
}

type RunRenewalsResult struct {
	Count    int
	Horizon  time.Time
	Invoices []RenewedInvoice
	Skipped  []SkippedRenewal
	Errors   []RenewalError
}

// RunRenewalsUseCase bills the next cycle of every group due on a date.
// Each group renews in its own transaction; a cancelled context stops
// scheduling further groups and keeps the ones already done.
type RunRenewalsUseCase struct {
	groupRepo    subscription.GroupRepository
	subRepo      subscription.SubscriptionRepository
	cycleRepo    subscription.CycleRepository
	invoiceRepo  billing.InvoiceRepository
	ledger       *creditUsecases.Ledger
	finalizer    *FinalizeInvoiceUseCase
	paymentOrder *CreatePaymentOrderUseCase // Optional
	txMgr        *db.TransactionManager
	workers      int
	logger       logger.Interface
}

func NewRunRenewalsUseCase(
	groupRepo subscription.GroupRepository,
	subRepo subscription.SubscriptionRepository,
	cycleRepo subscription.CycleRepository,
	invoiceRepo billing.InvoiceRepository,
	ledger *creditUsecases.Ledger,
	finalizer *FinalizeInvoiceUseCase,
	txMgr *db.TransactionManager,
	workers int,
	logger logger.Interface,
) *RunRenewalsUseCase {
	if workers <= 0 {
		workers = 1
	}
	return &RunRenewalsUseCase{
		groupRepo:   groupRepo,
		subRepo:     subRepo,
		cycleRepo:   cycleRepo,
		invoiceRepo: invoiceRepo,
		ledger:      ledger,
		finalizer:   finalizer,
		txMgr:       txMgr,
		workers:     workers,
		logger:      logger,
	}
}

// SetPaymentOrderCreator sets the gateway order step (optional dependency injection)
func (uc *RunRenewalsUseCase) SetPaymentOrderCreator(creator *CreatePaymentOrderUseCase) {
	uc.paymentOrder = creator
}

// Horizon is the cycle start a run on date bills for: date itself when it
// starts a cycle, else the next cycle start.
func Horizon(date time.Time, period calendar.Period) time.Time {
	if calendar.CycleFor(date, period).Start.Equal(date) {
		return date
	}
	return calendar.NextRenewalDate(date, period)
}

func (uc *RunRenewalsUseCase) Execute(ctx context.Context, cmd RunRenewalsCommand) (*RunRenewalsResult, error) {
	if !cmd.Period.IsValid() {
		return nil, apperrors.NewValidationError("invalid renewal period", cmd.Period.String())
	}
	date := cmd.Date
	if date.IsZero() {
		date = biztime.Today()
	}
	horizon := Horizon(calendar.DateOnly(date), cmd.Period)

	ids, err := uc.groupRepo.ListDueForRenewal(ctx, cmd.Period, horizon)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups due for renewal: %w", err)
	}

	uc.logger.Infow("renewal run started",
		"period", cmd.Period,
		"horizon", biztime.FormatDate(horizon),
		"due", len(ids),
	)

	result := &RunRenewalsResult{Horizon: horizon}
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(uc.workers)

	for _, groupID := range ids {
		if ctx.Err() != nil {
			uc.logger.Warnw("renewal run cancelled, not scheduling remaining groups", "error", ctx.Err())
			break
		}
		g.Go(func() error {
			var (
				renewed *RenewedInvoice
				skip    string
			)
			err := goroutine.Run(uc.logger, "renew-group", func() error {
				var err error
				renewed, skip, err = uc.RenewGroup(ctx, groupID, horizon, cmd.Period)
				return err
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrPreviousCycleUnpaid):
				uc.logger.Warnw("group renewal blocked by unpaid invoice", "group_id", groupID, "error", err)
				result.Errors = append(result.Errors, RenewalError{GroupID: groupID, Err: err})
			case err != nil:
				uc.logger.Errorw("group renewal failed", "group_id", groupID, "error", err)
				result.Errors = append(result.Errors, RenewalError{GroupID: groupID, Err: err})
			case skip != "":
				result.Skipped = append(result.Skipped, SkippedRenewal{GroupID: groupID, Reason: skip})
			default:
				result.Invoices = append(result.Invoices, *renewed)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Count = len(result.Invoices)
	uc.logger.Infow("renewal run finished",
		"period", cmd.Period,
		"renewed", result.Count,
		"skipped", len(result.Skipped),
		"failed", len(result.Errors),
	)
	return result, nil
}

// RenewGroup bills the cycle starting at horizon for one group. A non-empty
// reason means the group was skipped without changes.
func (uc *RunRenewalsUseCase) RenewGroup(ctx context.Context, groupID uint, horizon time.Time, period calendar.Period) (*RenewedInvoice, string, error) {
	var (
		invoice *billing.Invoice
		cycle   *subscription.Cycle
		skip    string
	)

	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		group, err := uc.groupRepo.GetByID(txCtx, groupID)
		if err != nil {
			return err
		}
		if !group.IsActive() {
			skip = "group is not active"
			return nil
		}
		if group.Cadence() != period {
			skip = "cadence changed"
			return nil
		}

		latest, err := uc.cycleRepo.GetLatest(txCtx, group.ID(), subscription.CycleKindRegular)
		if err != nil {
			return err
		}
		if latest.RenewalDate().After(horizon) {
			skip = "not due"
			return nil
		}

		prev, err := uc.invoiceRepo.GetByCycleID(txCtx, latest.ID())
		if err != nil && !errors.Is(err, billing.ErrInvoiceNotFound) {
			return err
		}
		if prev == nil {
			return fmt.Errorf("%w: cycle %d has no invoice", ErrPreviousCycleUnpaid, latest.ID())
		}
		if !prev.IsPaid() {
			return fmt.Errorf("%w: invoice %s is %s", ErrPreviousCycleUnpaid, prev.SID(), prev.Status())
		}

		// Missed cycles are not back-billed; the group resumes at the horizon.
		cycle, err = subscription.NewCycle(group.ID(), subscription.CycleKindRegular, calendar.NextFullCycle(horizon, period), period)
		if err != nil {
			return err
		}
		if err := uc.cycleRepo.Create(txCtx, cycle); err != nil {
			if errors.Is(err, subscription.ErrCycleExists) {
				skip = "already renewed"
				return nil
			}
			return err
		}

		lines, err := uc.subRepo.ListByGroup(txCtx, group.ID())
		if err != nil {
			return err
		}
		if err := uc.subRepo.ResetSkipsByGroup(txCtx, group.ID()); err != nil {
			return err
		}
		subtotal := subscription.EstimateLines(lines, cycle.Range(), group.Currency())

		receipt := NewReceipt()
		available, err := uc.ledger.ListAvailableByGroup(txCtx, group.ID())
		if err != nil {
			return err
		}
		consumed, err := uc.ledger.Consume(txCtx, available, subtotal, receipt)
		if err != nil {
			return err
		}

		invoice, err = billing.NewInvoice(group.ID(), cycle.ID(), subtotal, consumed.Applied, receipt)
		if err != nil {
			return err
		}
		if !invoice.Total().IsPositive() {
			now := biztime.NowUTC()
			if err := invoice.SettleWithCredits(now); err != nil {
				return err
			}
			invoice.MarkFulfillmentPending(nil, now)
		}
		return uc.invoiceRepo.Create(txCtx, invoice)
	})
	if err != nil {
		return nil, "", err
	}
	if skip != "" {
		uc.logger.Infow("group renewal skipped", "group_id", groupID, "reason", skip)
		return nil, skip, nil
	}

	renewed := &RenewedInvoice{
		GroupID:          groupID,
		CycleID:          cycle.ID(),
		InvoiceID:        invoice.ID(),
		InvoiceSID:       invoice.SID(),
		Subtotal:         invoice.Subtotal().Minor(),
		CreditsApplied:   invoice.CreditsApplied().Minor(),
		Total:            invoice.Total().Minor(),
		SettledByCredits: invoice.IsPaid(),
		CycleStart:       cycle.Start(),
		CycleEnd:         cycle.Range().LastDay(),
	}

	if invoice.IsPaid() {
		// A gap here is recorded on the invoice and retried; the renewal stands.
		_, _ = uc.finalizer.Fulfill(ctx, invoice)
		return renewed, "", nil
	}

	if uc.paymentOrder != nil {
		if err := uc.paymentOrder.Execute(ctx, invoice); err != nil {
			uc.logger.Warnw("renewal invoice created without gateway order",
				"invoice_id", invoice.ID(),
				"error", err,
			)
		}
	}
	return renewed, "", nil
}

package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/homechef-inc/mealsub/internal/application/billing/paymentgateway"
	fulfillmentUsecases "github.com/homechef-inc/mealsub/internal/application/fulfillment/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/billing"
	vo "github.com/homechef-inc/mealsub/internal/domain/billing/valueobjects"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/goroutine"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type FinalizeResult struct {
	InvoiceSID         string
	Action             ActionKind
	Reason             string
	OrdersCreated      int
	FulfillmentPending bool
	// RefundRequestID is set when the captured money goes back to the
	// consumer because the group was cancelled.
	RefundRequestID string
}

const lateCaptureReason = "payment captured after cancellation"

// FinalizeInvoiceUseCase applies payment events to invoices and fulfills
// paid cycles. The invoice status is re-checked by the update itself, so
// two deliveries racing on the same invoice produce one transition.
type FinalizeInvoiceUseCase struct {
	invoiceRepo billing.InvoiceRepository
	refundRepo  billing.RefundRequestRepository
	generator   *fulfillmentUsecases.GenerateOrdersUseCase
	alerter     ReconciliationAlerter // Optional
	txMgr       *db.TransactionManager
	logger      logger.Interface
}

func NewFinalizeInvoiceUseCase(
	invoiceRepo billing.InvoiceRepository,
	refundRepo billing.RefundRequestRepository,
	generator *fulfillmentUsecases.GenerateOrdersUseCase,
	txMgr *db.TransactionManager,
	logger logger.Interface,
) *FinalizeInvoiceUseCase {
	return &FinalizeInvoiceUseCase{
		invoiceRepo: invoiceRepo,
		refundRepo:  refundRepo,
		generator:   generator,
		txMgr:       txMgr,
		logger:      logger,
	}
}

// SetAlerter sets the operator alerter (optional dependency injection)
func (uc *FinalizeInvoiceUseCase) SetAlerter(alerter ReconciliationAlerter) {
	uc.alerter = alerter
}

func (uc *FinalizeInvoiceUseCase) Finalize(ctx context.Context, event *paymentgateway.WebhookEvent) (*FinalizeResult, error) {
	var (
		invoice *billing.Invoice
		action  Action
	)

	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		inv, err := uc.lookup(txCtx, event)
		if err != nil {
			return err
		}
		invoice = inv
		action = Classify(event, inv)
		if inv == nil || action.Kind == ActionNoop {
			return nil
		}

		err = uc.apply(txCtx, inv, action)
		if errors.Is(err, billing.ErrStatusChanged) {
			action = Action{Kind: ActionNoop, Reason: "invoice changed concurrently"}
			return nil
		}
		return err
	})
	if err != nil {
		uc.logger.Errorw("failed to finalize invoice",
			"payment_id", event.Payment.ID,
			"event_type", event.EventType,
			"error", err,
		)
		return nil, err
	}

	result := &FinalizeResult{Action: action.Kind, Reason: action.Reason}
	if invoice == nil {
		uc.logger.Infow("webhook for unknown invoice ignored",
			"payment_id", event.Payment.ID,
			"invoice_ref", event.InvoiceRef(),
		)
		return result, nil
	}
	result.InvoiceSID = invoice.SID()

	if action.Mismatch {
		uc.logger.Errorw("captured amount does not match invoice",
			"invoice_id", invoice.ID(),
			"expected_amount", invoice.Total().Minor(),
			"callback_amount", event.Payment.Amount,
			"expected_currency", invoice.Total().Currency(),
			"callback_currency", event.Payment.Currency,
		)
		uc.alert(invoice, event.Payment.ID, action.Reason, biztime.NowUTC())
		return result, nil
	}

	if action.Kind == ActionRefundCapture {
		result.RefundRequestID = invoice.LateCaptureRefund()
		uc.logger.Warnw("payment captured for voided invoice, refund requested",
			"invoice_id", invoice.ID(),
			"payment_id", event.Payment.ID,
			"refund_request_id", result.RefundRequestID,
		)
		uc.alert(invoice, event.Payment.ID, lateCaptureReason+"; refund "+result.RefundRequestID+" requested", biztime.NowUTC())
		return result, nil
	}

	if action.Kind == ActionNoop {
		uc.logger.Infow("payment event needs no change",
			"invoice_id", invoice.ID(),
			"event_type", event.EventType,
			"reason", action.Reason,
		)
		return result, nil
	}

	uc.logger.Infow("invoice finalized",
		"invoice_id", invoice.ID(),
		"action", action.Kind,
		"payment_id", event.Payment.ID,
	)

	if action.Kind == ActionMarkPaid {
		created, err := uc.Fulfill(ctx, invoice)
		result.OrdersCreated = created
		result.FulfillmentPending = err != nil
		result.RefundRequestID = invoice.LateCaptureRefund()
	}
	return result, nil
}

// lookup finds the invoice by the identifier in the payment notes, falling
// back to the gateway order reference. A missing invoice is not an error.
func (uc *FinalizeInvoiceUseCase) lookup(ctx context.Context, event *paymentgateway.WebhookEvent) (*billing.Invoice, error) {
	if ref := event.InvoiceRef(); ref != "" {
		inv, err := uc.invoiceRepo.GetBySID(ctx, ref)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, billing.ErrInvoiceNotFound) {
			return nil, err
		}
	}
	if event.Payment.OrderID != "" {
		inv, err := uc.invoiceRepo.GetByGatewayOrderRef(ctx, event.Payment.OrderID)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, billing.ErrInvoiceNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func (uc *FinalizeInvoiceUseCase) apply(ctx context.Context, inv *billing.Invoice, action Action) error {
	now := biztime.NowUTC()

	switch action.Kind {
	case ActionMarkPaid:
		if err := inv.MarkAsPaid(action.PaymentRef, now); err != nil {
			return err
		}
		// Flag before the attempt so a crash between commit and generation
		// still leaves a marker for the retry job.
		inv.MarkFulfillmentPending(nil, now)
		if err := uc.invoiceRepo.CompareAndSetStatus(ctx, inv, vo.SourcesOf(vo.InvoiceStatusPaid)); err != nil {
			return err
		}
		if action.OrderRef != "" && inv.GatewayOrderRef() == nil {
			inv.SetGatewayOrderRef(action.OrderRef)
			return uc.invoiceRepo.UpdateGatewayOrderRef(ctx, inv)
		}
		return nil

	case ActionMarkFailed:
		if err := inv.MarkAsFailed(action.FailureReason); err != nil {
			return err
		}
		return uc.invoiceRepo.CompareAndSetStatus(ctx, inv, vo.SourcesOf(vo.InvoiceStatusFailed))

	case ActionVoid:
		if err := inv.MarkAsVoid(action.RefundRef, now); err != nil {
			return err
		}
		return uc.invoiceRepo.CompareAndSetStatus(ctx, inv, []vo.InvoiceStatus{vo.InvoiceStatusPaid})

	case ActionRefundCapture:
		amount := shared.NewMoney(action.CapturedAmount, inv.Total().Currency())
		err := uc.requestRefund(ctx, inv, amount, action.PaymentRef, now)
		if errors.Is(err, billing.ErrRefundExists) {
			return billing.ErrStatusChanged
		}
		return err
	}

	return fmt.Errorf("unknown action %q", action.Kind)
}

// Fulfill generates orders for a paid invoice's cycle. On failure the
// invoice stays paid and is flagged for the retry job; the returned error
// is a reconciliation gap.
func (uc *FinalizeInvoiceUseCase) Fulfill(ctx context.Context, inv *billing.Invoice) (int, error) {
	result, err := uc.generator.Execute(ctx, fulfillmentUsecases.GenerateOrdersCommand{
		GroupID: inv.GroupID(),
		CycleID: inv.CycleID(),
	})
	if err != nil {
		return 0, uc.recordGap(ctx, inv, err)
	}

	if result.GroupCancelled {
		return 0, uc.settleCancelledCycle(ctx, inv, result.CycleHasOrders)
	}
	if result.PauseCredited > 0 {
		uc.logger.Warnw("paid cycle falls inside a pause, meals credited",
			"invoice_id", inv.ID(),
			"group_id", inv.GroupID(),
			"meals", result.PauseCredited,
			"credited", result.PauseCreditValue.Minor(),
		)
		uc.alert(inv, paymentRefOf(inv), fmt.Sprintf("payment captured while paused; %d meals worth %s credited",
			result.PauseCredited, result.PauseCreditValue), biztime.NowUTC())
	}

	if inv.IsFulfillmentPending() {
		inv.ClearFulfillmentPending()
		if updateErr := uc.invoiceRepo.UpdateMetadata(ctx, inv); updateErr != nil {
			// Generation is idempotent, so the retry job clearing it later is harmless.
			uc.logger.Warnw("failed to clear fulfillment pending flag",
				"invoice_id", inv.ID(),
				"error", updateErr,
			)
		}
	}
	return result.Created, nil
}

// settleCancelledCycle handles a paid invoice whose group was cancelled
// before its orders existed. The captured amount is returned through a
// refund request, once per invoice.
func (uc *FinalizeInvoiceUseCase) settleCancelledCycle(ctx context.Context, inv *billing.Invoice, cycleHasOrders bool) error {
	now := biztime.NowUTC()

	if cycleHasOrders || inv.LateCaptureRefund() != "" || !inv.Total().IsPositive() {
		// The cancellation settlement already covered this cycle.
		if inv.IsFulfillmentPending() {
			inv.ClearFulfillmentPending()
			if err := uc.invoiceRepo.UpdateMetadata(ctx, inv); err != nil {
				uc.logger.Warnw("failed to clear fulfillment pending flag",
					"invoice_id", inv.ID(),
					"error", err,
				)
			}
		}
		return nil
	}

	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		return uc.requestRefund(txCtx, inv, inv.Total(), paymentRefOf(inv), now)
	})
	if errors.Is(err, billing.ErrRefundExists) {
		uc.logger.Infow("late capture refund already requested", "invoice_id", inv.ID())
		return nil
	}
	if err != nil {
		// The rolled back transaction may have left refund details on inv.
		if fresh, getErr := uc.invoiceRepo.GetByID(ctx, inv.ID()); getErr == nil {
			*inv = *fresh
		}
		return uc.recordGap(ctx, inv, err)
	}

	uc.logger.Warnw("payment captured for cancelled group, refund requested",
		"invoice_id", inv.ID(),
		"group_id", inv.GroupID(),
		"refund_request_id", inv.LateCaptureRefund(),
	)
	uc.alert(inv, paymentRefOf(inv), lateCaptureReason+"; refund "+inv.LateCaptureRefund()+" requested", now)
	return nil
}

// requestRefund raises the refund request for a late capture and records it
// on the invoice. It returns billing.ErrRefundExists if one was already
// raised.
func (uc *FinalizeInvoiceUseCase) requestRefund(ctx context.Context, inv *billing.Invoice, amount shared.Money, paymentRef string, now time.Time) error {
	req, err := billing.NewInvoiceRefundRequest(inv.GroupID(), inv.ID(), amount, lateCaptureReason)
	if err != nil {
		return err
	}
	if err := uc.refundRepo.Create(ctx, req); err != nil {
		return err
	}

	inv.RecordLateCapture(paymentRef, req.SID(), now)
	inv.ClearFulfillmentPending()
	return uc.invoiceRepo.UpdateMetadata(ctx, inv)
}

func paymentRefOf(inv *billing.Invoice) string {
	if inv.PaymentRef() != nil {
		return *inv.PaymentRef()
	}
	return ""
}

func (uc *FinalizeInvoiceUseCase) recordGap(ctx context.Context, inv *billing.Invoice, cause error) error {
	now := biztime.NowUTC()

	uc.logger.Errorw("order generation failed after payment, queued for retry",
		"invoice_id", inv.ID(),
		"group_id", inv.GroupID(),
		"cycle_id", inv.CycleID(),
		"error", cause,
	)

	inv.MarkFulfillmentPending(cause, now)
	if err := uc.invoiceRepo.UpdateMetadata(ctx, inv); err != nil {
		uc.logger.Errorw("failed to record fulfillment error on invoice",
			"invoice_id", inv.ID(),
			"error", err,
		)
	}

	uc.alert(inv, paymentRefOf(inv), cause.Error(), now)

	return apperrors.NewReconciliationGapError(
		fmt.Sprintf("invoice %s is paid but orders were not generated", inv.SID()),
		cause,
	)
}

func (uc *FinalizeInvoiceUseCase) alert(inv *billing.Invoice, paymentRef, cause string, at time.Time) {
	if uc.alerter == nil {
		return
	}
	alert := ReconciliationAlert{
		InvoiceID:  inv.ID(),
		InvoiceSID: inv.SID(),
		GroupID:    inv.GroupID(),
		CycleID:    inv.CycleID(),
		Amount:     inv.Total(),
		PaymentRef: paymentRef,
		Cause:      cause,
		OccurredAt: at,
	}
	goroutine.SafeGo(uc.logger, "billing-reconciliation-alert", func() {
		alertCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := uc.alerter.AlertReconciliationGap(alertCtx, alert); err != nil {
			uc.logger.Warnw("failed to send reconciliation alert",
				"invoice_id", alert.InvoiceID,
				"error", err,
			)
		}
	})
}

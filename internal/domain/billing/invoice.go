package billing

import (
	"fmt"
	"time"

	vo "github.com/homechef-inc/mealsub/internal/domain/billing/valueobjects"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/id"
)

// Metadata keys recorded when a paid invoice could not be fulfilled.
const (
	MetaFulfillmentPending = "fulfillment_pending"
	MetaFulfillmentError   = "fulfillment_error"
	MetaFulfillmentFailAt  = "fulfillment_failed_at"
	MetaFailureReason      = "failure_reason"
	MetaSettledByCredits   = "settled_by_credits"
	MetaVoidReason         = "void_reason"
	MetaLateCapturePayment = "late_capture_payment"
	MetaLateCaptureRefund  = "late_capture_refund"
)

// VoidReasonGroupCancelled marks an invoice voided unpaid by a cancellation.
const VoidReasonGroupCancelled = "group_cancelled"

// Invoice is the payment obligation of one cycle. Status only moves forward;
// the finalizer is the only writer after creation.
type Invoice struct {
	id              uint
	sid             string
	groupID         uint
	cycleID         uint
	subtotal        shared.Money
	creditsApplied  shared.Money
	total           shared.Money
	status          vo.InvoiceStatus
	receipt         string
	gatewayOrderRef *string
	paymentRef      *string
	refundRef       *string
	paidAt          *time.Time
	refundedAt      *time.Time
	metadata        map[string]any
	createdAt       time.Time
	updatedAt       time.Time
}

// NewInvoice creates a pending invoice. The payable total is subtotal minus
// applied credits, never negative.
func NewInvoice(groupID, cycleID uint, subtotal, creditsApplied shared.Money, receipt string) (*Invoice, error) {
	if subtotal.IsNegative() || creditsApplied.IsNegative() {
		return nil, fmt.Errorf("invoice amounts cannot be negative")
	}
	if receipt == "" {
		return nil, fmt.Errorf("receipt is required")
	}
	sid, err := id.NewInvoiceSID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invoice SID: %w", err)
	}

	now := biztime.NowUTC()
	return &Invoice{
		sid:            sid,
		groupID:        groupID,
		cycleID:        cycleID,
		subtotal:       subtotal,
		creditsApplied: creditsApplied,
		total:          subtotal.Sub(creditsApplied).ClampZero(),
		status:         vo.InvoiceStatusPendingPayment,
		receipt:        receipt,
		metadata:       make(map[string]any),
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func ReconstructInvoice(
	id uint,
	sid string,
	groupID, cycleID uint,
	subtotal, creditsApplied, total shared.Money,
	status vo.InvoiceStatus,
	receipt string,
	gatewayOrderRef, paymentRef, refundRef *string,
	paidAt, refundedAt *time.Time,
	metadata map[string]any,
	createdAt, updatedAt time.Time,
) *Invoice {
	if metadata == nil {
		metadata = make(map[string]any)
	}
	return &Invoice{
		id:              id,
		sid:             sid,
		groupID:         groupID,
		cycleID:         cycleID,
		subtotal:        subtotal,
		creditsApplied:  creditsApplied,
		total:           total,
		status:          status,
		receipt:         receipt,
		gatewayOrderRef: gatewayOrderRef,
		paymentRef:      paymentRef,
		refundRef:       refundRef,
		paidAt:          paidAt,
		refundedAt:      refundedAt,
		metadata:        metadata,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// MarkAsPaid records the capture. Calling it on a paid invoice is a no-op.
func (i *Invoice) MarkAsPaid(paymentRef string, at time.Time) error {
	if i.status == vo.InvoiceStatusPaid {
		return nil
	}
	if !i.status.CanTransitionTo(vo.InvoiceStatusPaid) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.status, vo.InvoiceStatusPaid)
	}
	i.status = vo.InvoiceStatusPaid
	i.paymentRef = &paymentRef
	i.paidAt = &at
	delete(i.metadata, MetaFailureReason)
	i.updatedAt = at
	return nil
}

// SettleWithCredits marks an invoice whose total is zero as paid without a
// gateway round trip.
func (i *Invoice) SettleWithCredits(at time.Time) error {
	if i.total.IsPositive() {
		return fmt.Errorf("invoice %s still has %s payable", i.sid, i.total)
	}
	if err := i.MarkAsPaid("credits", at); err != nil {
		return err
	}
	i.metadata[MetaSettledByCredits] = true
	return nil
}

func (i *Invoice) MarkAsFailed(reason string) error {
	if !i.status.CanTransitionTo(vo.InvoiceStatusFailed) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.status, vo.InvoiceStatusFailed)
	}
	i.status = vo.InvoiceStatusFailed
	if reason != "" {
		i.metadata[MetaFailureReason] = reason
	}
	i.updatedAt = biztime.NowUTC()
	return nil
}

// MarkAsVoid records a gateway refund of a paid invoice.
func (i *Invoice) MarkAsVoid(refundRef string, at time.Time) error {
	if i.status != vo.InvoiceStatusPaid {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.status, vo.InvoiceStatusVoid)
	}
	i.status = vo.InvoiceStatusVoid
	if refundRef != "" {
		i.refundRef = &refundRef
	}
	i.refundedAt = &at
	i.updatedAt = at
	return nil
}

// VoidUnpaid closes an invoice that was never paid.
func (i *Invoice) VoidUnpaid(reason string, at time.Time) error {
	if i.status != vo.InvoiceStatusPendingPayment && i.status != vo.InvoiceStatusFailed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.status, vo.InvoiceStatusVoid)
	}
	i.status = vo.InvoiceStatusVoid
	i.metadata[MetaVoidReason] = reason
	i.updatedAt = at
	return nil
}

// IsVoidedUnpaid reports whether the invoice was closed without payment.
func (i *Invoice) IsVoidedUnpaid() bool {
	_, ok := i.metadata[MetaVoidReason].(string)
	return i.status == vo.InvoiceStatusVoid && ok
}

// RecordLateCapture notes a payment that arrived after the cycle was
// abandoned and the refund request raised for it.
func (i *Invoice) RecordLateCapture(paymentRef, refundSID string, at time.Time) {
	i.metadata[MetaLateCapturePayment] = paymentRef
	i.metadata[MetaLateCaptureRefund] = refundSID
	i.updatedAt = at
}

// LateCaptureRefund returns the refund request SID of a late capture.
func (i *Invoice) LateCaptureRefund() string {
	sid, _ := i.metadata[MetaLateCaptureRefund].(string)
	return sid
}

func (i *Invoice) SetGatewayOrderRef(ref string) {
	i.gatewayOrderRef = &ref
	i.updatedAt = biztime.NowUTC()
}

// MarkFulfillmentPending records that orders for the paid cycle still have
// to be generated. A nil cause flags the invoice ahead of the attempt.
func (i *Invoice) MarkFulfillmentPending(cause error, at time.Time) {
	i.metadata[MetaFulfillmentPending] = true
	if cause != nil {
		i.metadata[MetaFulfillmentError] = cause.Error()
		i.metadata[MetaFulfillmentFailAt] = biztime.FormatMetadataTime(at)
	}
	i.updatedAt = at
}

func (i *Invoice) ClearFulfillmentPending() {
	delete(i.metadata, MetaFulfillmentPending)
	delete(i.metadata, MetaFulfillmentError)
	delete(i.metadata, MetaFulfillmentFailAt)
	i.updatedAt = biztime.NowUTC()
}

func (i *Invoice) IsFulfillmentPending() bool {
	pending, ok := i.metadata[MetaFulfillmentPending].(bool)
	return ok && pending
}

func (i *Invoice) ID() uint                     { return i.id }
func (i *Invoice) SID() string                  { return i.sid }
func (i *Invoice) GroupID() uint                { return i.groupID }
func (i *Invoice) CycleID() uint                { return i.cycleID }
func (i *Invoice) Subtotal() shared.Money       { return i.subtotal }
func (i *Invoice) CreditsApplied() shared.Money { return i.creditsApplied }
func (i *Invoice) Total() shared.Money          { return i.total }
func (i *Invoice) Status() vo.InvoiceStatus     { return i.status }
func (i *Invoice) Receipt() string              { return i.receipt }
func (i *Invoice) GatewayOrderRef() *string     { return i.gatewayOrderRef }
func (i *Invoice) PaymentRef() *string          { return i.paymentRef }
func (i *Invoice) RefundRef() *string           { return i.refundRef }
func (i *Invoice) PaidAt() *time.Time           { return i.paidAt }
func (i *Invoice) RefundedAt() *time.Time       { return i.refundedAt }
func (i *Invoice) Metadata() map[string]any     { return i.metadata }
func (i *Invoice) CreatedAt() time.Time         { return i.createdAt }
func (i *Invoice) UpdatedAt() time.Time         { return i.updatedAt }

func (i *Invoice) IsPaid() bool { return i.status == vo.InvoiceStatusPaid }

func (i *Invoice) SetID(id uint) {
	i.id = id
}

func (i *Invoice) SetCycleID(cycleID uint) {
	i.cycleID = cycleID
}

package usecases

import (
	"github.com/homechef-inc/mealsub/internal/application/billing/paymentgateway"
	"github.com/homechef-inc/mealsub/internal/domain/billing"
	vo "github.com/homechef-inc/mealsub/internal/domain/billing/valueobjects"
)

type ActionKind string

const (
	ActionNoop       ActionKind = "noop"
	ActionMarkPaid   ActionKind = "mark_paid"
	ActionMarkFailed ActionKind = "mark_failed"
	ActionVoid       ActionKind = "void"
	// ActionRefundCapture returns money captured for an invoice that was
	// voided before payment.
	ActionRefundCapture ActionKind = "refund_capture"
)

// Action is the decision taken for one webhook event against the invoice
// as it was read.
type Action struct {
	Kind ActionKind
	// Reason explains a noop.
	Reason        string
	PaymentRef    string
	OrderRef      string
	FailureReason string
	RefundRef     string
	// CapturedAmount is the refundable amount of a late capture.
	CapturedAmount int64
	// Mismatch is set when the gateway captured a different amount or
	// currency than the invoice asks for. Operators settle these by hand.
	Mismatch bool
}

// Classify decides what an event means for an invoice. It has no side
// effects; Apply carries the decision out.
func Classify(event *paymentgateway.WebhookEvent, invoice *billing.Invoice) Action {
	if invoice == nil {
		return Action{Kind: ActionNoop, Reason: "invoice not found"}
	}

	status := invoice.Status()
	switch event.EventType {
	case paymentgateway.EventCaptured, paymentgateway.EventAuthorized:
		if event.EventType == paymentgateway.EventAuthorized && !event.Payment.Captured {
			return Action{Kind: ActionNoop, Reason: "authorized, awaiting capture"}
		}
		if status == vo.InvoiceStatusPaid {
			return Action{Kind: ActionNoop, Reason: "invoice already paid"}
		}
		if invoice.IsVoidedUnpaid() {
			if invoice.LateCaptureRefund() != "" {
				return Action{Kind: ActionNoop, Reason: "late capture already refunded"}
			}
			amount := event.Payment.Amount
			if amount == 0 {
				amount = invoice.Total().Minor()
			}
			return Action{
				Kind:           ActionRefundCapture,
				Reason:         "payment captured after the invoice was voided",
				PaymentRef:     event.Payment.ID,
				CapturedAmount: amount,
			}
		}
		if !status.CanTransitionTo(vo.InvoiceStatusPaid) {
			return Action{Kind: ActionNoop, Reason: "capture ignored for " + status.String() + " invoice"}
		}
		if amountMismatch(event, invoice) {
			return Action{Kind: ActionNoop, Reason: "captured amount does not match invoice", Mismatch: true}
		}
		return Action{
			Kind:       ActionMarkPaid,
			PaymentRef: event.Payment.ID,
			OrderRef:   event.Payment.OrderID,
		}

	case paymentgateway.EventFailed:
		if !status.CanTransitionTo(vo.InvoiceStatusFailed) {
			return Action{Kind: ActionNoop, Reason: "failure ignored for " + status.String() + " invoice"}
		}
		return Action{
			Kind:          ActionMarkFailed,
			PaymentRef:    event.Payment.ID,
			FailureReason: event.Payment.ErrorReason,
		}

	case paymentgateway.EventRefunded:
		if status == vo.InvoiceStatusVoid {
			return Action{Kind: ActionNoop, Reason: "invoice already void"}
		}
		if status != vo.InvoiceStatusPaid {
			return Action{Kind: ActionNoop, Reason: "refund ignored for " + status.String() + " invoice"}
		}
		return Action{
			Kind:       ActionVoid,
			PaymentRef: event.Payment.ID,
			RefundRef:  event.Payment.RefundID,
		}
	}

	return Action{Kind: ActionNoop, Reason: "unsupported event type"}
}

// amountMismatch compares the captured amount when the gateway reports one.
func amountMismatch(event *paymentgateway.WebhookEvent, invoice *billing.Invoice) bool {
	p := event.Payment
	if p.Amount == 0 && p.Currency == "" {
		return false
	}
	if p.Currency != "" && p.Currency != invoice.Total().Currency() {
		return true
	}
	return p.Amount != 0 && p.Amount != invoice.Total().Minor()
}

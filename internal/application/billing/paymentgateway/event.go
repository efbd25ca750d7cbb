package paymentgateway

import (
	"encoding/json"
	"fmt"
)

type EventType string

const (
	EventAuthorized EventType = "authorized"
	EventCaptured   EventType = "captured"
	EventFailed     EventType = "failed"
	EventRefunded   EventType = "refunded"
)

func (t EventType) IsValid() bool {
	switch t {
	case EventAuthorized, EventCaptured, EventFailed, EventRefunded:
		return true
	}
	return false
}

// NoteInvoiceID is the order note carrying our invoice identifier.
const NoteInvoiceID = "invoice_id"

type PaymentEntity struct {
	ID          string            `json:"id"`
	OrderID     string            `json:"order_id"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Captured    bool              `json:"captured"`
	Notes       map[string]string `json:"notes"`
	ErrorReason string            `json:"error_reason,omitempty"`
	RefundID    string            `json:"refund_id,omitempty"`
}

// WebhookEvent is the payload the gateway posts for payment state changes.
type WebhookEvent struct {
	EventType EventType     `json:"event_type"`
	Payment   PaymentEntity `json:"payment_entity"`
}

// InvoiceRef returns the invoice identifier echoed in the payment notes.
func (e *WebhookEvent) InvoiceRef() string {
	if e.Payment.Notes == nil {
		return ""
	}
	return e.Payment.Notes[NoteInvoiceID]
}

// DedupKey identifies one delivery of one event kind for one payment.
func (e *WebhookEvent) DedupKey() string {
	return fmt.Sprintf("%s:%s", e.Payment.ID, e.EventType)
}

func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("malformed webhook body: %w", err)
	}
	if !event.EventType.IsValid() {
		return nil, fmt.Errorf("unsupported event type %q", event.EventType)
	}
	if event.Payment.ID == "" {
		return nil, fmt.Errorf("payment entity id is required")
	}
	return &event, nil
}

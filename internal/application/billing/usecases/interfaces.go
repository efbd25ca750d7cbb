package usecases

import (
	"context"
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/shared"
)

// ReconciliationAlert describes a captured payment whose orders were not
// generated.
type ReconciliationAlert struct {
	InvoiceID  uint
	InvoiceSID string
	GroupID    uint
	CycleID    uint
	Amount     shared.Money
	PaymentRef string
	Cause      string
	OccurredAt time.Time
}

// ReconciliationAlerter notifies operators. Implementations decide on
// channel and rate limiting.
type ReconciliationAlerter interface {
	AlertReconciliationGap(ctx context.Context, alert ReconciliationAlert) error
}

// DeliveryState is what the deduplicator knows about a webhook delivery.
type DeliveryState int

const (
	// DeliveryNew means the caller now holds the in-flight marker.
	DeliveryNew DeliveryState = iota
	// DeliveryInFlight means another worker holds the marker and has not
	// committed yet.
	DeliveryInFlight
	// DeliveryDone means the delivery was durably processed.
	DeliveryDone
)

// DeliveryDeduplicator drops repeated webhook deliveries before they reach
// the database. It is an optimization; the invoice status check is the
// guard that must hold.
type DeliveryDeduplicator interface {
	// Claim takes a short-lived in-flight marker for key. The marker expires
	// on its own if the holder dies before Complete or Release.
	Claim(ctx context.Context, key string) (DeliveryState, error)
	// Complete records key as processed for the retention window.
	Complete(ctx context.Context, key string) error
	// Release forgets key so a failed delivery can be retried.
	Release(ctx context.Context, key string) error
}

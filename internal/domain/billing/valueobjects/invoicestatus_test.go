package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceStatus_Monotone(t *testing.T) {
	for _, s := range []InvoiceStatus{InvoiceStatusPaid, InvoiceStatusFailed, InvoiceStatusVoid} {
		assert.False(t, s.CanTransitionTo(InvoiceStatusPendingPayment), "%s must not return to pending_payment", s)
	}
	assert.True(t, InvoiceStatusPendingPayment.CanTransitionTo(InvoiceStatusVoid))
	assert.True(t, InvoiceStatusFailed.CanTransitionTo(InvoiceStatusVoid))
	assert.True(t, InvoiceStatusPaid.CanTransitionTo(InvoiceStatusVoid))
	assert.False(t, InvoiceStatusVoid.CanTransitionTo(InvoiceStatusPaid))
}

func TestSourcesOf(t *testing.T) {
	assert.ElementsMatch(t, []InvoiceStatus{InvoiceStatusPendingPayment, InvoiceStatusFailed}, SourcesOf(InvoiceStatusPaid))
	assert.Equal(t, []InvoiceStatus{InvoiceStatusPendingPayment}, SourcesOf(InvoiceStatusFailed))
	assert.Equal(t, []InvoiceStatus{InvoiceStatusPendingPayment, InvoiceStatusFailed, InvoiceStatusPaid}, SourcesOf(InvoiceStatusVoid))
}

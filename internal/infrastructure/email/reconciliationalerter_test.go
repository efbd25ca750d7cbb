package email

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/infrastructure/cache"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type mockSender struct {
	mu   sync.Mutex
	sent []*gomail.Message

	// Error injection for testing
	err error
}

func (m *mockSender) DialAndSend(msgs ...*gomail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msgs...)
	return nil
}

type mockLock struct {
	held map[uint]bool
	err  error
}

func (m *mockLock) TryAcquireAlertLock(ctx context.Context, alertType cache.AlertType, resourceID uint, ttl time.Duration) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.held[resourceID] {
		return false, nil
	}
	m.held[resourceID] = true
	return true, nil
}

func newTestAlerter(sender *mockSender) *SMTPAlerter {
	return &SMTPAlerter{
		sender:     sender,
		from:       "billing@example.com",
		fromName:   "Billing",
		recipients: []string{"ops@example.com"},
		cooldown:   time.Minute,
		logger:     logger.Nop(),
	}
}

func testAlert() billingUsecases.ReconciliationAlert {
	return billingUsecases.ReconciliationAlert{
		InvoiceID:  12,
		InvoiceSID: "inv_abc",
		GroupID:    3,
		CycleID:    4,
		Amount:     shared.NewMoney(30000, "INR"),
		PaymentRef: "pay_1",
		Cause:      "vendor store unavailable",
		OccurredAt: time.Date(2024, 6, 10, 6, 0, 0, 0, time.UTC),
	}
}

func TestSMTPAlerter_SendsMail(t *testing.T) {
	sender := &mockSender{}
	a := newTestAlerter(sender)

	require.NoError(t, a.AlertReconciliationGap(context.Background(), testAlert()))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ops@example.com"}, sender.sent[0].GetHeader("To"))
	assert.Contains(t, sender.sent[0].GetHeader("Subject")[0], "inv_abc")
}

func TestSMTPAlerter_CooldownSuppressesRepeats(t *testing.T) {
	sender := &mockSender{}
	a := newTestAlerter(sender)
	a.SetAlertLock(&mockLock{held: map[uint]bool{}}, time.Minute)

	require.NoError(t, a.AlertReconciliationGap(context.Background(), testAlert()))
	require.NoError(t, a.AlertReconciliationGap(context.Background(), testAlert()))
	assert.Len(t, sender.sent, 1)
}

func TestSMTPAlerter_LockOutageStillSends(t *testing.T) {
	sender := &mockSender{}
	a := newTestAlerter(sender)
	a.SetAlertLock(&mockLock{err: errors.New("redis down")}, 0)

	require.NoError(t, a.AlertReconciliationGap(context.Background(), testAlert()))
	assert.Len(t, sender.sent, 1)
}

func TestSMTPAlerter_Failures(t *testing.T) {
	a := newTestAlerter(&mockSender{err: errors.New("connection refused")})
	assert.Error(t, a.AlertReconciliationGap(context.Background(), testAlert()))

	a = newTestAlerter(&mockSender{})
	a.recipients = nil
	assert.Error(t, a.AlertReconciliationGap(context.Background(), testAlert()))
}

func TestAlertBody(t *testing.T) {
	body := alertBody(testAlert())
	assert.Contains(t, body, "inv_abc")
	assert.Contains(t, body, "300.00")
	assert.Contains(t, body, "pay_1")
	assert.Contains(t, body, "vendor store unavailable")
}

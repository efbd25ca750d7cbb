package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/homechef-inc/mealsub/internal/application/billing/paymentgateway"
	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
)

// MockGateway records outbound gateway calls. Orders get sequential refs;
// the same idempotency key returns the same ref.
type MockGateway struct {
	mu       sync.Mutex
	orders   map[string]string
	seq      int
	Requests []paymentgateway.CreateOrderRequest

	Customers []paymentgateway.CreateCustomerRequest
	Mandates  []paymentgateway.StoreMandateRequest

	// Error injection for testing
	CreateOrderErr    error
	CreateCustomerErr error
	StoreMandateErr   error
}

func NewMockGateway() *MockGateway {
	return &MockGateway{orders: make(map[string]string)}
}

func (m *MockGateway) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.CreateOrderResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateOrderErr != nil {
		return nil, m.CreateOrderErr
	}
	m.Requests = append(m.Requests, req)
	if ref, ok := m.orders[req.IdempotencyKey]; ok {
		return &paymentgateway.CreateOrderResponse{OrderRef: ref, Status: "created"}, nil
	}
	m.seq++
	ref := fmt.Sprintf("order_%d", m.seq)
	m.orders[req.IdempotencyKey] = ref
	return &paymentgateway.CreateOrderResponse{OrderRef: ref, Status: "created"}, nil
}

func (m *MockGateway) CreateCustomer(ctx context.Context, req paymentgateway.CreateCustomerRequest) (*paymentgateway.CreateCustomerResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateCustomerErr != nil {
		return nil, m.CreateCustomerErr
	}
	m.Customers = append(m.Customers, req)
	return &paymentgateway.CreateCustomerResponse{CustomerRef: fmt.Sprintf("cust_%d", req.ConsumerID)}, nil
}

func (m *MockGateway) StoreMandate(ctx context.Context, req paymentgateway.StoreMandateRequest) (*paymentgateway.StoreMandateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StoreMandateErr != nil {
		return nil, m.StoreMandateErr
	}
	m.Mandates = append(m.Mandates, req)
	return &paymentgateway.StoreMandateResponse{MandateRef: "mandate_" + req.CustomerRef}, nil
}

// OrderCount returns the number of CreateOrder calls.
func (m *MockGateway) OrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// MockVerifier accepts exactly one signature value.
type MockVerifier struct {
	Valid string
}

func (m *MockVerifier) Verify(payload []byte, signature string) error {
	if signature != m.Valid {
		return paymentgateway.ErrInvalidSignature
	}
	return nil
}

type MockAlerter struct {
	mu     sync.Mutex
	alerts []billingUsecases.ReconciliationAlert
}

func (m *MockAlerter) AlertReconciliationGap(ctx context.Context, alert billingUsecases.ReconciliationAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, alert)
	return nil
}

func (m *MockAlerter) Alerts() []billingUsecases.ReconciliationAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]billingUsecases.ReconciliationAlert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// MockDedup is an in-memory DeliveryDeduplicator. Claimed keys stay in
// flight until Complete or Release.
type MockDedup struct {
	mu    sync.Mutex
	state map[string]billingUsecases.DeliveryState

	ClaimErr error
}

func NewMockDedup() *MockDedup {
	return &MockDedup{state: make(map[string]billingUsecases.DeliveryState)}
}

func (m *MockDedup) Claim(ctx context.Context, key string) (billingUsecases.DeliveryState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClaimErr != nil {
		return billingUsecases.DeliveryNew, m.ClaimErr
	}
	if state, ok := m.state[key]; ok {
		return state, nil
	}
	m.state[key] = billingUsecases.DeliveryInFlight
	return billingUsecases.DeliveryNew, nil
}

func (m *MockDedup) Complete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[key] = billingUsecases.DeliveryDone
	return nil
}

func (m *MockDedup) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.state, key)
	return nil
}

// Expire drops key as if its in-flight marker timed out.
func (m *MockDedup) Expire(key string) {
	m.Release(context.Background(), key)
}

// Alerts are sent from a background goroutine.
const (
	AlertWait = 2 * time.Second
	AlertTick = 10 * time.Millisecond
)

package payment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homechef-inc/mealsub/internal/application/billing/paymentgateway"
	sharedConfig "github.com/homechef-inc/mealsub/internal/shared/config"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

func newTestClient(url string) *GatewayClient {
	return NewGatewayClient(sharedConfig.GatewayConfig{
		BaseURL:         url,
		KeyID:           "key",
		KeySecret:       "secret",
		Timeout:         time.Second,
		MaxElapsedTime:  time.Second,
		RetryInterval:   5 * time.Millisecond,
		BreakerFailures: 3,
		BreakerTimeout:  time.Minute,
	}, logger.Nop())
}

func TestGatewayClient_CreateOrder(t *testing.T) {
	var got orderPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/orders", r.URL.Path)
		assert.Equal(t, "idem-1", r.Header.Get(idempotencyHeader))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"order_abc","status":"created"}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).CreateOrder(t.Context(), paymentgateway.CreateOrderRequest{
		Amount:         30000,
		Currency:       "INR",
		Receipt:        "rcpt_1",
		Notes:          map[string]string{paymentgateway.NoteInvoiceID: "inv_1"},
		IdempotencyKey: "idem-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", resp.OrderRef)
	assert.Equal(t, int64(30000), got.Amount)
	assert.Equal(t, "inv_1", got.Notes[paymentgateway.NoteInvoiceID])
}

func TestGatewayClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"cust_9"}`))
	}))
	defer server.Close()

	resp, err := newTestClient(server.URL).CreateCustomer(t.Context(), paymentgateway.CreateCustomerRequest{ConsumerID: 9})
	require.NoError(t, err)
	assert.Equal(t, "cust_9", resp.CustomerRef)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGatewayClient_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad amount"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).StoreMandate(t.Context(), paymentgateway.StoreMandateRequest{CustomerRef: "cust_1"})
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGatewayClient_BreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.CreateOrder(t.Context(), paymentgateway.CreateOrderRequest{Amount: 100})
	require.Error(t, err)

	// The breaker tripped after three consecutive failures; further calls
	// fail without reaching the server.
	before := calls.Load()
	assert.Equal(t, int32(3), before)
	_, err = client.CreateOrder(t.Context(), paymentgateway.CreateOrderRequest{Amount: 100})
	require.Error(t, err)
	assert.Equal(t, before, calls.Load())
}

func TestHMACVerifier(t *testing.T) {
	v := NewHMACVerifier("whsec")
	body := []byte(`{"event_type":"captured"}`)

	require.NoError(t, v.Verify(body, v.Sign(body)))
	assert.ErrorIs(t, v.Verify(body, "deadbeef"), paymentgateway.ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(body, "not-hex"), paymentgateway.ErrInvalidSignature)
	assert.ErrorIs(t, v.Verify(body, ""), paymentgateway.ErrInvalidSignature)
	assert.ErrorIs(t, NewHMACVerifier("").Verify(body, v.Sign(body)), paymentgateway.ErrInvalidSignature)
}

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sony/gobreaker/v2"

	"github.com/homechef-inc/mealsub/internal/application/billing/paymentgateway"
	sharedConfig "github.com/homechef-inc/mealsub/internal/shared/config"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultMaxElapsedTime = 30 * time.Second
	defaultRetryInterval  = 500 * time.Millisecond
	// Maximum response body size read from the gateway (256KB)
	maxGatewayResponseSize = 256 << 10

	idempotencyHeader = "X-Idempotency-Key"
)

// StatusError is a non-2xx gateway response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the same request may succeed later.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

type orderPayload struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type orderReply struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type customerPayload struct {
	Notes map[string]string `json:"notes"`
}

type mandatePayload struct {
	CustomerID string `json:"customer_id"`
	Method     string `json:"method"`
	MaxAmount  int64  `json:"max_amount"`
	Currency   string `json:"currency"`
}

type idReply struct {
	ID string `json:"id"`
}

// GatewayClient talks to the payment gateway REST API. Each attempt runs
// through a circuit breaker; transient failures are retried with
// exponential backoff under the same idempotency key.
type GatewayClient struct {
	baseURL        string
	keyID          string
	keySecret      string
	maxElapsedTime time.Duration
	retryInterval  time.Duration
	httpClient     *http.Client
	breaker        *gobreaker.CircuitBreaker[[]byte]
	logger         logger.Interface
}

func NewGatewayClient(cfg sharedConfig.GatewayConfig, logger logger.Interface) *GatewayClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	maxElapsed := cfg.MaxElapsedTime
	if maxElapsed <= 0 {
		maxElapsed = defaultMaxElapsedTime
	}
	interval := cfg.RetryInterval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// Client errors mean the gateway is up.
			var se *StatusError
			if errors.As(err, &se) {
				return !se.Retryable()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return &GatewayClient{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		keyID:          cfg.KeyID,
		keySecret:      cfg.KeySecret,
		maxElapsedTime: maxElapsed,
		retryInterval:  interval,
		httpClient:     &http.Client{Timeout: timeout},
		breaker:        breaker,
		logger:         logger,
	}
}

var _ paymentgateway.PaymentGateway = (*GatewayClient)(nil)

func (c *GatewayClient) CreateOrder(ctx context.Context, req paymentgateway.CreateOrderRequest) (*paymentgateway.CreateOrderResponse, error) {
	var reply orderReply
	err := c.post(ctx, "/v1/orders", req.IdempotencyKey, orderPayload{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}, &reply)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if reply.ID == "" {
		return nil, fmt.Errorf("create order: gateway returned no order id")
	}
	return &paymentgateway.CreateOrderResponse{OrderRef: reply.ID, Status: reply.Status}, nil
}

func (c *GatewayClient) CreateCustomer(ctx context.Context, req paymentgateway.CreateCustomerRequest) (*paymentgateway.CreateCustomerResponse, error) {
	var reply idReply
	err := c.post(ctx, "/v1/customers", req.IdempotencyKey, customerPayload{
		Notes: map[string]string{"consumer_id": strconv.FormatUint(uint64(req.ConsumerID), 10)},
	}, &reply)
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &paymentgateway.CreateCustomerResponse{CustomerRef: reply.ID}, nil
}

func (c *GatewayClient) StoreMandate(ctx context.Context, req paymentgateway.StoreMandateRequest) (*paymentgateway.StoreMandateResponse, error) {
	var reply idReply
	err := c.post(ctx, "/v1/mandates", req.IdempotencyKey, mandatePayload{
		CustomerID: req.CustomerRef,
		Method:     req.Method,
		MaxAmount:  req.MaxAmount,
		Currency:   req.Currency,
	}, &reply)
	if err != nil {
		return nil, fmt.Errorf("store mandate: %w", err)
	}
	return &paymentgateway.StoreMandateResponse{MandateRef: reply.ID}, nil
}

func (c *GatewayClient) post(ctx context.Context, path, idempotencyKey string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	operation := func() ([]byte, error) {
		raw, err := c.breaker.Execute(func() ([]byte, error) {
			return c.do(ctx, path, idempotencyKey, body)
		})
		if err == nil {
			return raw, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, backoff.Permanent(err)
		}
		var se *StatusError
		if errors.As(err, &se) && !se.Retryable() {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.retryInterval

	raw, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxElapsedTime(c.maxElapsedTime),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warnw("payment gateway call failed, retrying",
				"path", path,
				"retry_in", next,
				"error", err,
			)
		}),
	)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}

func (c *GatewayClient) do(ctx context.Context, path, idempotencyKey string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)
	if idempotencyKey != "" {
		req.Header.Set(idempotencyHeader, idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxGatewayResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

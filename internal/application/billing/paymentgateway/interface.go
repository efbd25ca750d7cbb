package paymentgateway

import (
	"context"
	"errors"
)

// PaymentGateway is the outbound side of the payment provider. Amounts are
// in the smallest currency unit (paise for INR).
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error)
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CreateCustomerResponse, error)
	StoreMandate(ctx context.Context, req StoreMandateRequest) (*StoreMandateResponse, error)
}

// CreateOrderRequest asks the gateway for a payable order. Notes are echoed
// back on the payment entity of every webhook for that order.
type CreateOrderRequest struct {
	Amount         int64
	Currency       string
	Receipt        string
	Notes          map[string]string
	IdempotencyKey string
}

type CreateOrderResponse struct {
	OrderRef string
	Status   string
}

type CreateCustomerRequest struct {
	ConsumerID     uint
	IdempotencyKey string
}

type CreateCustomerResponse struct {
	CustomerRef string
}

// StoreMandateRequest registers a recurring debit authorization.
type StoreMandateRequest struct {
	CustomerRef    string
	Method         string
	MaxAmount      int64
	Currency       string
	IdempotencyKey string
}

type StoreMandateResponse struct {
	MandateRef string
}

// WebhookVerifier authenticates a raw webhook body against its signature
// header before anything parses it.
type WebhookVerifier interface {
	Verify(payload []byte, signature string) error
}

var ErrInvalidSignature = errors.New("invalid webhook signature")

package billing

import (
	"context"

	vo "github.com/homechef-inc/mealsub/internal/domain/billing/valueobjects"
)

type InvoiceRepository interface {
	// Create returns ErrInvoiceExists if the cycle already has an invoice.
	Create(ctx context.Context, invoice *Invoice) error
	GetByID(ctx context.Context, id uint) (*Invoice, error)
	GetBySID(ctx context.Context, sid string) (*Invoice, error)
	GetByGatewayOrderRef(ctx context.Context, ref string) (*Invoice, error)
	GetByCycleID(ctx context.Context, cycleID uint) (*Invoice, error)
	ListByGroup(ctx context.Context, groupID uint) ([]*Invoice, error)
	// CompareAndSetStatus persists the invoice's status and payment fields
	// only if the stored status is one of from. It returns ErrStatusChanged
	// when no row matched.
	CompareAndSetStatus(ctx context.Context, invoice *Invoice, from []vo.InvoiceStatus) error
	UpdateMetadata(ctx context.Context, invoice *Invoice) error
	UpdateGatewayOrderRef(ctx context.Context, invoice *Invoice) error
	ListFulfillmentPending(ctx context.Context, limit int) ([]*Invoice, error)
}

type RefundRequestRepository interface {
	// Create returns ErrRefundExists if the linked invoice already has one.
	Create(ctx context.Context, req *RefundRequest) error
	ListByGroup(ctx context.Context, groupID uint) ([]*RefundRequest, error)
}

package billing

import (
	"fmt"
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/id"
)

type RefundStatus string

const RefundStatusRequested RefundStatus = "requested"

// RefundRequest is the bank-refund branch of a cancellation settlement, or
// the return of a payment captured for an abandoned cycle. Payout happens
// outside this engine.
type RefundRequest struct {
	id        uint
	sid       string
	groupID   uint
	invoiceID *uint
	amount    shared.Money
	reason    string
	status    RefundStatus
	createdAt time.Time
}

func NewRefundRequest(groupID uint, amount shared.Money, reason string) (*RefundRequest, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("refund amount must be positive")
	}
	sid, err := id.NewRefundSID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refund SID: %w", err)
	}
	return &RefundRequest{
		sid:       sid,
		groupID:   groupID,
		amount:    amount,
		reason:    reason,
		status:    RefundStatusRequested,
		createdAt: biztime.NowUTC(),
	}, nil
}

// NewInvoiceRefundRequest refunds a payment captured against invoiceID. At
// most one such request exists per invoice.
func NewInvoiceRefundRequest(groupID, invoiceID uint, amount shared.Money, reason string) (*RefundRequest, error) {
	req, err := NewRefundRequest(groupID, amount, reason)
	if err != nil {
		return nil, err
	}
	req.invoiceID = &invoiceID
	return req, nil
}

func ReconstructRefundRequest(id uint, sid string, groupID uint, invoiceID *uint, amount shared.Money, reason string, status RefundStatus, createdAt time.Time) *RefundRequest {
	return &RefundRequest{
		id:        id,
		sid:       sid,
		groupID:   groupID,
		invoiceID: invoiceID,
		amount:    amount,
		reason:    reason,
		status:    status,
		createdAt: createdAt,
	}
}

func (r *RefundRequest) ID() uint             { return r.id }
func (r *RefundRequest) SID() string          { return r.sid }
func (r *RefundRequest) GroupID() uint        { return r.groupID }
func (r *RefundRequest) InvoiceID() *uint     { return r.invoiceID }
func (r *RefundRequest) Amount() shared.Money { return r.amount }
func (r *RefundRequest) Reason() string       { return r.reason }
func (r *RefundRequest) Status() RefundStatus { return r.status }
func (r *RefundRequest) CreatedAt() time.Time { return r.createdAt }

func (r *RefundRequest) SetID(id uint) {
	r.id = id
}

package dto

import (
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/billing"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
)

type GroupDTO struct {
	ID            uint                `json:"id"`
	ConsumerID    uint                `json:"consumer_id"`
	VendorID      uint                `json:"vendor_id"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method"`
	Cadence       string              `json:"cadence"`
	Currency      string              `json:"currency"`
	HasMandate    bool                `json:"has_mandate"`
	PausedFrom    *time.Time          `json:"paused_from,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason  string              `json:"cancel_reason,omitempty"`
	Lines         []*LineDTO          `json:"lines"`
	Cycles        []*CycleDTO         `json:"cycles"`
	Invoices      []*InvoiceDTO       `json:"invoices"`
	RefundRequest []*RefundRequestDTO `json:"refund_requests"`
	CreditBalance int64               `json:"credit_balance"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

type LineDTO struct {
	ID            uint     `json:"id"`
	Slot          string   `json:"slot"`
	Weekdays      []string `json:"weekdays"`
	UnitPrice     int64    `json:"unit_price"`
	SkipAllowance int      `json:"skip_allowance"`
	SkipsUsed     int      `json:"skips_used"`
	Status        string   `json:"status"`
}

type CycleDTO struct {
	ID          uint      `json:"id"`
	Kind        string    `json:"kind"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	RenewalDate time.Time `json:"renewal_date"`
}

type InvoiceDTO struct {
	ID                 string     `json:"id"`
	CycleID            uint       `json:"cycle_id"`
	Subtotal           int64      `json:"subtotal"`
	CreditsApplied     int64      `json:"credits_applied"`
	TotalAmount        int64      `json:"total_amount"`
	Currency           string     `json:"currency"`
	Status             string     `json:"status"`
	GatewayOrderRef    *string    `json:"gateway_order_ref,omitempty"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`
	FulfillmentPending bool       `json:"fulfillment_pending"`
	CreatedAt          time.Time  `json:"created_at"`
}

type CreditDTO struct {
	ID             uint       `json:"id"`
	SubscriptionID uint       `json:"subscription_id,omitempty"`
	Amount         int64      `json:"amount"`
	Currency       string     `json:"currency"`
	Status         string     `json:"status"`
	Reason         string     `json:"reason"`
	ExpiresAt      time.Time  `json:"expires_at"`
	SourceOrderID  *uint      `json:"source_order_id,omitempty"`
	ConsumedAt     *time.Time `json:"consumed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type RefundRequestDTO struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type CreditListDTO struct {
	GroupID  uint         `json:"group_id"`
	Balance  int64        `json:"balance"`
	Currency string       `json:"currency"`
	Credits  []*CreditDTO `json:"credits"`
}

func ToGroupDTO(g *subscription.Group) *GroupDTO {
	if g == nil {
		return nil
	}
	return &GroupDTO{
		ID:            g.ID(),
		ConsumerID:    g.ConsumerID(),
		VendorID:      g.VendorID(),
		Status:        g.Status().String(),
		PaymentMethod: g.PaymentMethod().String(),
		Cadence:       g.Cadence().String(),
		Currency:      g.Currency(),
		HasMandate:    g.MandateRef() != nil,
		PausedFrom:    g.PausedFrom(),
		CancelledAt:   g.CancelledAt(),
		CancelReason:  g.CancelReason(),
		Lines:         []*LineDTO{},
		Cycles:        []*CycleDTO{},
		Invoices:      []*InvoiceDTO{},
		RefundRequest: []*RefundRequestDTO{},
		CreatedAt:     g.CreatedAt(),
		UpdatedAt:     g.UpdatedAt(),
	}
}

func ToLineDTO(s *subscription.Subscription) *LineDTO {
	return &LineDTO{
		ID:            s.ID(),
		Slot:          s.Slot().String(),
		Weekdays:      s.Weekdays().Codes(),
		UnitPrice:     s.UnitPrice().Minor(),
		SkipAllowance: s.SkipAllowance(),
		SkipsUsed:     s.SkipsUsed(),
		Status:        s.Status().String(),
	}
}

func ToCycleDTO(c *subscription.Cycle) *CycleDTO {
	return &CycleDTO{
		ID:          c.ID(),
		Kind:        string(c.Kind()),
		Start:       c.Start(),
		End:         c.Range().LastDay(),
		RenewalDate: c.RenewalDate(),
	}
}

func ToInvoiceDTO(i *billing.Invoice) *InvoiceDTO {
	return &InvoiceDTO{
		ID:                 i.SID(),
		CycleID:            i.CycleID(),
		Subtotal:           i.Subtotal().Minor(),
		CreditsApplied:     i.CreditsApplied().Minor(),
		TotalAmount:        i.Total().Minor(),
		Currency:           i.Total().Currency(),
		Status:             i.Status().String(),
		GatewayOrderRef:    i.GatewayOrderRef(),
		PaidAt:             i.PaidAt(),
		FulfillmentPending: i.IsFulfillmentPending(),
		CreatedAt:          i.CreatedAt(),
	}
}

func ToCreditDTO(c *credit.Credit) *CreditDTO {
	return &CreditDTO{
		ID:             c.ID(),
		SubscriptionID: c.SubscriptionID(),
		Amount:         c.Amount().Minor(),
		Currency:       c.Amount().Currency(),
		Status:         string(c.Status()),
		Reason:         string(c.Reason()),
		ExpiresAt:      c.ExpiresAt(),
		SourceOrderID:  c.SourceOrderID(),
		ConsumedAt:     c.ConsumedAt(),
		CreatedAt:      c.CreatedAt(),
	}
}

func ToRefundRequestDTO(r *billing.RefundRequest) *RefundRequestDTO {
	return &RefundRequestDTO{
		ID:        r.SID(),
		Amount:    r.Amount().Minor(),
		Reason:    r.Reason(),
		Status:    string(r.Status()),
		CreatedAt: r.CreatedAt(),
	}
}

// ToCreditDTOList returns an empty slice for no credits.
func ToCreditDTOList(credits []*credit.Credit) []*CreditDTO {
	out := make([]*CreditDTO, 0, len(credits))
	for _, c := range credits {
		out = append(out, ToCreditDTO(c))
	}
	return out
}

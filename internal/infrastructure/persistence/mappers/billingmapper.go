package mappers

import (
	"fmt"

	"gorm.io/datatypes"

	"github.com/homechef-inc/mealsub/internal/domain/billing"
	vo "github.com/homechef-inc/mealsub/internal/domain/billing/valueobjects"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
)

func InvoiceToModel(i *billing.Invoice) *models.InvoiceModel {
	m := &models.InvoiceModel{
		ID:                 i.ID(),
		SID:                i.SID(),
		GroupID:            i.GroupID(),
		CycleID:            i.CycleID(),
		Subtotal:           i.Subtotal().Minor(),
		CreditsApplied:     i.CreditsApplied().Minor(),
		TotalAmount:        i.Total().Minor(),
		Currency:           i.Total().Currency(),
		Status:             i.Status().String(),
		Receipt:            i.Receipt(),
		GatewayOrderRef:    i.GatewayOrderRef(),
		PaymentRef:         i.PaymentRef(),
		RefundRef:          i.RefundRef(),
		PaidAt:             i.PaidAt(),
		RefundedAt:         i.RefundedAt(),
		FulfillmentPending: i.IsFulfillmentPending(),
		CreatedAt:          i.CreatedAt(),
		UpdatedAt:          i.UpdatedAt(),
	}
	if len(i.Metadata()) > 0 {
		m.Metadata = datatypes.JSONMap(i.Metadata())
	}
	return m
}

func InvoiceToDomain(m *models.InvoiceModel) (*billing.Invoice, error) {
	status := vo.InvoiceStatus(m.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid invoice status: %s", m.Status)
	}

	return billing.ReconstructInvoice(
		m.ID, m.SID,
		m.GroupID, m.CycleID,
		shared.NewMoney(m.Subtotal, m.Currency),
		shared.NewMoney(m.CreditsApplied, m.Currency),
		shared.NewMoney(m.TotalAmount, m.Currency),
		status,
		m.Receipt,
		m.GatewayOrderRef, m.PaymentRef, m.RefundRef,
		utcPtr(m.PaidAt), utcPtr(m.RefundedAt),
		map[string]any(m.Metadata),
		m.CreatedAt.UTC(), m.UpdatedAt.UTC(),
	), nil
}

func InvoicesToDomain(ms []models.InvoiceModel) ([]*billing.Invoice, error) {
	out := make([]*billing.Invoice, 0, len(ms))
	for i := range ms {
		inv, err := InvoiceToDomain(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, nil
}

func RefundRequestToModel(r *billing.RefundRequest) *models.RefundRequestModel {
	return &models.RefundRequestModel{
		ID:        r.ID(),
		SID:       r.SID(),
		GroupID:   r.GroupID(),
		InvoiceID: r.InvoiceID(),
		Amount:    r.Amount().Minor(),
		Currency:  r.Amount().Currency(),
		Reason:    r.Reason(),
		Status:    string(r.Status()),
		CreatedAt: r.CreatedAt(),
	}
}

func RefundRequestToDomain(m *models.RefundRequestModel) *billing.RefundRequest {
	return billing.ReconstructRefundRequest(
		m.ID, m.SID, m.GroupID, m.InvoiceID,
		shared.NewMoney(m.Amount, m.Currency),
		m.Reason,
		billing.RefundStatus(m.Status),
		m.CreatedAt.UTC(),
	)
}

func CreditToModel(c *credit.Credit) *models.CreditModel {
	return &models.CreditModel{
		ID:             c.ID(),
		GroupID:        c.GroupID(),
		SubscriptionID: c.SubscriptionID(),
		Amount:         c.Amount().Minor(),
		Currency:       c.Amount().Currency(),
		Status:         string(c.Status()),
		Reason:         string(c.Reason()),
		ExpiresAt:      c.ExpiresAt(),
		SourceOrderID:  c.SourceOrderID(),
		ConsumedAt:     c.ConsumedAt(),
		ConsumedRef:    c.ConsumedRef(),
		CreatedAt:      c.CreatedAt(),
	}
}

func CreditToDomain(m *models.CreditModel) *credit.Credit {
	return credit.ReconstructCredit(
		m.ID, m.GroupID, m.SubscriptionID,
		shared.NewMoney(m.Amount, m.Currency),
		credit.Status(m.Status),
		credit.Reason(m.Reason),
		m.ExpiresAt.UTC(),
		m.SourceOrderID,
		utcPtr(m.ConsumedAt),
		m.ConsumedRef,
		m.CreatedAt.UTC(),
	)
}

func CreditsToDomain(ms []models.CreditModel) []*credit.Credit {
	out := make([]*credit.Credit, 0, len(ms))
	for i := range ms {
		out = append(out, CreditToDomain(&ms[i]))
	}
	return out
}

package usecases

import (
	"context"

	"github.com/homechef-inc/mealsub/internal/application/billing/paymentgateway"
	"github.com/homechef-inc/mealsub/internal/domain/billing"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// CreatePaymentOrderUseCase opens a gateway order for a pending invoice.
// The invoice receipt is the idempotency key, so asking twice yields the
// same gateway order.
type CreatePaymentOrderUseCase struct {
	invoiceRepo billing.InvoiceRepository
	gateway     paymentgateway.PaymentGateway
	logger      logger.Interface
}

func NewCreatePaymentOrderUseCase(
	invoiceRepo billing.InvoiceRepository,
	gateway paymentgateway.PaymentGateway,
	logger logger.Interface,
) *CreatePaymentOrderUseCase {
	return &CreatePaymentOrderUseCase{
		invoiceRepo: invoiceRepo,
		gateway:     gateway,
		logger:      logger,
	}
}

func (uc *CreatePaymentOrderUseCase) Execute(ctx context.Context, inv *billing.Invoice) error {
	if inv.GatewayOrderRef() != nil || !inv.Total().IsPositive() {
		return nil
	}

	resp, err := uc.gateway.CreateOrder(ctx, paymentgateway.CreateOrderRequest{
		Amount:   inv.Total().Minor(),
		Currency: inv.Total().Currency(),
		Receipt:  inv.Receipt(),
		Notes: map[string]string{
			paymentgateway.NoteInvoiceID: inv.SID(),
		},
		IdempotencyKey: inv.Receipt(),
	})
	if err != nil {
		uc.logger.Errorw("failed to create gateway order",
			"invoice_id", inv.ID(),
			"error", err,
		)
		return apperrors.NewExternalDependencyError("payment gateway is unavailable", err)
	}

	inv.SetGatewayOrderRef(resp.OrderRef)
	if err := uc.invoiceRepo.UpdateGatewayOrderRef(ctx, inv); err != nil {
		return err
	}

	uc.logger.Infow("gateway order created",
		"invoice_id", inv.ID(),
		"gateway_order_ref", resp.OrderRef,
		"amount", inv.Total().Minor(),
	)
	return nil
}

package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	"github.com/homechef-inc/mealsub/internal/shared/constants"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
	"github.com/homechef-inc/mealsub/internal/shared/utils"
)

// PaymentWebhookHandler receives gateway payment events. The raw body is
// passed through untouched because the signature covers its exact bytes.
type PaymentWebhookHandler struct {
	useCase         webhookUseCase
	signatureHeader string
	logger          logger.Interface
}

func NewPaymentWebhookHandler(useCase webhookUseCase, signatureHeader string, logger logger.Interface) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{
		useCase:         useCase,
		signatureHeader: signatureHeader,
		logger:          logger,
	}
}

type webhookResponse struct {
	InvoiceID          string `json:"invoice_id,omitempty"`
	Action             string `json:"action"`
	Reason             string `json:"reason,omitempty"`
	OrdersCreated      int    `json:"orders_created"`
	FulfillmentPending bool   `json:"fulfillment_pending"`
	RefundRequestID    string `json:"refund_request_id,omitempty"`
}

// HandlePayment handles POST /webhooks/payments.
//
// A 2xx tells the gateway to stop redelivering; anything else makes it
// retry, which is safe because finalization is idempotent.
func (h *PaymentWebhookHandler) HandlePayment(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, constants.MaxWebhookBodyBytes))
	if err != nil {
		h.logger.Warnw("failed to read payment webhook body", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "unreadable request body")
		return
	}

	result, err := h.useCase.Execute(c.Request.Context(), billingUsecases.HandlePaymentWebhookCommand{
		Body:      body,
		Signature: c.GetHeader(h.signatureHeader),
	})
	if err != nil {
		h.logger.Errorw("payment webhook not processed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", webhookResponse{
		InvoiceID:          result.InvoiceSID,
		Action:             string(result.Action),
		Reason:             result.Reason,
		OrdersCreated:      result.OrdersCreated,
		FulfillmentPending: result.FulfillmentPending,
		RefundRequestID:    result.RefundRequestID,
	})
}

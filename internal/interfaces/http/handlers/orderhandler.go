package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	fulfillmentUsecases "github.com/homechef-inc/mealsub/internal/application/fulfillment/usecases"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
	"github.com/homechef-inc/mealsub/internal/shared/utils"
)

type OrderHandler struct {
	skipUseCase skipOrderUseCase
	logger      logger.Interface
}

func NewOrderHandler(skipUC skipOrderUseCase, logger logger.Interface) *OrderHandler {
	return &OrderHandler{skipUseCase: skipUC, logger: logger}
}

type skipOrderResponse struct {
	OrderID        uint  `json:"order_id"`
	CreditID       uint  `json:"credit_id"`
	CreditAmount   int64 `json:"credit_amount"`
	SkipsRemaining int   `json:"skips_remaining"`
}

// Skip handles POST /api/orders/:id/skip
func (h *OrderHandler) Skip(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		return
	}
	orderID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	result, err := h.skipUseCase.Execute(c.Request.Context(), fulfillmentUsecases.SkipOrderCommand{
		PrincipalID: principal,
		OrderID:     orderID,
	})
	if err != nil {
		h.logger.Warnw("failed to skip order", "error", err, "order_id", orderID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "order skipped", skipOrderResponse{
		OrderID:        result.OrderID,
		CreditID:       result.CreditID,
		CreditAmount:   result.CreditAmount,
		SkipsRemaining: result.SkipsRemaining,
	})
}

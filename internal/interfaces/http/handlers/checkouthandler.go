package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	subUsecases "github.com/homechef-inc/mealsub/internal/application/subscription/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/shared/constants"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
	"github.com/homechef-inc/mealsub/internal/shared/utils"
)

type CheckoutHandler struct {
	checkoutUseCase checkoutUseCase
	logger          logger.Interface
}

func NewCheckoutHandler(checkoutUC checkoutUseCase, logger logger.Interface) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutUseCase: checkoutUC,
		logger:          logger,
	}
}

// CheckoutLineRequest is one meal slot of a new subscription.
type CheckoutLineRequest struct {
	Slot          string   `json:"slot" validate:"required,oneof=breakfast lunch dinner"`
	Weekdays      []string `json:"weekdays" validate:"required,min=1,dive,weekday"`
	UnitPrice     int64    `json:"unit_price" validate:"gt=0"`
	SkipAllowance int      `json:"skip_allowance" validate:"gte=0"`
}

type CheckoutRequest struct {
	VendorID      uint                  `json:"vendor_id" validate:"required"`
	Cadence       string                `json:"cadence" validate:"required,oneof=weekly monthly"`
	Lines         []CheckoutLineRequest `json:"lines" validate:"required,min=1,dive"`
	StartDate     string                `json:"start_date" validate:"omitempty,civildate"`
	PaymentMethod string                `json:"payment_method" validate:"required,oneof=upi_autopay card_mandate one_time"`
	Trial         bool                  `json:"trial"`
}

// Checkout handles POST /api/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	principal, ok := principalID(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if !bindJSON(c, &req) {
		h.logger.Warnw("invalid request body for checkout", "principal_id", principal)
		return
	}

	startDate, ok := dateOrToday(c, req.StartDate, "start_date")
	if !ok {
		return
	}

	lines := make([]subUsecases.CheckoutLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		weekdays, err := calendar.ParseWeekdaySet(l.Weekdays)
		if err != nil {
			utils.ErrorResponseWithError(c, apperrors.NewValidationError("invalid weekdays", err.Error()))
			return
		}
		lines = append(lines, subUsecases.CheckoutLine{
			Slot:          vo.Slot(l.Slot),
			Weekdays:      weekdays,
			UnitPrice:     l.UnitPrice,
			SkipAllowance: l.SkipAllowance,
		})
	}

	result, err := h.checkoutUseCase.Execute(c.Request.Context(), subUsecases.CheckoutCommand{
		PrincipalID:    principal,
		VendorID:       req.VendorID,
		Cadence:        calendar.Period(req.Cadence),
		Lines:          lines,
		StartDate:      startDate,
		PaymentMethod:  vo.PaymentMethod(req.PaymentMethod),
		Trial:          req.Trial,
		IdempotencyKey: c.GetHeader(constants.HeaderIdempotency),
	})
	if err != nil {
		h.logger.Errorw("checkout failed", "error", err, "principal_id", principal)
		utils.ErrorResponseWithError(c, err)
		return
	}

	if result.Replayed {
		utils.SuccessResponse(c, http.StatusOK, "subscription already created", result)
		return
	}
	utils.CreatedResponse(c, result, "subscription created")
}

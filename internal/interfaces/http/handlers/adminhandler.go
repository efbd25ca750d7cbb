package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	fulfillmentUsecases "github.com/homechef-inc/mealsub/internal/application/fulfillment/usecases"
	settingUsecases "github.com/homechef-inc/mealsub/internal/application/setting/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
	"github.com/homechef-inc/mealsub/internal/shared/utils"
)

// AdminHandler exposes operator actions: manual renewal runs, vendor
// holidays and capacity, and platform settings.
type AdminHandler struct {
	renewalsUseCase runRenewalsUseCase
	holidayUseCase  vendorHolidayUseCase
	capacityUseCase slotCapacityUseCase
	settingsUseCase updateSettingsUseCase
	logger          logger.Interface
}

func NewAdminHandler(
	renewalsUC runRenewalsUseCase,
	holidayUC vendorHolidayUseCase,
	capacityUC slotCapacityUseCase,
	settingsUC updateSettingsUseCase,
	logger logger.Interface,
) *AdminHandler {
	return &AdminHandler{
		renewalsUseCase: renewalsUC,
		holidayUseCase:  holidayUC,
		capacityUseCase: capacityUC,
		settingsUseCase: settingsUC,
		logger:          logger,
	}
}

type RunRenewalsRequest struct {
	Period string `json:"period" validate:"required,oneof=weekly monthly"`
	Date   string `json:"date" validate:"omitempty,civildate"`
}

type renewedInvoiceResponse struct {
	GroupID          uint      `json:"group_id"`
	InvoiceID        string    `json:"invoice_id"`
	Subtotal         int64     `json:"subtotal"`
	CreditsApplied   int64     `json:"credits_applied"`
	Total            int64     `json:"total"`
	SettledByCredits bool      `json:"settled_by_credits"`
	CycleStart       time.Time `json:"cycle_start"`
	CycleEnd         time.Time `json:"cycle_end"`
}

type renewalIssueResponse struct {
	GroupID uint   `json:"group_id"`
	Reason  string `json:"reason"`
}

type runRenewalsResponse struct {
	Count    int                      `json:"count"`
	Horizon  time.Time                `json:"horizon"`
	Invoices []renewedInvoiceResponse `json:"invoices"`
	Skipped  []renewalIssueResponse   `json:"skipped"`
	Errors   []renewalIssueResponse   `json:"errors"`
}

// RunRenewals handles POST /admin/renewals/run
func (h *AdminHandler) RunRenewals(c *gin.Context) {
	var req RunRenewalsRequest
	if !bindJSON(c, &req) {
		return
	}
	date, ok := dateOrToday(c, req.Date, "date")
	if !ok {
		return
	}

	result, err := h.renewalsUseCase.Execute(c.Request.Context(), billingUsecases.RunRenewalsCommand{
		Period: calendar.Period(req.Period),
		Date:   date,
	})
	if err != nil {
		h.logger.Errorw("manual renewal run failed", "error", err, "period", req.Period)
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := runRenewalsResponse{
		Count:    result.Count,
		Horizon:  result.Horizon,
		Invoices: make([]renewedInvoiceResponse, 0, len(result.Invoices)),
		Skipped:  make([]renewalIssueResponse, 0, len(result.Skipped)),
		Errors:   make([]renewalIssueResponse, 0, len(result.Errors)),
	}
	for _, inv := range result.Invoices {
		resp.Invoices = append(resp.Invoices, renewedInvoiceResponse{
			GroupID:          inv.GroupID,
			InvoiceID:        inv.InvoiceSID,
			Subtotal:         inv.Subtotal,
			CreditsApplied:   inv.CreditsApplied,
			Total:            inv.Total,
			SettledByCredits: inv.SettledByCredits,
			CycleStart:       inv.CycleStart,
			CycleEnd:         inv.CycleEnd,
		})
	}
	for _, s := range result.Skipped {
		resp.Skipped = append(resp.Skipped, renewalIssueResponse{GroupID: s.GroupID, Reason: s.Reason})
	}
	for _, e := range result.Errors {
		resp.Errors = append(resp.Errors, renewalIssueResponse{GroupID: e.GroupID, Reason: e.Err.Error()})
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

type VendorHolidayRequest struct {
	Date string `json:"date" validate:"required,civildate"`
	Slot string `json:"slot" validate:"omitempty,oneof=breakfast lunch dinner"`
	Note string `json:"note" validate:"max=255"`
}

type vendorHolidayResponse struct {
	HolidayID     uint `json:"holiday_id"`
	OrdersSkipped int  `json:"orders_skipped"`
	CreditsIssued int  `json:"credits_issued"`
}

// AddVendorHoliday handles POST /admin/vendors/:id/holidays
func (h *AdminHandler) AddVendorHoliday(c *gin.Context) {
	vendorID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req VendorHolidayRequest
	if !bindJSON(c, &req) {
		return
	}
	date, ok := dateOrToday(c, req.Date, "date")
	if !ok {
		return
	}

	result, err := h.holidayUseCase.Execute(c.Request.Context(), fulfillmentUsecases.ApplyVendorHolidayCommand{
		VendorID: vendorID,
		Date:     date,
		Slot:     vo.Slot(req.Slot),
		Note:     req.Note,
	})
	if err != nil {
		h.logger.Errorw("failed to apply vendor holiday", "error", err, "vendor_id", vendorID)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.CreatedResponse(c, vendorHolidayResponse{
		HolidayID:     result.HolidayID,
		OrdersSkipped: result.OrdersSkipped,
		CreditsIssued: result.CreditsIssued,
	}, "vendor holiday recorded")
}

type SlotCapacityRequest struct {
	Slot      string `json:"slot" validate:"required,oneof=breakfast lunch dinner"`
	MaxPerDay int    `json:"max_per_day" validate:"gte=0"`
}

// SetSlotCapacity handles PUT /admin/vendors/:id/capacity. max_per_day 0
// removes the limit.
func (h *AdminHandler) SetSlotCapacity(c *gin.Context) {
	vendorID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req SlotCapacityRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.capacityUseCase.Execute(c.Request.Context(), fulfillmentUsecases.SetSlotCapacityCommand{
		VendorID:  vendorID,
		Slot:      vo.Slot(req.Slot),
		MaxPerDay: req.MaxPerDay,
	}); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "capacity updated", req)
}

type UpdateSettingsRequest struct {
	Values map[string]string `json:"values" validate:"required,min=1"`
}

type platformSettingsResponse struct {
	SkipCutoffHours   int    `json:"skip_cutoff_hours_before_slot"`
	CreditExpiryDays  int    `json:"credit_expiry_days"`
	WeeklyRenewalDay  string `json:"weekly_renewal_day"`
	MonthlyRenewalDay int    `json:"monthly_renewal_day"`
	NoticeHours       int    `json:"notice_hours"`
	RefundPolicy      string `json:"refund_policy"`
	TrialDays         int    `json:"trial_days"`
}

// UpdateSettings handles PUT /admin/settings
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	cfg, err := h.settingsUseCase.Execute(c.Request.Context(), settingUsecases.UpdateSettingsCommand{Values: req.Values})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "settings updated", platformSettingsResponse{
		SkipCutoffHours:   int(cfg.SkipCutoff / time.Hour),
		CreditExpiryDays:  int(cfg.CreditExpiry / (24 * time.Hour)),
		WeeklyRenewalDay:  calendar.WeekdayCode(cfg.WeeklyRenewalDay),
		MonthlyRenewalDay: cfg.MonthlyRenewalDay,
		NoticeHours:       int(cfg.Notice / time.Hour),
		RefundPolicy:      string(cfg.RefundPolicy),
		TrialDays:         cfg.TrialDays,
	})
}

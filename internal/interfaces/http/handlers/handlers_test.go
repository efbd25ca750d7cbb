package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	fulfillmentUsecases "github.com/homechef-inc/mealsub/internal/application/fulfillment/usecases"
	subdto "github.com/homechef-inc/mealsub/internal/application/subscription/dto"
	subUsecases "github.com/homechef-inc/mealsub/internal/application/subscription/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/interfaces/http/handlers/testutil"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

const signatureHeader = "X-Gateway-Signature"

func decode(t *testing.T, raw []byte) testutil.APIResponse {
	t.Helper()
	var resp testutil.APIResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

// =====================================================================
// Payment webhook
// =====================================================================

func TestPaymentWebhook_PassesRawBodyAndSignature(t *testing.T) {
	uc := &mockWebhookUC{result: &billingUsecases.FinalizeResult{
		InvoiceSID:    "inv_1",
		Action:        billingUsecases.ActionMarkPaid,
		OrdersCreated: 3,
	}}
	h := NewPaymentWebhookHandler(uc, signatureHeader, logger.Nop())

	body := []byte(`{"event_type":"captured","payment":{"id":"pay_1"}}`)
	c, w := testutil.NewTestContext(http.MethodPost, "/webhooks/payments", body)
	c.Request.Header.Set(signatureHeader, "abc123")

	h.HandlePayment(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, uc.gotCmd.Body)
	assert.Equal(t, "abc123", uc.gotCmd.Signature)

	var data webhookResponse
	require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &data))
	assert.Equal(t, "mark_paid", data.Action)
	assert.Equal(t, 3, data.OrdersCreated)
}

func TestPaymentWebhook_ErrorStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"bad signature", apperrors.NewUnauthorizedError("invalid webhook signature"), http.StatusUnauthorized},
		{"bad payload", apperrors.NewValidationError("invalid webhook payload"), http.StatusBadRequest},
		{"storage failure asks for redelivery", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPaymentWebhookHandler(&mockWebhookUC{err: tt.err}, signatureHeader, logger.Nop())
			c, w := testutil.NewTestContext(http.MethodPost, "/webhooks/payments", []byte(`{}`))

			h.HandlePayment(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, decode(t, w.Body.Bytes()).Success)
		})
	}
}

// =====================================================================
// Checkout
// =====================================================================

func validCheckout() CheckoutRequest {
	return CheckoutRequest{
		VendorID: 7,
		Cadence:  "weekly",
		Lines: []CheckoutLineRequest{
			{Slot: "lunch", Weekdays: []string{"mon", "wed", "fri"}, UnitPrice: 10000, SkipAllowance: 2},
		},
		StartDate:     "2024-06-10",
		PaymentMethod: "upi_autopay",
	}
}

func TestCheckout_Success(t *testing.T) {
	uc := &mockCheckoutUC{result: &subUsecases.CheckoutResult{GroupID: 1, InvoiceID: "inv_1", TotalAmount: 30000}}
	h := NewCheckoutHandler(uc, logger.Nop())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/checkout", validCheckout())
	testutil.SetAuthContext(c, 42)

	h.Checkout(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uint(42), uc.gotCmd.PrincipalID)
	assert.Equal(t, calendar.PeriodWeekly, uc.gotCmd.Cadence)
	assert.Equal(t, vo.PaymentMethodUPIAutopay, uc.gotCmd.PaymentMethod)
	assert.True(t, calendar.MustDate("2024-06-10").Equal(uc.gotCmd.StartDate))
	require.Len(t, uc.gotCmd.Lines, 1)
	assert.Equal(t, calendar.MustWeekdaySet("mon", "wed", "fri"), uc.gotCmd.Lines[0].Weekdays)
	assert.Equal(t, vo.SlotLunch, uc.gotCmd.Lines[0].Slot)
}

func TestCheckout_IdempotencyKeyHeader(t *testing.T) {
	uc := &mockCheckoutUC{result: &subUsecases.CheckoutResult{GroupID: 1, InvoiceID: "inv_1", Replayed: true}}
	h := NewCheckoutHandler(uc, logger.Nop())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/checkout", validCheckout())
	c.Request.Header.Set("Idempotency-Key", "chk-7f3a")
	testutil.SetAuthContext(c, 42)

	h.Checkout(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chk-7f3a", uc.gotCmd.IdempotencyKey)
}

func TestCheckout_DefaultsStartDateToToday(t *testing.T) {
	restore := biztime.SetClock(func() time.Time { return time.Date(2024, 6, 9, 20, 0, 0, 0, time.UTC) })
	defer restore()

	uc := &mockCheckoutUC{result: &subUsecases.CheckoutResult{GroupID: 1}}
	h := NewCheckoutHandler(uc, logger.Nop())
	req := validCheckout()
	req.StartDate = ""

	c, w := testutil.NewTestContext(http.MethodPost, "/api/checkout", req)
	testutil.SetAuthContext(c, 42)
	h.Checkout(c)

	require.Equal(t, http.StatusCreated, w.Code)
	// 20:00 UTC is already the next day in Kolkata.
	assert.True(t, calendar.MustDate("2024-06-10").Equal(uc.gotCmd.StartDate))
}

func TestCheckout_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CheckoutRequest)
	}{
		{"unknown weekday", func(r *CheckoutRequest) { r.Lines[0].Weekdays = []string{"mon", "xyz"} }},
		{"no lines", func(r *CheckoutRequest) { r.Lines = nil }},
		{"bad cadence", func(r *CheckoutRequest) { r.Cadence = "daily" }},
		{"bad slot", func(r *CheckoutRequest) { r.Lines[0].Slot = "brunch" }},
		{"bad start date", func(r *CheckoutRequest) { r.StartDate = "10-06-2024" }},
		{"zero price", func(r *CheckoutRequest) { r.Lines[0].UnitPrice = 0 }},
		{"bad payment method", func(r *CheckoutRequest) { r.PaymentMethod = "cash" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockCheckoutUC{}
			h := NewCheckoutHandler(uc, logger.Nop())
			req := validCheckout()
			tt.mutate(&req)

			c, w := testutil.NewTestContext(http.MethodPost, "/api/checkout", req)
			testutil.SetAuthContext(c, 42)
			h.Checkout(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, uc.called)
		})
	}
}

func TestCheckout_Unauthenticated(t *testing.T) {
	uc := &mockCheckoutUC{}
	h := NewCheckoutHandler(uc, logger.Nop())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/checkout", validCheckout())
	h.Checkout(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, uc.called)
}

func TestCheckout_MalformedJSON(t *testing.T) {
	h := NewCheckoutHandler(&mockCheckoutUC{}, logger.Nop())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/checkout", []byte(`{"vendor_id":`))
	testutil.SetAuthContext(c, 42)
	h.Checkout(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =====================================================================
// Group reads and transitions
// =====================================================================

func newGroupHandler() (*GroupHandler, *mockGetGroupUC, *mockPauseUC, *mockResumeUC, *mockCancelUC) {
	get := &mockGetGroupUC{
		group:   &subdto.GroupDTO{ID: 5, Status: "active"},
		credits: &subdto.CreditListDTO{GroupID: 5, Balance: 5000, Currency: "INR"},
	}
	pause := &mockPauseUC{}
	resume := &mockResumeUC{}
	cancel := &mockCancelUC{}
	return NewGroupHandler(get, pause, resume, cancel, logger.Nop()), get, pause, resume, cancel
}

func TestGroup_Get(t *testing.T) {
	h, get, _, _, _ := newGroupHandler()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/groups/5", nil)
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "5")
	h.Get(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, subUsecases.GetGroupQuery{PrincipalID: 42, GroupID: 5}, get.gotQuery)
}

func TestGroup_GetForeignGroupIsNotFound(t *testing.T) {
	h, get, _, _, _ := newGroupHandler()
	get.err = apperrors.NewNotFoundError("subscription group not found")

	c, w := testutil.NewTestContext(http.MethodGet, "/api/groups/5", nil)
	testutil.SetAuthContext(c, 99)
	testutil.SetURLParam(c, "id", "5")
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroup_InvalidID(t *testing.T) {
	h, _, _, _, _ := newGroupHandler()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/groups/abc", nil)
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "abc")
	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGroup_ListCredits(t *testing.T) {
	h, _, _, _, _ := newGroupHandler()

	c, w := testutil.NewTestContext(http.MethodGet, "/api/groups/5/credits", nil)
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "5")
	h.ListCredits(c)

	require.Equal(t, http.StatusOK, w.Code)
	var data subdto.CreditListDTO
	require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &data))
	assert.Equal(t, int64(5000), data.Balance)
}

func TestGroup_PausePreviewAndConfirm(t *testing.T) {
	h, _, pause, _, _ := newGroupHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/groups/5/pause/preview", PauseRequest{PauseDate: "2024-06-12"})
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "5")
	h.PreviewPause(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, pause.confirmed)
	assert.True(t, calendar.MustDate("2024-06-12").Equal(pause.gotCmd.PauseDate))
	assert.Equal(t, uint(5), pause.gotCmd.GroupID)

	c, w = testutil.NewTestContext(http.MethodPost, "/api/groups/5/pause", PauseRequest{PauseDate: "2024-06-12"})
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "5")
	h.ConfirmPause(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, pause.confirmed)
}

func TestGroup_PauseWithoutBodyUsesToday(t *testing.T) {
	restore := biztime.SetClock(func() time.Time { return time.Date(2024, 6, 11, 4, 0, 0, 0, time.UTC) })
	defer restore()
	h, _, pause, _, _ := newGroupHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/groups/5/pause/preview", nil)
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "5")
	h.PreviewPause(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, calendar.MustDate("2024-06-11").Equal(pause.gotCmd.PauseDate))
}

func TestGroup_PauseValidationErrorFromUseCase(t *testing.T) {
	h, _, pause, _, _ := newGroupHandler()
	pause.err = apperrors.NewValidationError("pause date is past the notice window")

	c, w := testutil.NewTestContext(http.MethodPost, "/api/groups/5/pause", PauseRequest{PauseDate: "2024-06-10"})
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "5")
	h.ConfirmPause(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "pause date is past the notice window", decode(t, w.Body.Bytes()).Error.Message)
}

func TestGroup_Resume(t *testing.T) {
	h, _, _, resume, _ := newGroupHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/api/groups/5/resume/preview", ResumeRequest{ResumeDate: "2024-06-19"})
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "5")
	h.PreviewResume(c)

	require.Equal(t, http.StatusOK, w.Code)
	var preview subUsecases.ResumePreview
	require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &preview))
	assert.Equal(t, subUsecases.ScenarioSameCycle, preview.Scenario)

	c, w = testutil.NewTestContext(http.MethodPost, "/api/groups/5/resume", ResumeRequest{ResumeDate: "2024-06-19"})
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "5")
	h.ConfirmResume(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, calendar.MustDate("2024-06-19").Equal(resume.gotCmd.ResumeDate))
}

func TestGroup_Cancel(t *testing.T) {
	h, _, _, _, cancel := newGroupHandler()

	req := CancelRequest{CancelDate: "2024-06-12", Reason: "moving", RefundPreference: "credit", Confirm: true}
	c, w := testutil.NewTestContext(http.MethodPost, "/api/groups/5/cancel", req)
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "5")
	h.ConfirmCancel(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, cancel.gotCmd.Confirm)
	assert.Equal(t, "moving", cancel.gotCmd.Reason)
	assert.Equal(t, setting.SettlementCredit, cancel.gotCmd.RefundPreference)
}

func TestGroup_CancelRejectsUnknownPreference(t *testing.T) {
	h, _, _, _, _ := newGroupHandler()

	req := CancelRequest{Reason: "moving", RefundPreference: "cash", Confirm: true}
	c, w := testutil.NewTestContext(http.MethodPost, "/api/groups/5/cancel/preview", req)
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "5")
	h.PreviewCancel(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =====================================================================
// Orders
// =====================================================================

func TestOrder_Skip(t *testing.T) {
	uc := &mockSkipOrderUC{result: &fulfillmentUsecases.SkipOrderResult{OrderID: 9, CreditID: 3, CreditAmount: 10000, SkipsRemaining: 1}}
	h := NewOrderHandler(uc, logger.Nop())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/orders/9/skip", nil)
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "9")
	h.Skip(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fulfillmentUsecases.SkipOrderCommand{PrincipalID: 42, OrderID: 9}, uc.gotCmd)

	var data skipOrderResponse
	require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &data))
	assert.Equal(t, 1, data.SkipsRemaining)
}

func TestOrder_SkipPastCutoff(t *testing.T) {
	uc := &mockSkipOrderUC{err: apperrors.NewValidationError("skip cutoff has passed")}
	h := NewOrderHandler(uc, logger.Nop())

	c, w := testutil.NewTestContext(http.MethodPost, "/api/orders/9/skip", nil)
	testutil.SetAuthContext(c, 42)
	testutil.SetURLParam(c, "id", "9")
	h.Skip(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =====================================================================
// Admin
// =====================================================================

func newAdminHandler() (*AdminHandler, *mockRunRenewalsUC, *mockHolidayUC, *mockCapacityUC, *mockSettingsUC) {
	renewals := &mockRunRenewalsUC{result: &billingUsecases.RunRenewalsResult{
		Count:   1,
		Horizon: calendar.MustDate("2024-06-17"),
		Invoices: []billingUsecases.RenewedInvoice{
			{GroupID: 1, InvoiceSID: "inv_1", Subtotal: 30000, CreditsApplied: 5000, Total: 25000},
		},
		Errors: []billingUsecases.RenewalError{{GroupID: 2, Err: errors.New("gateway unavailable")}},
	}}
	holiday := &mockHolidayUC{result: &fulfillmentUsecases.ApplyVendorHolidayResult{HolidayID: 4, OrdersSkipped: 2, CreditsIssued: 2}}
	capacity := &mockCapacityUC{}
	settings := &mockSettingsUC{}
	return NewAdminHandler(renewals, holiday, capacity, settings, logger.Nop()), renewals, holiday, capacity, settings
}

func TestAdmin_RunRenewals(t *testing.T) {
	h, renewals, _, _, _ := newAdminHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/renewals/run", RunRenewalsRequest{Period: "weekly", Date: "2024-06-14"})
	h.RunRenewals(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, calendar.PeriodWeekly, renewals.gotCmd.Period)
	assert.True(t, calendar.MustDate("2024-06-14").Equal(renewals.gotCmd.Date))

	var data runRenewalsResponse
	require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &data))
	assert.Equal(t, 1, data.Count)
	require.Len(t, data.Errors, 1)
	assert.Equal(t, "gateway unavailable", data.Errors[0].Reason)
	assert.Empty(t, data.Skipped)
}

func TestAdmin_RunRenewalsRequiresPeriod(t *testing.T) {
	h, _, _, _, _ := newAdminHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/renewals/run", RunRenewalsRequest{})
	h.RunRenewals(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin_AddVendorHoliday(t *testing.T) {
	h, _, holiday, _, _ := newAdminHandler()

	c, w := testutil.NewTestContext(http.MethodPost, "/admin/vendors/7/holidays", VendorHolidayRequest{Date: "2024-06-12", Slot: "lunch", Note: "Eid"})
	testutil.SetURLParam(c, "id", "7")
	h.AddVendorHoliday(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uint(7), holiday.gotCmd.VendorID)
	assert.Equal(t, vo.SlotLunch, holiday.gotCmd.Slot)
	assert.True(t, calendar.MustDate("2024-06-12").Equal(holiday.gotCmd.Date))
}

func TestAdmin_SetSlotCapacity(t *testing.T) {
	h, _, _, capacity, _ := newAdminHandler()

	c, w := testutil.NewTestContext(http.MethodPut, "/admin/vendors/7/capacity", SlotCapacityRequest{Slot: "dinner", MaxPerDay: 40})
	testutil.SetURLParam(c, "id", "7")
	h.SetSlotCapacity(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fulfillmentUsecases.SetSlotCapacityCommand{VendorID: 7, Slot: vo.SlotDinner, MaxPerDay: 40}, capacity.gotCmd)
}

func TestAdmin_UpdateSettings(t *testing.T) {
	h, _, _, _, settings := newAdminHandler()
	settings.result = setting.PlatformConfig{
		SkipCutoff:        12 * time.Hour,
		CreditExpiry:      30 * 24 * time.Hour,
		WeeklyRenewalDay:  time.Thursday,
		MonthlyRenewalDay: 20,
		Notice:            48 * time.Hour,
		RefundPolicy:      setting.RefundPolicyCustomerChoice,
		TrialDays:         3,
	}

	values := map[string]string{"weekly_renewal_day": "thu"}
	c, w := testutil.NewTestContext(http.MethodPut, "/admin/settings", UpdateSettingsRequest{Values: values})
	h.UpdateSettings(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, values, settings.gotCmd.Values)

	var data platformSettingsResponse
	require.NoError(t, json.Unmarshal(decode(t, w.Body.Bytes()).Data, &data))
	assert.Equal(t, "thu", data.WeeklyRenewalDay)
	assert.Equal(t, 30, data.CreditExpiryDays)
	assert.Equal(t, 48, data.NoticeHours)
}

package handlers

import (
	"context"
	"os"
	"testing"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	fulfillmentUsecases "github.com/homechef-inc/mealsub/internal/application/fulfillment/usecases"
	settingUsecases "github.com/homechef-inc/mealsub/internal/application/setting/usecases"
	subdto "github.com/homechef-inc/mealsub/internal/application/subscription/dto"
	subUsecases "github.com/homechef-inc/mealsub/internal/application/subscription/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
)

func TestMain(m *testing.M) {
	biztime.MustInit(biztime.DefaultTimezone)
	os.Exit(m.Run())
}

// =====================================================================
// Mock use cases
// =====================================================================

type mockWebhookUC struct {
	gotCmd billingUsecases.HandlePaymentWebhookCommand
	result *billingUsecases.FinalizeResult
	err    error
}

func (m *mockWebhookUC) Execute(ctx context.Context, cmd billingUsecases.HandlePaymentWebhookCommand) (*billingUsecases.FinalizeResult, error) {
	m.gotCmd = cmd
	return m.result, m.err
}

type mockCheckoutUC struct {
	gotCmd subUsecases.CheckoutCommand
	called bool
	result *subUsecases.CheckoutResult
	err    error
}

func (m *mockCheckoutUC) Execute(ctx context.Context, cmd subUsecases.CheckoutCommand) (*subUsecases.CheckoutResult, error) {
	m.called = true
	m.gotCmd = cmd
	return m.result, m.err
}

type mockGetGroupUC struct {
	gotQuery subUsecases.GetGroupQuery
	group    *subdto.GroupDTO
	credits  *subdto.CreditListDTO
	err      error
}

func (m *mockGetGroupUC) Execute(ctx context.Context, query subUsecases.GetGroupQuery) (*subdto.GroupDTO, error) {
	m.gotQuery = query
	return m.group, m.err
}

func (m *mockGetGroupUC) ListCredits(ctx context.Context, query subUsecases.GetGroupQuery) (*subdto.CreditListDTO, error) {
	m.gotQuery = query
	return m.credits, m.err
}

type mockPauseUC struct {
	gotCmd    subUsecases.PauseCommand
	confirmed bool
	err       error
}

func (m *mockPauseUC) Preview(ctx context.Context, cmd subUsecases.PauseCommand) (*subUsecases.PausePreview, error) {
	m.gotCmd = cmd
	if m.err != nil {
		return nil, m.err
	}
	return &subUsecases.PausePreview{GroupID: cmd.GroupID, PauseDate: cmd.PauseDate, CreditTotal: 20000}, nil
}

func (m *mockPauseUC) Confirm(ctx context.Context, cmd subUsecases.PauseCommand) (*subUsecases.PauseResult, error) {
	m.gotCmd = cmd
	m.confirmed = true
	if m.err != nil {
		return nil, m.err
	}
	return &subUsecases.PauseResult{PausePreview: subUsecases.PausePreview{GroupID: cmd.GroupID}, CreditIDs: []uint{1, 2}}, nil
}

type mockResumeUC struct {
	gotCmd subUsecases.ResumeCommand
	err    error
}

func (m *mockResumeUC) Preview(ctx context.Context, cmd subUsecases.ResumeCommand) (*subUsecases.ResumePreview, error) {
	m.gotCmd = cmd
	if m.err != nil {
		return nil, m.err
	}
	return &subUsecases.ResumePreview{GroupID: cmd.GroupID, ResumeDate: cmd.ResumeDate, Scenario: subUsecases.ScenarioSameCycle}, nil
}

func (m *mockResumeUC) Confirm(ctx context.Context, cmd subUsecases.ResumeCommand) (*subUsecases.ResumeResult, error) {
	m.gotCmd = cmd
	if m.err != nil {
		return nil, m.err
	}
	return &subUsecases.ResumeResult{Reinstated: 2}, nil
}

type mockCancelUC struct {
	gotCmd subUsecases.CancelCommand
	err    error
}

func (m *mockCancelUC) Preview(ctx context.Context, cmd subUsecases.CancelCommand) (*subUsecases.CancelPreview, error) {
	m.gotCmd = cmd
	if m.err != nil {
		return nil, m.err
	}
	return &subUsecases.CancelPreview{GroupID: cmd.GroupID, Offered: []setting.Settlement{setting.SettlementCredit}}, nil
}

func (m *mockCancelUC) Confirm(ctx context.Context, cmd subUsecases.CancelCommand) (*subUsecases.CancelResult, error) {
	m.gotCmd = cmd
	if m.err != nil {
		return nil, m.err
	}
	return &subUsecases.CancelResult{}, nil
}

type mockSkipOrderUC struct {
	gotCmd fulfillmentUsecases.SkipOrderCommand
	result *fulfillmentUsecases.SkipOrderResult
	err    error
}

func (m *mockSkipOrderUC) Execute(ctx context.Context, cmd fulfillmentUsecases.SkipOrderCommand) (*fulfillmentUsecases.SkipOrderResult, error) {
	m.gotCmd = cmd
	return m.result, m.err
}

type mockRunRenewalsUC struct {
	gotCmd billingUsecases.RunRenewalsCommand
	result *billingUsecases.RunRenewalsResult
	err    error
}

func (m *mockRunRenewalsUC) Execute(ctx context.Context, cmd billingUsecases.RunRenewalsCommand) (*billingUsecases.RunRenewalsResult, error) {
	m.gotCmd = cmd
	return m.result, m.err
}

type mockHolidayUC struct {
	gotCmd fulfillmentUsecases.ApplyVendorHolidayCommand
	result *fulfillmentUsecases.ApplyVendorHolidayResult
	err    error
}

func (m *mockHolidayUC) Execute(ctx context.Context, cmd fulfillmentUsecases.ApplyVendorHolidayCommand) (*fulfillmentUsecases.ApplyVendorHolidayResult, error) {
	m.gotCmd = cmd
	return m.result, m.err
}

type mockCapacityUC struct {
	gotCmd fulfillmentUsecases.SetSlotCapacityCommand
	err    error
}

func (m *mockCapacityUC) Execute(ctx context.Context, cmd fulfillmentUsecases.SetSlotCapacityCommand) error {
	m.gotCmd = cmd
	return m.err
}

type mockSettingsUC struct {
	gotCmd settingUsecases.UpdateSettingsCommand
	result setting.PlatformConfig
	err    error
}

func (m *mockSettingsUC) Execute(ctx context.Context, cmd settingUsecases.UpdateSettingsCommand) (setting.PlatformConfig, error) {
	m.gotCmd = cmd
	return m.result, m.err
}

package handlers

import (
	"context"

	billingUsecases "github.com/homechef-inc/mealsub/internal/application/billing/usecases"
	fulfillmentUsecases "github.com/homechef-inc/mealsub/internal/application/fulfillment/usecases"
	settingUsecases "github.com/homechef-inc/mealsub/internal/application/setting/usecases"
	subdto "github.com/homechef-inc/mealsub/internal/application/subscription/dto"
	subUsecases "github.com/homechef-inc/mealsub/internal/application/subscription/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
)

// Use case interfaces let handlers be tested against hand mocks.

type webhookUseCase interface {
	Execute(ctx context.Context, cmd billingUsecases.HandlePaymentWebhookCommand) (*billingUsecases.FinalizeResult, error)
}

type checkoutUseCase interface {
	Execute(ctx context.Context, cmd subUsecases.CheckoutCommand) (*subUsecases.CheckoutResult, error)
}

type getGroupUseCase interface {
	Execute(ctx context.Context, query subUsecases.GetGroupQuery) (*subdto.GroupDTO, error)
	ListCredits(ctx context.Context, query subUsecases.GetGroupQuery) (*subdto.CreditListDTO, error)
}

type pauseUseCase interface {
	Preview(ctx context.Context, cmd subUsecases.PauseCommand) (*subUsecases.PausePreview, error)
	Confirm(ctx context.Context, cmd subUsecases.PauseCommand) (*subUsecases.PauseResult, error)
}

type resumeUseCase interface {
	Preview(ctx context.Context, cmd subUsecases.ResumeCommand) (*subUsecases.ResumePreview, error)
	Confirm(ctx context.Context, cmd subUsecases.ResumeCommand) (*subUsecases.ResumeResult, error)
}

type cancelUseCase interface {
	Preview(ctx context.Context, cmd subUsecases.CancelCommand) (*subUsecases.CancelPreview, error)
	Confirm(ctx context.Context, cmd subUsecases.CancelCommand) (*subUsecases.CancelResult, error)
}

type skipOrderUseCase interface {
	Execute(ctx context.Context, cmd fulfillmentUsecases.SkipOrderCommand) (*fulfillmentUsecases.SkipOrderResult, error)
}

type runRenewalsUseCase interface {
	Execute(ctx context.Context, cmd billingUsecases.RunRenewalsCommand) (*billingUsecases.RunRenewalsResult, error)
}

type vendorHolidayUseCase interface {
	Execute(ctx context.Context, cmd fulfillmentUsecases.ApplyVendorHolidayCommand) (*fulfillmentUsecases.ApplyVendorHolidayResult, error)
}

type slotCapacityUseCase interface {
	Execute(ctx context.Context, cmd fulfillmentUsecases.SetSlotCapacityCommand) error
}

type updateSettingsUseCase interface {
	Execute(ctx context.Context, cmd settingUsecases.UpdateSettingsCommand) (setting.PlatformConfig, error)
}

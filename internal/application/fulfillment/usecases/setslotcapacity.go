package usecases

import (
	"context"

	"github.com/homechef-inc/mealsub/internal/domain/order"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type SetSlotCapacityCommand struct {
	VendorID  uint
	Slot      vo.Slot
	MaxPerDay int
}

// SetSlotCapacityUseCase configures a vendor's daily limit for a slot.
// Seats already handed out are kept; the new limit applies to later claims.
type SetSlotCapacityUseCase struct {
	capacityRepo order.CapacityRepository
	logger       logger.Interface
}

func NewSetSlotCapacityUseCase(capacityRepo order.CapacityRepository, logger logger.Interface) *SetSlotCapacityUseCase {
	return &SetSlotCapacityUseCase{
		capacityRepo: capacityRepo,
		logger:       logger,
	}
}

func (uc *SetSlotCapacityUseCase) Execute(ctx context.Context, cmd SetSlotCapacityCommand) error {
	if cmd.VendorID == 0 {
		return apperrors.NewValidationError("vendor is required")
	}
	if !cmd.Slot.IsValid() {
		return apperrors.NewValidationError("invalid meal slot", cmd.Slot.String())
	}
	if cmd.MaxPerDay < 0 {
		return apperrors.NewValidationError("max per day cannot be negative")
	}

	if err := uc.capacityRepo.UpsertSlotCapacity(ctx, order.SlotCapacity{
		VendorID:  cmd.VendorID,
		Slot:      cmd.Slot,
		MaxPerDay: cmd.MaxPerDay,
	}); err != nil {
		return err
	}

	uc.logger.Infow("slot capacity updated",
		"vendor_id", cmd.VendorID,
		"slot", cmd.Slot,
		"max_per_day", cmd.MaxPerDay,
	)
	return nil
}

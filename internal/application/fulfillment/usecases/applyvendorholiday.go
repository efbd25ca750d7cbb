package usecases

import (
	"context"
	"fmt"
	"time"

	creditUsecases "github.com/homechef-inc/mealsub/internal/application/credit/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/order"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type ApplyVendorHolidayCommand struct {
	VendorID uint
	Date     time.Time // civil date
	// Slot limits the holiday to one slot; empty closes the whole day.
	Slot vo.Slot
	Note string
}

type ApplyVendorHolidayResult struct {
	HolidayID     uint
	OrdersSkipped int
	CreditsIssued int
}

// ApplyVendorHolidayUseCase records a vendor closure and moves the affected
// scheduled orders to skipped_by_vendor, crediting each one.
type ApplyVendorHolidayUseCase struct {
	holidayRepo order.HolidayRepository
	orderRepo   order.Repository
	capacity    *CapacityChecker
	ledger      *creditUsecases.Ledger
	settings    setting.PlatformConfigProvider
	txMgr       *db.TransactionManager
	logger      logger.Interface
}

func NewApplyVendorHolidayUseCase(
	holidayRepo order.HolidayRepository,
	orderRepo order.Repository,
	capacity *CapacityChecker,
	ledger *creditUsecases.Ledger,
	settings setting.PlatformConfigProvider,
	txMgr *db.TransactionManager,
	logger logger.Interface,
) *ApplyVendorHolidayUseCase {
	return &ApplyVendorHolidayUseCase{
		holidayRepo: holidayRepo,
		orderRepo:   orderRepo,
		capacity:    capacity,
		ledger:      ledger,
		settings:    settings,
		txMgr:       txMgr,
		logger:      logger,
	}
}

func (uc *ApplyVendorHolidayUseCase) Execute(ctx context.Context, cmd ApplyVendorHolidayCommand) (*ApplyVendorHolidayResult, error) {
	if cmd.VendorID == 0 {
		return nil, apperrors.NewValidationError("vendor is required")
	}
	if cmd.Slot != "" && !cmd.Slot.IsValid() {
		return nil, apperrors.NewValidationError("invalid meal slot", cmd.Slot.String())
	}

	cfg, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	holiday := &order.Holiday{
		VendorID: cmd.VendorID,
		Date:     cmd.Date,
		Slot:     cmd.Slot,
		Note:     cmd.Note,
	}
	result := &ApplyVendorHolidayResult{}

	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.holidayRepo.Create(txCtx, holiday); err != nil {
			return err
		}
		result.HolidayID = holiday.ID

		affected, err := uc.orderRepo.ListByVendorDate(txCtx, cmd.VendorID, holiday.Date, cmd.Slot, order.StatusScheduled)
		if err != nil {
			return err
		}

		now := biztime.NowUTC()
		for _, o := range affected {
			if err := o.SkipByVendor(); err != nil {
				return fmt.Errorf("order %d: %w", o.ID(), err)
			}
			if err := uc.orderRepo.Update(txCtx, o); err != nil {
				return err
			}
			if err := uc.capacity.Release(txCtx, o.ID()); err != nil {
				return err
			}
			result.OrdersSkipped++

			orderID := o.ID()
			if _, err := uc.ledger.Issue(txCtx, creditUsecases.IssueCommand{
				GroupID:        o.GroupID(),
				SubscriptionID: o.SubscriptionID(),
				Amount:         o.UnitPrice(),
				Reason:         credit.ReasonHolidaySkip,
				ExpiresAt:      cfg.CreditExpiryFrom(now),
				SourceOrderID:  &orderID,
			}); err != nil {
				return err
			}
			result.CreditsIssued++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("vendor holiday applied",
		"vendor_id", cmd.VendorID,
		"date", biztime.FormatDate(holiday.Date),
		"slot", cmd.Slot,
		"orders_skipped", result.OrdersSkipped,
	)
	return result, nil
}

package usecases

import (
	"context"
	"errors"
	"fmt"

	creditUsecases "github.com/homechef-inc/mealsub/internal/application/credit/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/order"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type SkipOrderCommand struct {
	PrincipalID uint
	OrderID     uint
}

type SkipOrderResult struct {
	OrderID        uint
	CreditID       uint
	CreditAmount   int64
	SkipsRemaining int
}

// SkipOrderUseCase lets a consumer skip one scheduled meal before the
// cutoff, within the line's skip allowance. The meal's price comes back as
// a credit.
type SkipOrderUseCase struct {
	subRepo   subscription.SubscriptionRepository
	groupRepo subscription.GroupRepository
	orders    order.Repository
	capacity  *CapacityChecker
	ledger    *creditUsecases.Ledger
	settings  setting.PlatformConfigProvider
	txMgr     *db.TransactionManager
	logger    logger.Interface
}

func NewSkipOrderUseCase(
	subRepo subscription.SubscriptionRepository,
	groupRepo subscription.GroupRepository,
	orders order.Repository,
	capacity *CapacityChecker,
	ledger *creditUsecases.Ledger,
	settings setting.PlatformConfigProvider,
	txMgr *db.TransactionManager,
	logger logger.Interface,
) *SkipOrderUseCase {
	return &SkipOrderUseCase{
		subRepo:   subRepo,
		groupRepo: groupRepo,
		orders:    orders,
		capacity:  capacity,
		ledger:    ledger,
		settings:  settings,
		txMgr:     txMgr,
		logger:    logger,
	}
}

func (uc *SkipOrderUseCase) Execute(ctx context.Context, cmd SkipOrderCommand) (*SkipOrderResult, error) {
	cfg, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	var result *SkipOrderResult
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		o, err := uc.orders.GetByID(txCtx, cmd.OrderID)
		if err != nil {
			if errors.Is(err, order.ErrOrderNotFound) {
				return apperrors.NewNotFoundError("order not found")
			}
			return err
		}

		group, err := uc.groupRepo.GetByID(txCtx, o.GroupID())
		if err != nil {
			return err
		}
		if !group.IsOwnedBy(cmd.PrincipalID) {
			return apperrors.NewNotFoundError("order not found")
		}

		line, err := uc.subRepo.GetByID(txCtx, o.SubscriptionID())
		if err != nil {
			return err
		}

		now := biztime.NowUTC()
		if err := o.SkipByCustomer(now, cfg.SkipCutoff); err != nil {
			switch {
			case errors.Is(err, order.ErrSkipCutoffPassed):
				return apperrors.NewValidationError("skip cutoff has passed for this order")
			case errors.Is(err, order.ErrInvalidTransition):
				return apperrors.NewValidationError("only scheduled orders can be skipped", string(o.Status()))
			}
			return err
		}
		if err := line.UseSkip(); err != nil {
			if errors.Is(err, subscription.ErrNoSkipsLeft) {
				return apperrors.NewValidationError("no skips left for this cycle")
			}
			return err
		}

		if err := uc.orders.Update(txCtx, o); err != nil {
			return err
		}
		if err := uc.capacity.Release(txCtx, o.ID()); err != nil {
			return err
		}
		if err := uc.subRepo.Update(txCtx, line); err != nil {
			return err
		}

		orderID := o.ID()
		c, err := uc.ledger.Issue(txCtx, creditUsecases.IssueCommand{
			GroupID:        group.ID(),
			SubscriptionID: line.ID(),
			Amount:         o.UnitPrice(),
			Reason:         credit.ReasonCustomerSkip,
			ExpiresAt:      cfg.CreditExpiryFrom(now),
			SourceOrderID:  &orderID,
		})
		if err != nil {
			return fmt.Errorf("failed to issue skip credit: %w", err)
		}

		result = &SkipOrderResult{
			OrderID:        o.ID(),
			CreditID:       c.ID(),
			CreditAmount:   c.Amount().Minor(),
			SkipsRemaining: line.SkipAllowance() - line.SkipsUsed(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("order skipped by customer",
		"order_id", result.OrderID,
		"credit_id", result.CreditID,
	)
	return result, nil
}

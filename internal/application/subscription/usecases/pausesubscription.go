package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	creditUsecases "github.com/homechef-inc/mealsub/internal/application/credit/usecases"
	fulfillmentUsecases "github.com/homechef-inc/mealsub/internal/application/fulfillment/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/order"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type PauseCommand struct {
	PrincipalID uint
	GroupID     uint
	PauseDate   time.Time
}

// AffectedOrder is an order a transition cancels or reinstates.
type AffectedOrder struct {
	OrderID     uint      `json:"order_id"`
	ServiceDate time.Time `json:"service_date"`
	Slot        string    `json:"slot"`
	Amount      int64     `json:"amount"`
}

type PausePreview struct {
	GroupID         uint            `json:"group_id"`
	PauseDate       time.Time       `json:"pause_date"`
	CycleID         uint            `json:"cycle_id"`
	CycleEnd        time.Time       `json:"cycle_end"`
	Orders          []AffectedOrder `json:"orders"`
	CreditTotal     int64           `json:"credit_total"`
	Currency        string          `json:"currency"`
	CreditExpiresAt time.Time       `json:"credit_expires_at"`
	AlreadyPaused   bool            `json:"already_paused"`
}

type PauseResult struct {
	PausePreview
	CreditIDs []uint `json:"credit_ids"`
}

// PauseSubscriptionUseCase stops deliveries from a date on. Each cancelled
// order is returned to the consumer as a credit.
type PauseSubscriptionUseCase struct {
	groupRepo subscription.GroupRepository
	subRepo   subscription.SubscriptionRepository
	cycleRepo subscription.CycleRepository
	orderRepo order.Repository
	capacity  *fulfillmentUsecases.CapacityChecker
	ledger    *creditUsecases.Ledger
	settings  setting.PlatformConfigProvider
	txMgr     *db.TransactionManager
	logger    logger.Interface
}

func NewPauseSubscriptionUseCase(
	groupRepo subscription.GroupRepository,
	subRepo subscription.SubscriptionRepository,
	cycleRepo subscription.CycleRepository,
	orderRepo order.Repository,
	capacity *fulfillmentUsecases.CapacityChecker,
	ledger *creditUsecases.Ledger,
	settings setting.PlatformConfigProvider,
	txMgr *db.TransactionManager,
	logger logger.Interface,
) *PauseSubscriptionUseCase {
	return &PauseSubscriptionUseCase{
		groupRepo: groupRepo,
		subRepo:   subRepo,
		cycleRepo: cycleRepo,
		orderRepo: orderRepo,
		capacity:  capacity,
		ledger:    ledger,
		settings:  settings,
		txMgr:     txMgr,
		logger:    logger,
	}
}

type pausePlan struct {
	group   *subscription.Group
	cycle   *subscription.Cycle
	orders  []*order.Order
	preview *PausePreview
}

func (uc *PauseSubscriptionUseCase) plan(ctx context.Context, cmd PauseCommand, cfg setting.PlatformConfig, now time.Time) (*pausePlan, error) {
	group, err := loadOwnedGroup(ctx, uc.groupRepo, cmd.GroupID, cmd.PrincipalID)
	if err != nil {
		return nil, err
	}

	preview := &PausePreview{
		GroupID:   group.ID(),
		PauseDate: cmd.PauseDate,
		Currency:  group.Currency(),
		Orders:    []AffectedOrder{},
	}

	switch {
	case group.IsCancelled():
		return nil, apperrors.NewValidationError("subscription group is cancelled")
	case group.IsPaused():
		if group.PausedFrom() != nil && group.PausedFrom().Equal(cmd.PauseDate) {
			preview.AlreadyPaused = true
			if group.PausedCycleID() != nil {
				preview.CycleID = *group.PausedCycleID()
			}
			return &pausePlan{group: group, preview: preview}, nil
		}
		return nil, apperrors.NewValidationError("subscription group is already paused")
	}

	if err := requireNotice(cfg, cmd.PauseDate, now); err != nil {
		return nil, err
	}

	cycle, err := uc.cycleRepo.GetContaining(ctx, group.ID(), cmd.PauseDate)
	if err != nil {
		if errors.Is(err, subscription.ErrCycleNotFound) {
			return nil, apperrors.NewValidationError("pause date is outside the current cycle")
		}
		return nil, err
	}
	preview.CycleID = cycle.ID()
	preview.CycleEnd = cycle.Range().LastDay()

	// Orders of a cycle billed ahead are included so nothing is delivered
	// while paused.
	orders, err := uc.orderRepo.ListByGroupInRange(ctx, group.ID(), cmd.PauseDate, farFuture, order.StatusScheduled)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		preview.Orders = append(preview.Orders, AffectedOrder{
			OrderID:     o.ID(),
			ServiceDate: o.ServiceDate(),
			Slot:        o.Slot().String(),
			Amount:      o.UnitPrice().Minor(),
		})
		preview.CreditTotal += o.UnitPrice().Minor()
	}
	preview.CreditExpiresAt = cfg.CreditExpiryFrom(now)

	return &pausePlan{group: group, cycle: cycle, orders: orders, preview: preview}, nil
}

func (uc *PauseSubscriptionUseCase) Preview(ctx context.Context, cmd PauseCommand) (*PausePreview, error) {
	cfg, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	p, err := uc.plan(ctx, cmd, cfg, biztime.NowUTC())
	if err != nil {
		return nil, err
	}
	return p.preview, nil
}

func (uc *PauseSubscriptionUseCase) Confirm(ctx context.Context, cmd PauseCommand) (*PauseResult, error) {
	cfg, err := uc.settings.Load(ctx)
	if err != nil {
		return nil, err
	}

	var result *PauseResult
	err = uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		p, err := uc.plan(txCtx, cmd, cfg, biztime.NowUTC())
		if err != nil {
			return err
		}
		result = &PauseResult{PausePreview: *p.preview, CreditIDs: []uint{}}
		if p.preview.AlreadyPaused {
			return nil
		}

		for _, o := range p.orders {
			if err := o.Cancel(order.CancelSourcePause); err != nil {
				return fmt.Errorf("order %d: %w", o.ID(), err)
			}
			if err := uc.orderRepo.Update(txCtx, o); err != nil {
				return err
			}
			if err := uc.capacity.Release(txCtx, o.ID()); err != nil {
				return err
			}

			orderID := o.ID()
			c, err := uc.ledger.Issue(txCtx, creditUsecases.IssueCommand{
				GroupID:        p.group.ID(),
				SubscriptionID: o.SubscriptionID(),
				Amount:         o.UnitPrice(),
				Reason:         credit.ReasonPause,
				ExpiresAt:      p.preview.CreditExpiresAt,
				SourceOrderID:  &orderID,
			})
			if err != nil {
				return err
			}
			result.CreditIDs = append(result.CreditIDs, c.ID())
		}

		if err := p.group.Pause(cmd.PauseDate, p.cycle.ID()); err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := saveGroup(txCtx, uc.groupRepo, p.group); err != nil {
			return err
		}
		return uc.subRepo.MirrorGroupStatus(txCtx, p.group)
	})
	if err != nil {
		return nil, err
	}

	if result.AlreadyPaused {
		uc.logger.Infow("pause already confirmed", "group_id", cmd.GroupID)
		return result, nil
	}

	uc.logger.Infow("subscription group paused",
		"group_id", cmd.GroupID,
		"pause_date", biztime.FormatDate(cmd.PauseDate),
		"orders_cancelled", len(result.Orders),
		"credits_issued", len(result.CreditIDs),
	)
	return result, nil
}

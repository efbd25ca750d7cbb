package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	creditUsecases "github.com/homechef-inc/mealsub/internal/application/credit/usecases"
	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/order"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

type SkipReason string

const (
	SkipReasonExists   SkipReason = "order_exists"
	SkipReasonHoliday  SkipReason = "vendor_holiday"
	SkipReasonCapacity SkipReason = "capacity_exhausted"
	SkipReasonPaused   SkipReason = "group_paused"
)

type SkippedDate struct {
	Date   time.Time
	Reason SkipReason
}

// SubscriptionOutcome is what generation did for one subscription line.
type SubscriptionOutcome struct {
	SubscriptionID uint
	Created        int
	Skipped        []SkippedDate
}

type GenerateOrdersCommand struct {
	GroupID uint
	CycleID uint
}

type GenerateOrdersResult struct {
	Created  int
	Outcomes []SubscriptionOutcome
	// PauseCredited counts paid meal dates inside a pause. Each is stored
	// as a pause-cancelled order with a credit, so a resume reinstates it.
	PauseCredited    int
	PauseCreditValue shared.Money
	// GroupCancelled means nothing was generated. CycleHasOrders tells
	// whether the cancellation already settled this cycle's meals.
	GroupCancelled bool
	CycleHasOrders bool
}

// GenerateOrdersUseCase expands a cycle's weekday schedule into dated
// orders. Running it twice for the same cycle creates nothing the second
// time.
type GenerateOrdersUseCase struct {
	groupRepo   subscription.GroupRepository
	subRepo     subscription.SubscriptionRepository
	cycleRepo   subscription.CycleRepository
	orderRepo   order.Repository
	holidayRepo order.HolidayRepository
	capacity    *CapacityChecker
	ledger      *creditUsecases.Ledger
	settings    setting.PlatformConfigProvider
	txMgr       *db.TransactionManager
	logger      logger.Interface
}

func NewGenerateOrdersUseCase(
	groupRepo subscription.GroupRepository,
	subRepo subscription.SubscriptionRepository,
	cycleRepo subscription.CycleRepository,
	orderRepo order.Repository,
	holidayRepo order.HolidayRepository,
	capacity *CapacityChecker,
	ledger *creditUsecases.Ledger,
	settings setting.PlatformConfigProvider,
	txMgr *db.TransactionManager,
	logger logger.Interface,
) *GenerateOrdersUseCase {
	return &GenerateOrdersUseCase{
		groupRepo:   groupRepo,
		subRepo:     subRepo,
		cycleRepo:   cycleRepo,
		orderRepo:   orderRepo,
		holidayRepo: holidayRepo,
		capacity:    capacity,
		ledger:      ledger,
		settings:    settings,
		txMgr:       txMgr,
		logger:      logger,
	}
}

func (uc *GenerateOrdersUseCase) Execute(ctx context.Context, cmd GenerateOrdersCommand) (*GenerateOrdersResult, error) {
	result := &GenerateOrdersResult{}

	err := uc.txMgr.RunInTransaction(ctx, func(txCtx context.Context) error {
		group, err := uc.groupRepo.GetByID(txCtx, cmd.GroupID)
		if err != nil {
			return err
		}
		result.PauseCreditValue = shared.Zero(group.Currency())

		cycle, err := uc.cycleRepo.GetByID(txCtx, cmd.CycleID)
		if err != nil {
			return err
		}
		if cycle.GroupID() != group.ID() {
			return fmt.Errorf("cycle %d does not belong to group %d", cycle.ID(), group.ID())
		}

		if group.IsCancelled() {
			existing, err := uc.orderRepo.ListByGroupInRange(txCtx, group.ID(), cycle.Start(), cycle.Range().LastDay(), "")
			if err != nil {
				return err
			}
			result.GroupCancelled = true
			result.CycleHasOrders = len(existing) > 0
			uc.logger.Warnw("skipping order generation for cancelled group",
				"group_id", group.ID(),
				"cycle_id", cycle.ID(),
				"cycle_has_orders", result.CycleHasOrders,
			)
			return nil
		}

		lines, err := uc.subRepo.ListByGroup(txCtx, group.ID())
		if err != nil {
			return err
		}

		holidays, err := uc.holidayRepo.ListByVendorInRange(txCtx, group.VendorID(), cycle.Start(), cycle.Range().LastDay())
		if err != nil {
			return err
		}

		for _, line := range lines {
			outcome, err := uc.generateLine(txCtx, group, cycle, line, holidays, result)
			if err != nil {
				return fmt.Errorf("subscription %d: %w", line.ID(), err)
			}
			result.Created += outcome.Created
			result.Outcomes = append(result.Outcomes, outcome)
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("order generation failed",
			"group_id", cmd.GroupID,
			"cycle_id", cmd.CycleID,
			"error", err,
		)
		return nil, err
	}

	uc.logger.Infow("orders generated",
		"group_id", cmd.GroupID,
		"cycle_id", cmd.CycleID,
		"created", result.Created,
		"pause_credited", result.PauseCredited,
	)
	return result, nil
}

func (uc *GenerateOrdersUseCase) generateLine(
	ctx context.Context,
	group *subscription.Group,
	cycle *subscription.Cycle,
	line *subscription.Subscription,
	holidays []order.Holiday,
	result *GenerateOrdersResult,
) (SubscriptionOutcome, error) {
	outcome := SubscriptionOutcome{SubscriptionID: line.ID()}

	for _, date := range line.MealDates(cycle.Range()) {
		if group.IsPaused() && group.PausedFrom() != nil && !date.Before(*group.PausedFrom()) {
			credited, err := uc.creditPausedDate(ctx, group, cycle, line, date)
			if err != nil {
				return outcome, err
			}
			if credited {
				result.PauseCredited++
				result.PauseCreditValue = result.PauseCreditValue.Add(line.UnitPrice())
			}
			outcome.Skipped = append(outcome.Skipped, SkippedDate{Date: date, Reason: SkipReasonPaused})
			continue
		}

		exists, err := uc.orderRepo.Exists(ctx, line.ID(), date, line.Slot())
		if err != nil {
			return outcome, err
		}
		if exists {
			outcome.Skipped = append(outcome.Skipped, SkippedDate{Date: date, Reason: SkipReasonExists})
			continue
		}

		if onHoliday(holidays, date, line) {
			outcome.Skipped = append(outcome.Skipped, SkippedDate{Date: date, Reason: SkipReasonHoliday})
			continue
		}

		reason, err := uc.place(ctx, group, cycle, line, date)
		if err != nil {
			return outcome, err
		}
		if reason != "" {
			outcome.Skipped = append(outcome.Skipped, SkippedDate{Date: date, Reason: reason})
			continue
		}
		outcome.Created++
	}

	return outcome, nil
}

// place creates the order and claims its seat. A non-empty reason means
// the date was skipped.
func (uc *GenerateOrdersUseCase) place(
	ctx context.Context,
	group *subscription.Group,
	cycle *subscription.Cycle,
	line *subscription.Subscription,
	date time.Time,
) (SkipReason, error) {
	o, err := order.NewOrder(group.ID(), line.ID(), cycle.ID(), group.VendorID(), date, line.Slot(), line.UnitPrice())
	if err != nil {
		return "", err
	}

	if err := uc.orderRepo.Create(ctx, o); err != nil {
		if errors.Is(err, order.ErrOrderExists) {
			return SkipReasonExists, nil
		}
		return "", err
	}

	ok, err := uc.capacity.Reserve(ctx, o)
	if err != nil {
		return "", err
	}
	if !ok {
		if err := uc.orderRepo.Delete(ctx, o.ID()); err != nil {
			return "", err
		}
		uc.logger.Infow("order skipped for capacity",
			"vendor_id", group.VendorID(),
			"subscription_id", line.ID(),
			"service_date", date,
			"slot", line.Slot(),
		)
		return SkipReasonCapacity, nil
	}

	if o.SeatNo() != nil {
		if err := uc.orderRepo.Update(ctx, o); err != nil {
			return "", err
		}
	}
	return "", nil
}

// creditPausedDate stores a paid meal date that falls inside a pause as a
// pause-cancelled order and credits its price, the same way a pause does
// for orders that already existed. It returns false if the date already has
// an order.
func (uc *GenerateOrdersUseCase) creditPausedDate(
	ctx context.Context,
	group *subscription.Group,
	cycle *subscription.Cycle,
	line *subscription.Subscription,
	date time.Time,
) (bool, error) {
	o, err := order.NewOrder(group.ID(), line.ID(), cycle.ID(), group.VendorID(), date, line.Slot(), line.UnitPrice())
	if err != nil {
		return false, err
	}
	if err := o.Cancel(order.CancelSourcePause); err != nil {
		return false, err
	}
	if err := uc.orderRepo.Create(ctx, o); err != nil {
		if errors.Is(err, order.ErrOrderExists) {
			return false, nil
		}
		return false, err
	}

	cfg, err := uc.settings.Load(ctx)
	if err != nil {
		return false, err
	}
	orderID := o.ID()
	if _, err := uc.ledger.Issue(ctx, creditUsecases.IssueCommand{
		GroupID:        group.ID(),
		SubscriptionID: line.ID(),
		Amount:         line.UnitPrice(),
		Reason:         credit.ReasonPause,
		ExpiresAt:      cfg.CreditExpiryFrom(biztime.NowUTC()),
		SourceOrderID:  &orderID,
	}); err != nil {
		return false, err
	}
	return true, nil
}

func onHoliday(holidays []order.Holiday, date time.Time, line *subscription.Subscription) bool {
	for _, h := range holidays {
		if h.Covers(date, line.Slot()) {
			return true
		}
	}
	return false
}

package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// IssueCommand describes a credit to be granted.
type IssueCommand struct {
	GroupID        uint
	SubscriptionID uint
	Amount         shared.Money
	Reason         credit.Reason
	ExpiresAt      time.Time
	SourceOrderID  *uint
}

// ConsumeResult reports how a consumption settled.
type ConsumeResult struct {
	Applied   shared.Money
	Consumed  []*credit.Credit
	Remainder *credit.Credit
}

// Ledger issues, lists and consumes credits. Callers are expected to run it
// inside a transaction when consumption must be atomic with other writes.
type Ledger struct {
	creditRepo credit.Repository
	logger     logger.Interface
}

func NewLedger(creditRepo credit.Repository, logger logger.Interface) *Ledger {
	return &Ledger{
		creditRepo: creditRepo,
		logger:     logger,
	}
}

func (l *Ledger) Issue(ctx context.Context, cmd IssueCommand) (*credit.Credit, error) {
	c, err := credit.NewCredit(cmd.GroupID, cmd.SubscriptionID, cmd.Amount, cmd.Reason, cmd.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("invalid credit: %w", err)
	}
	if cmd.SourceOrderID != nil {
		c.LinkOrder(*cmd.SourceOrderID)
	}

	if err := l.creditRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	l.logger.Debugw("credit issued",
		"credit_id", c.ID(),
		"group_id", c.GroupID(),
		"amount", c.Amount().Minor(),
		"reason", c.Reason(),
	)
	return c, nil
}

// ListAvailableByGroup returns the group's spendable credits in FIFO order.
// Credits found past their expiry are marked expired on the way.
func (l *Ledger) ListAvailableByGroup(ctx context.Context, groupID uint) ([]*credit.Credit, error) {
	list, err := l.creditRepo.ListByGroup(ctx, groupID, credit.StatusAvailable)
	if err != nil {
		return nil, err
	}
	return l.dropExpired(ctx, list)
}

func (l *Ledger) ListAvailableBySubscription(ctx context.Context, subscriptionID uint) ([]*credit.Credit, error) {
	list, err := l.creditRepo.ListAvailableBySubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	return l.dropExpired(ctx, list)
}

func (l *Ledger) dropExpired(ctx context.Context, list []*credit.Credit) ([]*credit.Credit, error) {
	now := biztime.NowUTC()

	live := make([]*credit.Credit, 0, len(list))
	var expired []uint
	for _, c := range list {
		if c.IsExpiredAt(now) {
			expired = append(expired, c.ID())
			continue
		}
		live = append(live, c)
	}

	if len(expired) > 0 {
		n, err := l.creditRepo.ExpireByIDs(ctx, expired)
		if err != nil {
			return nil, err
		}
		l.logger.Infow("expired stale credits on read", "count", n)
	}

	credit.SortFIFO(live)
	return live, nil
}

// Consume spends credits from the given set, soonest-expiring first, until
// amount is covered. A credit that overshoots is consumed whole and the
// unused part is reissued as a remainder credit with the same expiry.
func (l *Ledger) Consume(ctx context.Context, available []*credit.Credit, amount shared.Money, ref string) (*ConsumeResult, error) {
	plan := credit.PlanConsumption(available, amount)
	now := biztime.NowUTC()

	for _, c := range plan.Use {
		if err := c.Consume(now, ref); err != nil {
			return nil, fmt.Errorf("credit %d: %w", c.ID(), err)
		}
		if err := l.creditRepo.MarkConsumed(ctx, c); err != nil {
			return nil, err
		}
	}

	result := &ConsumeResult{Applied: plan.Applied, Consumed: plan.Use}

	if plan.Surplus.IsPositive() {
		last := plan.Use[len(plan.Use)-1]
		rem, err := l.Issue(ctx, IssueCommand{
			GroupID:        last.GroupID(),
			SubscriptionID: last.SubscriptionID(),
			Amount:         plan.Surplus,
			Reason:         credit.ReasonRemainder,
			ExpiresAt:      last.ExpiresAt(),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to issue remainder credit: %w", err)
		}
		result.Remainder = rem
	}

	if plan.Count() > 0 {
		l.logger.Infow("credits consumed",
			"count", plan.Count(),
			"applied", plan.Applied.Minor(),
			"ref", ref,
		)
	}
	return result, nil
}

// ConsumeAll spends every credit in the set regardless of amount.
func (l *Ledger) ConsumeAll(ctx context.Context, available []*credit.Credit, ref string) error {
	now := biztime.NowUTC()
	for _, c := range available {
		if err := c.Consume(now, ref); err != nil {
			return fmt.Errorf("credit %d: %w", c.ID(), err)
		}
		if err := l.creditRepo.MarkConsumed(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// Balance is the value of the group's spendable credits.
func (l *Ledger) Balance(ctx context.Context, groupID uint, currency string) (shared.Money, error) {
	list, err := l.ListAvailableByGroup(ctx, groupID)
	if err != nil {
		return shared.Money{}, err
	}
	return credit.Sum(list, currency), nil
}

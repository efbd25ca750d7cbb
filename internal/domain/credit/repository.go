package credit

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, c *Credit) error
	GetByID(ctx context.Context, id uint) (*Credit, error)
	GetBySourceOrder(ctx context.Context, orderID uint) (*Credit, error)
	// ListByGroup returns a group's credits in the given status, or all
	// credits when status is empty.
	ListByGroup(ctx context.Context, groupID uint, status Status) ([]*Credit, error)
	ListAvailableBySubscription(ctx context.Context, subscriptionID uint) ([]*Credit, error)
	// MarkConsumed flips the credit from available to consumed. It returns
	// ErrCreditNotAvailable if another writer got there first.
	MarkConsumed(ctx context.Context, c *Credit) error
	// ExpireByIDs marks the given available credits expired.
	ExpireByIDs(ctx context.Context, ids []uint) (int64, error)
	// ExpireDue marks every available credit with expires_at <= now expired.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

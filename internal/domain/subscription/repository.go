package subscription

import (
	"context"
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/calendar"
)

type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	// Update persists the group if its version still matches, returning
	// ErrVersionConflict otherwise.
	Update(ctx context.Context, group *Group) error
	GetByID(ctx context.Context, id uint) (*Group, error)
	// GetByCheckoutKey returns ErrGroupNotFound if the consumer never
	// checked out with key.
	GetByCheckoutKey(ctx context.Context, consumerID uint, key string) (*Group, error)
	// ListDueForRenewal returns active groups of the cadence whose latest
	// regular cycle renews on or before horizon.
	ListDueForRenewal(ctx context.Context, cadence calendar.Period, horizon time.Time) ([]uint, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	Update(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id uint) (*Subscription, error)
	ListByGroup(ctx context.Context, groupID uint) ([]*Subscription, error)
	MirrorGroupStatus(ctx context.Context, group *Group) error
	ResetSkipsByGroup(ctx context.Context, groupID uint) error
}

type CycleRepository interface {
	// Create returns ErrCycleExists when the group already has a cycle
	// starting on the same date.
	Create(ctx context.Context, cycle *Cycle) error
	GetByID(ctx context.Context, id uint) (*Cycle, error)
	// GetContaining returns the cycle covering date, or ErrCycleNotFound.
	GetContaining(ctx context.Context, groupID uint, date time.Time) (*Cycle, error)
	// GetLatest returns the group's latest cycle of the kind, or of any kind
	// when kind is empty.
	GetLatest(ctx context.Context, groupID uint, kind CycleKind) (*Cycle, error)
	ListByGroup(ctx context.Context, groupID uint) ([]*Cycle, error)
}

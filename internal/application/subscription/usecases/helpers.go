package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	apperrors "github.com/homechef-inc/mealsub/internal/shared/errors"
)

// farFuture bounds open-ended order range queries.
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// loadOwnedGroup fetches a group the principal owns. A group owned by
// someone else is reported as missing.
func loadOwnedGroup(ctx context.Context, repo subscription.GroupRepository, groupID, principalID uint) (*subscription.Group, error) {
	group, err := repo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, subscription.ErrGroupNotFound) {
			return nil, apperrors.NewNotFoundError("subscription group not found")
		}
		return nil, err
	}
	if !group.IsOwnedBy(principalID) {
		return nil, apperrors.NewNotFoundError("subscription group not found")
	}
	return group, nil
}

// requireNotice rejects effective dates closer than the notice period.
func requireNotice(cfg setting.PlatformConfig, date, now time.Time) error {
	earliest := cfg.EarliestEffectiveDate(now)
	if date.Before(earliest) {
		return apperrors.NewValidationError(
			"insufficient notice",
			"earliest allowed date is "+biztime.FormatDate(earliest),
		)
	}
	return nil
}

// saveGroup persists a group mutation; a lost optimistic lock becomes a
// ConflictError.
func saveGroup(ctx context.Context, repo subscription.GroupRepository, group *subscription.Group) error {
	if err := repo.Update(ctx, group); err != nil {
		if errors.Is(err, subscription.ErrVersionConflict) {
			return apperrors.NewConflictError("subscription group was modified concurrently, retry the request")
		}
		return err
	}
	return nil
}

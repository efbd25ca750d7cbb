package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/mappers"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	sharedErrors "github.com/homechef-inc/mealsub/internal/shared/errors"
)

// SubscriptionGroupRepository implements subscription.GroupRepository.
type SubscriptionGroupRepository struct {
	db *gorm.DB
}

func NewSubscriptionGroupRepository(db *gorm.DB) *SubscriptionGroupRepository {
	return &SubscriptionGroupRepository{db: db}
}

func (r *SubscriptionGroupRepository) Create(ctx context.Context, g *subscription.Group) error {
	model := mappers.GroupToModel(g)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if model.CheckoutKey != nil && sharedErrors.IsDuplicateError(err) {
			return subscription.ErrCheckoutKeyUsed
		}
		return fmt.Errorf("failed to create subscription group: %w", err)
	}

	g.SetID(model.ID)
	return nil
}

// Update writes the group guarded by its version column.
func (r *SubscriptionGroupRepository) Update(ctx context.Context, g *subscription.Group) error {
	model := mappers.GroupToModel(g)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionGroupModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version).
		Updates(map[string]any{
			"status":          model.Status,
			"customer_ref":    model.CustomerRef,
			"mandate_ref":     model.MandateRef,
			"paused_from":     model.PausedFrom,
			"paused_cycle_id": model.PausedCycleID,
			"cancelled_at":    model.CancelledAt,
			"cancel_reason":   model.CancelReason,
			"version":         gorm.Expr("version + 1"),
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update subscription group: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("group %d version %d: %w", model.ID, model.Version, subscription.ErrVersionConflict)
	}

	g.SetVersion(model.Version + 1)
	return nil
}

func (r *SubscriptionGroupRepository) GetByID(ctx context.Context, id uint) (*subscription.Group, error) {
	var model models.SubscriptionGroupModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get subscription group: %w", err)
	}

	return mappers.GroupToDomain(&model)
}

func (r *SubscriptionGroupRepository) GetByCheckoutKey(ctx context.Context, consumerID uint, key string) (*subscription.Group, error) {
	var model models.SubscriptionGroupModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("consumer_id = ? AND checkout_key = ?", consumerID, key).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get subscription group by checkout key: %w", err)
	}

	return mappers.GroupToDomain(&model)
}

func (r *SubscriptionGroupRepository) ListDueForRenewal(ctx context.Context, cadence calendar.Period, horizon time.Time) ([]uint, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	latest := tx.Model(&models.CycleModel{}).
		Select("group_id, MAX(renewal_date) AS renewal_date").
		Where("kind = ?", string(subscription.CycleKindRegular)).
		Group("group_id")

	var ids []uint
	err := tx.Table("subscription_groups AS g").
		Joins("JOIN (?) AS c ON c.group_id = g.id", latest).
		Where("g.status = ? AND g.cadence = ? AND c.renewal_date <= ?", vo.StatusActive.String(), cadence.String(), horizon).
		Order("g.id ASC").
		Pluck("g.id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list groups due for renewal: %w", err)
	}
	return ids, nil
}

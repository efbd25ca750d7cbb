package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/mappers"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/db"
)

// SubscriptionRepository implements subscription.SubscriptionRepository.
type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	model := mappers.SubscriptionToModel(s)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	s.SetID(model.ID)
	return nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	model := mappers.SubscriptionToModel(s)

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"skips_used": model.SkipsUsed,
			"status":     model.Status,
			"updated_at": model.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) GetByID(ctx context.Context, id uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return mappers.SubscriptionToDomain(&model)
}

func (r *SubscriptionRepository) ListByGroup(ctx context.Context, groupID uint) ([]*subscription.Subscription, error) {
	var list []models.SubscriptionModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("group_id = ?", groupID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return mappers.SubscriptionsToDomain(list)
}

func (r *SubscriptionRepository) MirrorGroupStatus(ctx context.Context, g *subscription.Group) error {
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("group_id = ?", g.ID()).
		Updates(map[string]any{
			"status":     g.Status().String(),
			"updated_at": biztime.NowUTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mirror group status: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) ResetSkipsByGroup(ctx context.Context, groupID uint) error {
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SubscriptionModel{}).
		Where("group_id = ?", groupID).
		Updates(map[string]any{
			"skips_used": 0,
			"updated_at": biztime.NowUTC(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to reset skips: %w", err)
	}
	return nil
}

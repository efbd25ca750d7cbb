package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/homechef-inc/mealsub/internal/domain/credit"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/mappers"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
	"github.com/homechef-inc/mealsub/internal/shared/db"
)

// CreditRepository implements credit.Repository.
type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) Create(ctx context.Context, c *credit.Credit) error {
	model := mappers.CreditToModel(c)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create credit: %w", err)
	}

	c.SetID(model.ID)
	return nil
}

func (r *CreditRepository) GetByID(ctx context.Context, id uint) (*credit.Credit, error) {
	var model models.CreditModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, credit.ErrCreditNotFound
		}
		return nil, fmt.Errorf("failed to get credit: %w", err)
	}
	return mappers.CreditToDomain(&model), nil
}

func (r *CreditRepository) GetBySourceOrder(ctx context.Context, orderID uint) (*credit.Credit, error) {
	var model models.CreditModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("source_order_id = ?", orderID).
		Order("id DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, credit.ErrCreditNotFound
		}
		return nil, fmt.Errorf("failed to get credit by source order: %w", err)
	}
	return mappers.CreditToDomain(&model), nil
}

func (r *CreditRepository) ListByGroup(ctx context.Context, groupID uint, status credit.Status) ([]*credit.Credit, error) {
	var list []models.CreditModel

	q := db.GetTxFromContext(ctx, r.db).Where("group_id = ?", groupID)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	if err := q.Order("expires_at ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list credits: %w", err)
	}
	return mappers.CreditsToDomain(list), nil
}

func (r *CreditRepository) ListAvailableBySubscription(ctx context.Context, subscriptionID uint) ([]*credit.Credit, error) {
	var list []models.CreditModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("subscription_id = ? AND status = ?", subscriptionID, string(credit.StatusAvailable)).
		Order("expires_at ASC, id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list credits: %w", err)
	}
	return mappers.CreditsToDomain(list), nil
}

func (r *CreditRepository) MarkConsumed(ctx context.Context, c *credit.Credit) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.CreditModel{}).
		Where("id = ? AND status = ?", c.ID(), string(credit.StatusAvailable)).
		Updates(map[string]any{
			"status":       string(credit.StatusConsumed),
			"consumed_at":  c.ConsumedAt(),
			"consumed_ref": c.ConsumedRef(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to consume credit: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("credit %d: %w", c.ID(), credit.ErrCreditNotAvailable)
	}
	return nil
}

func (r *CreditRepository) ExpireByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.CreditModel{}).
		Where("id IN ? AND status = ?", ids, string(credit.StatusAvailable)).
		Update("status", string(credit.StatusExpired))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire credits: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *CreditRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.CreditModel{}).
		Where("status = ? AND expires_at <= ?", string(credit.StatusAvailable), now).
		Update("status", string(credit.StatusExpired))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to expire due credits: %w", result.Error)
	}
	return result.RowsAffected, nil
}

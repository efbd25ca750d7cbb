package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/mappers"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	sharedErrors "github.com/homechef-inc/mealsub/internal/shared/errors"
)

// CycleRepository implements subscription.CycleRepository.
type CycleRepository struct {
	db *gorm.DB
}

func NewCycleRepository(db *gorm.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

func (r *CycleRepository) Create(ctx context.Context, c *subscription.Cycle) error {
	model := mappers.CycleToModel(c)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if sharedErrors.IsDuplicateError(err) {
			return subscription.ErrCycleExists
		}
		return fmt.Errorf("failed to create cycle: %w", err)
	}

	c.SetID(model.ID)
	return nil
}

func (r *CycleRepository) GetByID(ctx context.Context, id uint) (*subscription.Cycle, error) {
	var model models.CycleModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrCycleNotFound
		}
		return nil, fmt.Errorf("failed to get cycle: %w", err)
	}
	return mappers.CycleToDomain(&model), nil
}

// GetContaining prefers the most recently started cycle when a trial and a
// regular cycle overlap.
func (r *CycleRepository) GetContaining(ctx context.Context, groupID uint, date time.Time) (*subscription.Cycle, error) {
	var model models.CycleModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("group_id = ? AND start_date <= ? AND end_date >= ?", groupID, date, date).
		Order("start_date DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrCycleNotFound
		}
		return nil, fmt.Errorf("failed to get cycle containing date: %w", err)
	}
	return mappers.CycleToDomain(&model), nil
}

func (r *CycleRepository) GetLatest(ctx context.Context, groupID uint, kind subscription.CycleKind) (*subscription.Cycle, error) {
	var model models.CycleModel

	q := db.GetTxFromContext(ctx, r.db).Where("group_id = ?", groupID)
	if kind != "" {
		q = q.Where("kind = ?", string(kind))
	}
	err := q.Order("start_date DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, subscription.ErrCycleNotFound
		}
		return nil, fmt.Errorf("failed to get latest cycle: %w", err)
	}
	return mappers.CycleToDomain(&model), nil
}

func (r *CycleRepository) ListByGroup(ctx context.Context, groupID uint) ([]*subscription.Cycle, error) {
	var list []models.CycleModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("group_id = ?", groupID).
		Order("start_date ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list cycles: %w", err)
	}

	out := make([]*subscription.Cycle, 0, len(list))
	for i := range list {
		out = append(out, mappers.CycleToDomain(&list[i]))
	}
	return out, nil
}

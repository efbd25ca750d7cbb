package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/mappers"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
	"github.com/homechef-inc/mealsub/internal/shared/db"
)

// PlatformSettingRepository implements setting.Repository.
type PlatformSettingRepository struct {
	db *gorm.DB
}

func NewPlatformSettingRepository(db *gorm.DB) *PlatformSettingRepository {
	return &PlatformSettingRepository{db: db}
}

func (r *PlatformSettingRepository) GetAll(ctx context.Context) ([]*setting.Setting, error) {
	var list []models.PlatformSettingModel

	if err := db.GetTxFromContext(ctx, r.db).Order("setting_key ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list platform settings: %w", err)
	}

	out := make([]*setting.Setting, 0, len(list))
	for i := range list {
		out = append(out, mappers.SettingToDomain(&list[i]))
	}
	return out, nil
}

func (r *PlatformSettingRepository) Upsert(ctx context.Context, s *setting.Setting) error {
	model := &models.PlatformSettingModel{
		Key:       s.Key(),
		Value:     s.Value(),
		UpdatedAt: s.UpdatedAt(),
	}

	err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "setting_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert platform setting: %w", err)
	}
	return nil
}

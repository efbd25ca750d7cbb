package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/homechef-inc/mealsub/internal/domain/billing"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/mappers"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	sharedErrors "github.com/homechef-inc/mealsub/internal/shared/errors"
)

// RefundRequestRepository implements billing.RefundRequestRepository.
type RefundRequestRepository struct {
	db *gorm.DB
}

func NewRefundRequestRepository(db *gorm.DB) *RefundRequestRepository {
	return &RefundRequestRepository{db: db}
}

func (r *RefundRequestRepository) Create(ctx context.Context, req *billing.RefundRequest) error {
	model := mappers.RefundRequestToModel(req)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if model.InvoiceID != nil && sharedErrors.IsDuplicateError(err) {
			return billing.ErrRefundExists
		}
		return fmt.Errorf("failed to create refund request: %w", err)
	}

	req.SetID(model.ID)
	return nil
}

func (r *RefundRequestRepository) ListByGroup(ctx context.Context, groupID uint) ([]*billing.RefundRequest, error) {
	var list []models.RefundRequestModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("group_id = ?", groupID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list refund requests: %w", err)
	}

	out := make([]*billing.RefundRequest, 0, len(list))
	for i := range list {
		out = append(out, mappers.RefundRequestToDomain(&list[i]))
	}
	return out, nil
}

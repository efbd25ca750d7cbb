package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/homechef-inc/mealsub/internal/domain/billing"
	vo "github.com/homechef-inc/mealsub/internal/domain/billing/valueobjects"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/mappers"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
	"github.com/homechef-inc/mealsub/internal/shared/db"
	sharedErrors "github.com/homechef-inc/mealsub/internal/shared/errors"
)

// InvoiceRepository implements billing.InvoiceRepository.
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *billing.Invoice) error {
	model := mappers.InvoiceToModel(inv)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if sharedErrors.IsDuplicateError(err) {
			return billing.ErrInvoiceExists
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	inv.SetID(model.ID)
	return nil
}

func (r *InvoiceRepository) getOne(ctx context.Context, query string, args ...any) (*billing.Invoice, error) {
	var model models.InvoiceModel

	if err := db.GetTxFromContext(ctx, r.db).Where(query, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, billing.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return mappers.InvoiceToDomain(&model)
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uint) (*billing.Invoice, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *InvoiceRepository) GetBySID(ctx context.Context, sid string) (*billing.Invoice, error) {
	return r.getOne(ctx, "sid = ?", sid)
}

func (r *InvoiceRepository) GetByGatewayOrderRef(ctx context.Context, ref string) (*billing.Invoice, error) {
	return r.getOne(ctx, "gateway_order_ref = ?", ref)
}

func (r *InvoiceRepository) GetByCycleID(ctx context.Context, cycleID uint) (*billing.Invoice, error) {
	return r.getOne(ctx, "cycle_id = ?", cycleID)
}

func (r *InvoiceRepository) ListByGroup(ctx context.Context, groupID uint) ([]*billing.Invoice, error) {
	var list []models.InvoiceModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("group_id = ?", groupID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return mappers.InvoicesToDomain(list)
}

// CompareAndSetStatus is the mutual-exclusion gate of finalization: the
// UPDATE only matches while the stored status is still one of from, so of
// two concurrent deliveries exactly one sees a row affected.
func (r *InvoiceRepository) CompareAndSetStatus(ctx context.Context, inv *billing.Invoice, from []vo.InvoiceStatus) error {
	model := mappers.InvoiceToModel(inv)

	fromValues := make([]string, len(from))
	for i, s := range from {
		fromValues[i] = s.String()
	}

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND status IN ?", model.ID, fromValues).
		Updates(map[string]any{
			"status":              model.Status,
			"payment_ref":         model.PaymentRef,
			"refund_ref":          model.RefundRef,
			"paid_at":             model.PaidAt,
			"refunded_at":         model.RefundedAt,
			"fulfillment_pending": model.FulfillmentPending,
			"metadata":            metadataValue(model.Metadata),
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update invoice status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return billing.ErrStatusChanged
	}
	return nil
}

func (r *InvoiceRepository) UpdateMetadata(ctx context.Context, inv *billing.Invoice) error {
	model := mappers.InvoiceToModel(inv)

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.InvoiceModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"fulfillment_pending": model.FulfillmentPending,
			"metadata":            metadataValue(model.Metadata),
			"updated_at":          model.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update invoice metadata: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) UpdateGatewayOrderRef(ctx context.Context, inv *billing.Invoice) error {
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.InvoiceModel{}).
		Where("id = ?", inv.ID()).
		Updates(map[string]any{
			"gateway_order_ref": inv.GatewayOrderRef(),
			"updated_at":        inv.UpdatedAt(),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update gateway order ref: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) ListFulfillmentPending(ctx context.Context, limit int) ([]*billing.Invoice, error) {
	var list []models.InvoiceModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND fulfillment_pending = ?", vo.InvoiceStatusPaid.String(), true).
		Order("updated_at ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list fulfillment-pending invoices: %w", err)
	}
	return mappers.InvoicesToDomain(list)
}

// metadataValue keeps an emptied map from being skipped by Updates.
func metadataValue(m datatypes.JSONMap) datatypes.JSONMap {
	if m == nil {
		return datatypes.JSONMap{}
	}
	return m
}

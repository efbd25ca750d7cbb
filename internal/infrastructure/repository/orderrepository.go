package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/homechef-inc/mealsub/internal/domain/order"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/mappers"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
	"github.com/homechef-inc/mealsub/internal/shared/db"
)

// OrderRepository implements order.Repository.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order unless one already exists for the same
// subscription, date and slot. The conflict is absorbed by the insert so it
// does not poison the surrounding transaction.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := mappers.OrderToModel(o)

	result := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to create order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderExists
	}

	o.SetID(model.ID)
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	model := mappers.OrderToModel(o)

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"status":        model.Status,
			"cancel_source": model.CancelSource,
			"seat_no":       model.SeatNo,
			"updated_at":    model.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

// Delete removes an order that never held a seat; the generator uses it to
// back out of a lost capacity race.
func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Delete(&models.OrderModel{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uint) (*order.Order, error) {
	var model models.OrderModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return mappers.OrderToDomain(&model)
}

func (r *OrderRepository) Exists(ctx context.Context, subscriptionID uint, date time.Time, slot vo.Slot) (bool, error) {
	var count int64

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("subscription_id = ? AND service_date = ? AND slot = ?", subscriptionID, date, slot.String()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}
	return count > 0, nil
}

// ListByGroupInRange lists orders with service dates in [from, to]. An empty
// status matches every status.
func (r *OrderRepository) ListByGroupInRange(ctx context.Context, groupID uint, from, to time.Time, status order.Status) ([]*order.Order, error) {
	var list []models.OrderModel

	q := db.GetTxFromContext(ctx, r.db).
		Where("group_id = ? AND service_date >= ? AND service_date <= ?", groupID, from, to)
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	if err := q.Order("service_date ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return mappers.OrdersToDomain(list)
}

func (r *OrderRepository) ListByVendorDate(ctx context.Context, vendorID uint, date time.Time, slot vo.Slot, status order.Status) ([]*order.Order, error) {
	var list []models.OrderModel

	q := db.GetTxFromContext(ctx, r.db).
		Where("vendor_id = ? AND service_date = ?", vendorID, date)
	if slot != "" {
		q = q.Where("slot = ?", slot.String())
	}
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	if err := q.Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list vendor orders: %w", err)
	}
	return mappers.OrdersToDomain(list)
}

func (r *OrderRepository) CountBooked(ctx context.Context, vendorID uint, date time.Time, slot vo.Slot) (int64, error) {
	var count int64

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.OrderModel{}).
		Where("vendor_id = ? AND service_date = ? AND slot = ? AND status IN ?",
			vendorID, date, slot.String(),
			[]string{string(order.StatusScheduled), string(order.StatusDelivered)}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count booked orders: %w", err)
	}
	return count, nil
}

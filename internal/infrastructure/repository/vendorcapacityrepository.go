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
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
	"github.com/homechef-inc/mealsub/internal/shared/db"
)

// VendorCapacityRepository implements order.CapacityRepository.
type VendorCapacityRepository struct {
	db *gorm.DB
}

func NewVendorCapacityRepository(db *gorm.DB) *VendorCapacityRepository {
	return &VendorCapacityRepository{db: db}
}

// GetSlotCapacity returns an unlimited capacity when the vendor has not
// configured the slot.
func (r *VendorCapacityRepository) GetSlotCapacity(ctx context.Context, vendorID uint, slot vo.Slot) (*order.SlotCapacity, error) {
	var model models.VendorSlotCapacityModel

	err := db.GetTxFromContext(ctx, r.db).
		Where("vendor_id = ? AND slot = ?", vendorID, slot.String()).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &order.SlotCapacity{VendorID: vendorID, Slot: slot}, nil
		}
		return nil, fmt.Errorf("failed to get slot capacity: %w", err)
	}
	return &order.SlotCapacity{VendorID: model.VendorID, Slot: slot, MaxPerDay: model.MaxPerDay}, nil
}

func (r *VendorCapacityRepository) UpsertSlotCapacity(ctx context.Context, c order.SlotCapacity) error {
	model := &models.VendorSlotCapacityModel{
		VendorID:  c.VendorID,
		Slot:      c.Slot.String(),
		MaxPerDay: c.MaxPerDay,
		UpdatedAt: biztime.NowUTC(),
	}

	err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vendor_id"}, {Name: "slot"}},
			DoUpdates: clause.AssignmentColumns([]string{"max_per_day", "updated_at"}),
		}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert slot capacity: %w", err)
	}
	return nil
}

func (r *VendorCapacityRepository) TakenSeats(ctx context.Context, vendorID uint, date time.Time, slot vo.Slot) ([]int, error) {
	var seats []int

	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SlotSeatModel{}).
		Where("vendor_id = ? AND service_date = ? AND slot = ?", vendorID, date, slot.String()).
		Order("seat_no ASC").
		Pluck("seat_no", &seats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list taken seats: %w", err)
	}
	return seats, nil
}

// ClaimSeat inserts the seat row. Losing the unique race yields
// order.ErrSeatTaken without aborting the surrounding transaction.
func (r *VendorCapacityRepository) ClaimSeat(ctx context.Context, seat order.Seat) error {
	model := &models.SlotSeatModel{
		VendorID:    seat.VendorID,
		ServiceDate: seat.ServiceDate,
		Slot:        seat.Slot.String(),
		SeatNo:      seat.SeatNo,
		OrderID:     seat.OrderID,
		CreatedAt:   biztime.NowUTC(),
	}

	result := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to claim seat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return order.ErrSeatTaken
	}
	return nil
}

func (r *VendorCapacityRepository) ReleaseSeat(ctx context.Context, orderID uint) error {
	err := db.GetTxFromContext(ctx, r.db).
		Where("order_id = ?", orderID).
		Delete(&models.SlotSeatModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}
	return nil
}

// VendorHolidayRepository implements order.HolidayRepository.
type VendorHolidayRepository struct {
	db *gorm.DB
}

func NewVendorHolidayRepository(db *gorm.DB) *VendorHolidayRepository {
	return &VendorHolidayRepository{db: db}
}

// Create records the holiday; recording the same holiday twice is a no-op.
func (r *VendorHolidayRepository) Create(ctx context.Context, h *order.Holiday) error {
	model := &models.VendorHolidayModel{
		VendorID:  h.VendorID,
		Date:      h.Date,
		Slot:      h.Slot.String(),
		Note:      h.Note,
		CreatedAt: biztime.NowUTC(),
	}

	if err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to create vendor holiday: %w", err)
	}
	h.ID = model.ID
	return nil
}

func (r *VendorHolidayRepository) ListByVendorInRange(ctx context.Context, vendorID uint, from, to time.Time) ([]order.Holiday, error) {
	var list []models.VendorHolidayModel

	if err := db.GetTxFromContext(ctx, r.db).
		Where("vendor_id = ? AND holiday_date >= ? AND holiday_date <= ?", vendorID, from, to).
		Order("holiday_date ASC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list vendor holidays: %w", err)
	}

	out := make([]order.Holiday, 0, len(list))
	for i := range list {
		out = append(out, mappers.HolidayToDomain(&list[i]))
	}
	return out, nil
}

package order

import (
	"context"
	"time"

	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
)

type Repository interface {
	// Create returns ErrOrderExists on a (subscription, date, slot) clash.
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Order, error)
	Exists(ctx context.Context, subscriptionID uint, date time.Time, slot vo.Slot) (bool, error)
	ListByGroupInRange(ctx context.Context, groupID uint, from, to time.Time, status Status) ([]*Order, error)
	ListByVendorDate(ctx context.Context, vendorID uint, date time.Time, slot vo.Slot, status Status) ([]*Order, error)
	// CountBooked counts orders holding capacity for (vendor, date, slot).
	CountBooked(ctx context.Context, vendorID uint, date time.Time, slot vo.Slot) (int64, error)
}

// CapacityRepository stores vendor slot limits and the seats that enforce them.
type CapacityRepository interface {
	GetSlotCapacity(ctx context.Context, vendorID uint, slot vo.Slot) (*SlotCapacity, error)
	UpsertSlotCapacity(ctx context.Context, c SlotCapacity) error
	// TakenSeats lists seat numbers in use for (vendor, date, slot).
	TakenSeats(ctx context.Context, vendorID uint, date time.Time, slot vo.Slot) ([]int, error)
	// ClaimSeat inserts a seat row, returning ErrSeatTaken on a unique clash.
	ClaimSeat(ctx context.Context, seat Seat) error
	ReleaseSeat(ctx context.Context, orderID uint) error
}

type HolidayRepository interface {
	Create(ctx context.Context, h *Holiday) error
	ListByVendorInRange(ctx context.Context, vendorID uint, from, to time.Time) ([]Holiday, error)
}

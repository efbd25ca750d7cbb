package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/order"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// Availability is a read-only view of a vendor slot's capacity on a date.
type Availability struct {
	MaxPerDay int
	Booked    int64
}

func (a Availability) Unlimited() bool { return a.MaxPerDay <= 0 }

func (a Availability) HasRoom() bool {
	return a.Unlimited() || a.Booked < int64(a.MaxPerDay)
}

// CapacityChecker answers capacity questions and hands out seats. Seats are
// unique per (vendor, date, slot, seat number), so two writers racing for
// the last seat cannot both win.
type CapacityChecker struct {
	capacityRepo order.CapacityRepository
	orderRepo    order.Repository
	logger       logger.Interface
}

func NewCapacityChecker(capacityRepo order.CapacityRepository, orderRepo order.Repository, logger logger.Interface) *CapacityChecker {
	return &CapacityChecker{
		capacityRepo: capacityRepo,
		orderRepo:    orderRepo,
		logger:       logger,
	}
}

func (c *CapacityChecker) Check(ctx context.Context, vendorID uint, date time.Time, slot vo.Slot) (Availability, error) {
	capacity, err := c.capacityRepo.GetSlotCapacity(ctx, vendorID, slot)
	if err != nil {
		return Availability{}, err
	}
	if capacity.IsUnlimited() {
		return Availability{}, nil
	}

	booked, err := c.orderRepo.CountBooked(ctx, vendorID, date, slot)
	if err != nil {
		return Availability{}, err
	}
	return Availability{MaxPerDay: capacity.MaxPerDay, Booked: booked}, nil
}

// Reserve claims a seat for a persisted order. It returns false when the
// slot is full. Unlimited slots always succeed without taking a seat.
func (c *CapacityChecker) Reserve(ctx context.Context, o *order.Order) (bool, error) {
	capacity, err := c.capacityRepo.GetSlotCapacity(ctx, o.VendorID(), o.Slot())
	if err != nil {
		return false, err
	}
	if capacity.IsUnlimited() {
		return true, nil
	}

	taken, err := c.capacityRepo.TakenSeats(ctx, o.VendorID(), o.ServiceDate(), o.Slot())
	if err != nil {
		return false, err
	}
	inUse := make(map[int]struct{}, len(taken))
	for _, n := range taken {
		inUse[n] = struct{}{}
	}

	for n := 1; n <= capacity.MaxPerDay; n++ {
		if _, ok := inUse[n]; ok {
			continue
		}
		err := c.capacityRepo.ClaimSeat(ctx, order.Seat{
			VendorID:    o.VendorID(),
			ServiceDate: o.ServiceDate(),
			Slot:        o.Slot(),
			SeatNo:      n,
			OrderID:     o.ID(),
		})
		if errors.Is(err, order.ErrSeatTaken) {
			c.logger.Debugw("seat lost to concurrent writer, trying next",
				"vendor_id", o.VendorID(),
				"seat_no", n,
			)
			continue
		}
		if err != nil {
			return false, fmt.Errorf("failed to claim seat: %w", err)
		}
		o.AssignSeat(n)
		return true, nil
	}

	return false, nil
}

// Release frees the seat held by an order, if any.
func (c *CapacityChecker) Release(ctx context.Context, orderID uint) error {
	return c.capacityRepo.ReleaseSeat(ctx, orderID)
}

package order

import (
	"fmt"
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/shared"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
)

// Order is one dated delivery of one subscription line. It is unique on
// (subscription, service date, slot).
type Order struct {
	id             uint
	groupID        uint
	subscriptionID uint
	cycleID        uint
	vendorID       uint
	serviceDate    time.Time
	slot           vo.Slot
	status         Status
	unitPrice      shared.Money
	cancelSource   *CancelSource
	seatNo         *int
	createdAt      time.Time
	updatedAt      time.Time
}

func NewOrder(groupID, subscriptionID, cycleID, vendorID uint, serviceDate time.Time, slot vo.Slot, unitPrice shared.Money) (*Order, error) {
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if !slot.IsValid() {
		return nil, fmt.Errorf("invalid meal slot: %s", slot)
	}
	now := biztime.NowUTC()
	return &Order{
		groupID:        groupID,
		subscriptionID: subscriptionID,
		cycleID:        cycleID,
		vendorID:       vendorID,
		serviceDate:    serviceDate,
		slot:           slot,
		status:         StatusScheduled,
		unitPrice:      unitPrice,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func ReconstructOrder(
	id, groupID, subscriptionID, cycleID, vendorID uint,
	serviceDate time.Time,
	slot vo.Slot,
	status Status,
	unitPrice shared.Money,
	cancelSource *CancelSource,
	seatNo *int,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:             id,
		groupID:        groupID,
		subscriptionID: subscriptionID,
		cycleID:        cycleID,
		vendorID:       vendorID,
		serviceDate:    serviceDate,
		slot:           slot,
		status:         status,
		unitPrice:      unitPrice,
		cancelSource:   cancelSource,
		seatNo:         seatNo,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (o *Order) transition(to Status) error {
	if o.status != StatusScheduled {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.status, to)
	}
	o.status = to
	o.updatedAt = biztime.NowUTC()
	return nil
}

// Cancel moves a scheduled order to cancelled and releases its seat.
func (o *Order) Cancel(source CancelSource) error {
	if err := o.transition(StatusCancelled); err != nil {
		return err
	}
	o.cancelSource = &source
	o.seatNo = nil
	return nil
}

// SkipByCustomer is allowed until cutoff before the slot's delivery window.
func (o *Order) SkipByCustomer(now time.Time, cutoff time.Duration) error {
	if !now.Before(o.SlotStartsAt().Add(-cutoff)) {
		return ErrSkipCutoffPassed
	}
	if err := o.transition(StatusSkippedByCustomer); err != nil {
		return err
	}
	o.seatNo = nil
	return nil
}

func (o *Order) SkipByVendor() error {
	if err := o.transition(StatusSkippedByVendor); err != nil {
		return err
	}
	o.seatNo = nil
	return nil
}

func (o *Order) MarkDelivered() error {
	return o.transition(StatusDelivered)
}

func (o *Order) MarkFailedOps() error {
	return o.transition(StatusFailedOps)
}

func (o *Order) MarkCustomerNoShow() error {
	return o.transition(StatusCustomerNoShow)
}

// Reinstate returns a pause-cancelled order to scheduled. It is the only
// way out of a non-scheduled state.
func (o *Order) Reinstate() error {
	if o.status != StatusCancelled || o.cancelSource == nil || *o.cancelSource != CancelSourcePause {
		return ErrNotReinstatable
	}
	o.status = StatusScheduled
	o.cancelSource = nil
	o.updatedAt = biztime.NowUTC()
	return nil
}

// AssignSeat records the capacity seat held by the order.
func (o *Order) AssignSeat(seat int) {
	o.seatNo = &seat
}

// SlotStartsAt is the instant the slot's delivery window opens on the
// service date, in the business timezone.
func (o *Order) SlotStartsAt() time.Time {
	return biztime.StartOfDateUTC(o.serviceDate).Add(o.slot.StartOffset())
}

func (o *Order) ID() uint                    { return o.id }
func (o *Order) GroupID() uint               { return o.groupID }
func (o *Order) SubscriptionID() uint        { return o.subscriptionID }
func (o *Order) CycleID() uint               { return o.cycleID }
func (o *Order) VendorID() uint              { return o.vendorID }
func (o *Order) ServiceDate() time.Time      { return o.serviceDate }
func (o *Order) Slot() vo.Slot               { return o.slot }
func (o *Order) Status() Status              { return o.status }
func (o *Order) UnitPrice() shared.Money     { return o.unitPrice }
func (o *Order) CancelSource() *CancelSource { return o.cancelSource }
func (o *Order) SeatNo() *int                { return o.seatNo }
func (o *Order) CreatedAt() time.Time        { return o.createdAt }
func (o *Order) UpdatedAt() time.Time        { return o.updatedAt }

func (o *Order) IsScheduled() bool { return o.status == StatusScheduled }

func (o *Order) SetID(id uint) {
	o.id = id
}

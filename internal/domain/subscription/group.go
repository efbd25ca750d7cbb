package subscription

import (
	"fmt"
	"time"

	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/shared/biztime"
)

// Group is one vendor–consumer relationship. It owns the meal lines and the
// cycle history, and carries the pause/cancel bookkeeping.
type Group struct {
	id            uint
	consumerID    uint
	vendorID      uint
	status        vo.GroupStatus
	paymentMethod vo.PaymentMethod
	cadence       calendar.Period
	currency      string
	customerRef   *string
	mandateRef    *string
	checkoutKey   *string
	pausedFrom    *time.Time
	pausedCycleID *uint
	cancelledAt   *time.Time
	cancelReason  string
	version       int
	createdAt     time.Time
	updatedAt     time.Time
}

func NewGroup(consumerID, vendorID uint, cadence calendar.Period, method vo.PaymentMethod, currency string) (*Group, error) {
	if consumerID == 0 {
		return nil, fmt.Errorf("consumer ID is required")
	}
	if vendorID == 0 {
		return nil, fmt.Errorf("vendor ID is required")
	}
	if !cadence.IsValid() {
		return nil, fmt.Errorf("invalid renewal cadence: %s", cadence)
	}
	if !method.IsValid() {
		return nil, fmt.Errorf("invalid payment method: %s", method)
	}

	now := biztime.NowUTC()
	return &Group{
		consumerID:    consumerID,
		vendorID:      vendorID,
		status:        vo.StatusActive,
		paymentMethod: method,
		cadence:       cadence,
		currency:      currency,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

func ReconstructGroup(
	id, consumerID, vendorID uint,
	status vo.GroupStatus,
	paymentMethod vo.PaymentMethod,
	cadence calendar.Period,
	currency string,
	customerRef, mandateRef, checkoutKey *string,
	pausedFrom *time.Time,
	pausedCycleID *uint,
	cancelledAt *time.Time,
	cancelReason string,
	version int,
	createdAt, updatedAt time.Time,
) *Group {
	return &Group{
		id:            id,
		consumerID:    consumerID,
		vendorID:      vendorID,
		status:        status,
		paymentMethod: paymentMethod,
		cadence:       cadence,
		currency:      currency,
		customerRef:   customerRef,
		mandateRef:    mandateRef,
		checkoutKey:   checkoutKey,
		pausedFrom:    pausedFrom,
		pausedCycleID: pausedCycleID,
		cancelledAt:   cancelledAt,
		cancelReason:  cancelReason,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// Pause marks the group paused from the given civil date. cycleID is the
// cycle in effect when the pause was requested; resume classification is
// measured against it.
func (g *Group) Pause(from time.Time, cycleID uint) error {
	if !g.status.CanTransitionTo(vo.StatusPaused) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.status, vo.StatusPaused)
	}
	g.status = vo.StatusPaused
	g.pausedFrom = &from
	g.pausedCycleID = &cycleID
	g.updatedAt = biztime.NowUTC()
	return nil
}

// Resume reactivates a paused group and clears the pause bookkeeping.
func (g *Group) Resume() error {
	if !g.status.CanTransitionTo(vo.StatusActive) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, g.status, vo.StatusActive)
	}
	g.status = vo.StatusActive
	g.pausedFrom = nil
	g.pausedCycleID = nil
	g.updatedAt = biztime.NowUTC()
	return nil
}

func (g *Group) Cancel(at time.Time, reason string) error {
	if g.status.IsTerminal() {
		return ErrGroupCancelled
	}
	g.status = vo.StatusCancelled
	g.cancelledAt = &at
	g.cancelReason = reason
	g.updatedAt = biztime.NowUTC()
	return nil
}

func (g *Group) SetGatewayRefs(customerRef, mandateRef string) {
	if customerRef != "" {
		g.customerRef = &customerRef
	}
	if mandateRef != "" {
		g.mandateRef = &mandateRef
	}
	g.updatedAt = biztime.NowUTC()
}

// SetCheckoutKey records the client's idempotency key for the checkout
// that created the group. Keys are unique per consumer.
func (g *Group) SetCheckoutKey(key string) {
	if key != "" {
		g.checkoutKey = &key
	}
}

// IsOwnedBy reports whether principal is the group's consumer.
func (g *Group) IsOwnedBy(principal uint) bool {
	return principal != 0 && g.consumerID == principal
}

func (g *Group) ID() uint                        { return g.id }
func (g *Group) ConsumerID() uint                { return g.consumerID }
func (g *Group) VendorID() uint                  { return g.vendorID }
func (g *Group) Status() vo.GroupStatus          { return g.status }
func (g *Group) PaymentMethod() vo.PaymentMethod { return g.paymentMethod }
func (g *Group) Cadence() calendar.Period        { return g.cadence }
func (g *Group) Currency() string                { return g.currency }
func (g *Group) CustomerRef() *string            { return g.customerRef }
func (g *Group) MandateRef() *string             { return g.mandateRef }
func (g *Group) CheckoutKey() *string            { return g.checkoutKey }
func (g *Group) PausedFrom() *time.Time          { return g.pausedFrom }
func (g *Group) PausedCycleID() *uint            { return g.pausedCycleID }
func (g *Group) CancelledAt() *time.Time         { return g.cancelledAt }
func (g *Group) CancelReason() string            { return g.cancelReason }
func (g *Group) Version() int                    { return g.version }
func (g *Group) CreatedAt() time.Time            { return g.createdAt }
func (g *Group) UpdatedAt() time.Time            { return g.updatedAt }

func (g *Group) IsActive() bool    { return g.status == vo.StatusActive }
func (g *Group) IsPaused() bool    { return g.status == vo.StatusPaused }
func (g *Group) IsCancelled() bool { return g.status == vo.StatusCancelled }

func (g *Group) SetID(id uint) {
	g.id = id
}

// SetVersion is called by the repository after a successful optimistic update.
func (g *Group) SetVersion(v int) {
	g.version = v
}

package mappers

import (
	"fmt"

	"github.com/homechef-inc/mealsub/internal/domain/calendar"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	"github.com/homechef-inc/mealsub/internal/domain/subscription"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
)

func GroupToModel(g *subscription.Group) *models.SubscriptionGroupModel {
	return &models.SubscriptionGroupModel{
		ID:            g.ID(),
		ConsumerID:    g.ConsumerID(),
		VendorID:      g.VendorID(),
		Status:        g.Status().String(),
		PaymentMethod: g.PaymentMethod().String(),
		Cadence:       g.Cadence().String(),
		Currency:      g.Currency(),
		CustomerRef:   g.CustomerRef(),
		MandateRef:    g.MandateRef(),
		CheckoutKey:   g.CheckoutKey(),
		PausedFrom:    g.PausedFrom(),
		PausedCycleID: g.PausedCycleID(),
		CancelledAt:   g.CancelledAt(),
		CancelReason:  g.CancelReason(),
		Version:       g.Version(),
		CreatedAt:     g.CreatedAt(),
		UpdatedAt:     g.UpdatedAt(),
	}
}

func GroupToDomain(m *models.SubscriptionGroupModel) (*subscription.Group, error) {
	status := vo.GroupStatus(m.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid group status: %s", m.Status)
	}
	cadence := calendar.Period(m.Cadence)
	if !cadence.IsValid() {
		return nil, fmt.Errorf("invalid cadence: %s", m.Cadence)
	}

	return subscription.ReconstructGroup(
		m.ID, m.ConsumerID, m.VendorID,
		status,
		vo.PaymentMethod(m.PaymentMethod),
		cadence,
		m.Currency,
		m.CustomerRef, m.MandateRef, m.CheckoutKey,
		utcPtr(m.PausedFrom),
		m.PausedCycleID,
		utcPtr(m.CancelledAt),
		m.CancelReason,
		m.Version,
		m.CreatedAt.UTC(), m.UpdatedAt.UTC(),
	), nil
}

func SubscriptionToModel(s *subscription.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:            s.ID(),
		GroupID:       s.GroupID(),
		Slot:          s.Slot().String(),
		Weekdays:      s.Weekdays().String(),
		UnitPrice:     s.UnitPrice().Minor(),
		Currency:      s.UnitPrice().Currency(),
		SkipAllowance: s.SkipAllowance(),
		SkipsUsed:     s.SkipsUsed(),
		Status:        s.Status().String(),
		CreatedAt:     s.CreatedAt(),
		UpdatedAt:     s.UpdatedAt(),
	}
}

func SubscriptionToDomain(m *models.SubscriptionModel) (*subscription.Subscription, error) {
	slot, err := vo.ParseSlot(m.Slot)
	if err != nil {
		return nil, err
	}
	weekdays, err := calendar.ParseWeekdayList(m.Weekdays)
	if err != nil {
		return nil, fmt.Errorf("subscription %d: %w", m.ID, err)
	}

	return subscription.ReconstructSubscription(
		m.ID, m.GroupID,
		slot,
		weekdays,
		shared.NewMoney(m.UnitPrice, m.Currency),
		m.SkipAllowance, m.SkipsUsed,
		vo.GroupStatus(m.Status),
		m.CreatedAt.UTC(), m.UpdatedAt.UTC(),
	), nil
}

func SubscriptionsToDomain(ms []models.SubscriptionModel) ([]*subscription.Subscription, error) {
	out := make([]*subscription.Subscription, 0, len(ms))
	for i := range ms {
		s, err := SubscriptionToDomain(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func CycleToModel(c *subscription.Cycle) *models.CycleModel {
	return &models.CycleModel{
		ID:          c.ID(),
		GroupID:     c.GroupID(),
		Kind:        string(c.Kind()),
		StartDate:   c.Start(),
		EndDate:     c.End(),
		RenewalDate: c.RenewalDate(),
		CreatedAt:   c.CreatedAt(),
	}
}

func CycleToDomain(m *models.CycleModel) *subscription.Cycle {
	return subscription.ReconstructCycle(
		m.ID, m.GroupID,
		subscription.CycleKind(m.Kind),
		m.StartDate.UTC(), m.EndDate.UTC(), m.RenewalDate.UTC(),
		m.CreatedAt.UTC(),
	)
}

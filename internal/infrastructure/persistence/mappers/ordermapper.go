package mappers

import (
	"fmt"

	"github.com/homechef-inc/mealsub/internal/domain/order"
	"github.com/homechef-inc/mealsub/internal/domain/setting"
	"github.com/homechef-inc/mealsub/internal/domain/shared"
	vo "github.com/homechef-inc/mealsub/internal/domain/subscription/valueobjects"
	"github.com/homechef-inc/mealsub/internal/infrastructure/persistence/models"
)

func OrderToModel(o *order.Order) *models.OrderModel {
	m := &models.OrderModel{
		ID:             o.ID(),
		GroupID:        o.GroupID(),
		SubscriptionID: o.SubscriptionID(),
		CycleID:        o.CycleID(),
		VendorID:       o.VendorID(),
		ServiceDate:    o.ServiceDate(),
		Slot:           o.Slot().String(),
		Status:         string(o.Status()),
		UnitPrice:      o.UnitPrice().Minor(),
		Currency:       o.UnitPrice().Currency(),
		SeatNo:         o.SeatNo(),
		CreatedAt:      o.CreatedAt(),
		UpdatedAt:      o.UpdatedAt(),
	}
	if src := o.CancelSource(); src != nil {
		s := string(*src)
		m.CancelSource = &s
	}
	return m
}

func OrderToDomain(m *models.OrderModel) (*order.Order, error) {
	status := order.Status(m.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid order status: %s", m.Status)
	}
	slot, err := vo.ParseSlot(m.Slot)
	if err != nil {
		return nil, err
	}
	var src *order.CancelSource
	if m.CancelSource != nil {
		s := order.CancelSource(*m.CancelSource)
		src = &s
	}

	return order.ReconstructOrder(
		m.ID, m.GroupID, m.SubscriptionID, m.CycleID, m.VendorID,
		m.ServiceDate.UTC(),
		slot,
		status,
		shared.NewMoney(m.UnitPrice, m.Currency),
		src,
		m.SeatNo,
		m.CreatedAt.UTC(), m.UpdatedAt.UTC(),
	), nil
}

func OrdersToDomain(ms []models.OrderModel) ([]*order.Order, error) {
	out := make([]*order.Order, 0, len(ms))
	for i := range ms {
		o, err := OrderToDomain(&ms[i])
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func HolidayToDomain(m *models.VendorHolidayModel) order.Holiday {
	return order.Holiday{
		ID:       m.ID,
		VendorID: m.VendorID,
		Date:     m.Date.UTC(),
		Slot:     vo.Slot(m.Slot),
		Note:     m.Note,
	}
}

func SettingToDomain(m *models.PlatformSettingModel) *setting.Setting {
	return setting.ReconstructSetting(m.Key, m.Value, m.UpdatedAt.UTC())
}

package http

import (
	"github.com/homechef-inc/mealsub/internal/interfaces/http/handlers"
	"github.com/homechef-inc/mealsub/internal/shared/logger"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	webhookHandler  *handlers.PaymentWebhookHandler
	checkoutHandler *handlers.CheckoutHandler
	groupHandler    *handlers.GroupHandler
	orderHandler    *handlers.OrderHandler
	adminHandler    *handlers.AdminHandler
}

func newHandlers(u *allUseCases, signatureHeader string, log logger.Interface) *allHandlers {
	return &allHandlers{
		webhookHandler:  handlers.NewPaymentWebhookHandler(u.webhook, signatureHeader, log),
		checkoutHandler: handlers.NewCheckoutHandler(u.checkout, log),
		groupHandler:    handlers.NewGroupHandler(u.getGroup, u.pause, u.resume, u.cancel, log),
		orderHandler:    handlers.NewOrderHandler(u.skipOrder, log),
		adminHandler:    handlers.NewAdminHandler(u.renewals, u.vendorHoliday, u.slotCapacity, u.updateSettings, log),
	}
}

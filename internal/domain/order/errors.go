package order

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderExists       = errors.New("order already exists for subscription, date and slot")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrNotReinstatable   = errors.New("only pause-cancelled orders can be reinstated")
	ErrSkipCutoffPassed  = errors.New("skip cutoff has passed for this order")
	ErrCapacityExhausted = errors.New("vendor slot capacity exhausted")
	ErrSeatTaken         = errors.New("capacity seat already taken")
)

package subscription

import "errors"

var (
	ErrGroupNotFound        = errors.New("subscription group not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrCycleNotFound        = errors.New("cycle not found")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrGroupCancelled       = errors.New("subscription group is cancelled")
	ErrNoSkipsLeft          = errors.New("skip allowance exhausted for this cycle")
	ErrVersionConflict      = errors.New("subscription group was modified concurrently")
	ErrCycleExists          = errors.New("cycle already exists for this start date")
	ErrCheckoutKeyUsed      = errors.New("checkout key already used")
)

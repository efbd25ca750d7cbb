package billing

import "errors"

var (
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrInvalidTransition = errors.New("invalid invoice status transition")
	// ErrStatusChanged is returned by a compare-and-set that lost its race.
	ErrStatusChanged = errors.New("invoice status changed concurrently")
	ErrInvoiceExists = errors.New("invoice already exists for this cycle")
	// ErrRefundExists is returned when an invoice already has a refund request.
	ErrRefundExists = errors.New("refund request already exists for this invoice")
)

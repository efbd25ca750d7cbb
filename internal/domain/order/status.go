package order

type Status string

const (
	StatusScheduled         Status = "scheduled"
	StatusDelivered         Status = "delivered"
	StatusSkippedByCustomer Status = "skipped_by_customer"
	StatusSkippedByVendor   Status = "skipped_by_vendor"
	StatusFailedOps         Status = "failed_ops"
	StatusCustomerNoShow    Status = "customer_no_show"
	StatusCancelled         Status = "cancelled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusDelivered, StatusSkippedByCustomer, StatusSkippedByVendor,
		StatusFailedOps, StatusCustomerNoShow, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the order has left scheduled.
func (s Status) IsTerminal() bool {
	return s != StatusScheduled
}

// HoldsSeat reports whether an order in this status occupies vendor capacity.
func (s Status) HoldsSeat() bool {
	return s == StatusScheduled || s == StatusDelivered
}

// CancelSource records why an order was cancelled.
type CancelSource string

const (
	CancelSourcePause        CancelSource = "pause"
	CancelSourceCancellation CancelSource = "cancellation"
	CancelSourceVendor       CancelSource = "vendor"
)

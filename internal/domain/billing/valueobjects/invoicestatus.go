package valueobjects

type InvoiceStatus string

const (
	InvoiceStatusPendingPayment InvoiceStatus = "pending_payment"
	InvoiceStatusPaid           InvoiceStatus = "paid"
	InvoiceStatusFailed         InvoiceStatus = "failed"
	InvoiceStatusVoid           InvoiceStatus = "void"
)

// invoiceTransitions is monotone: nothing re-enters pending_payment. A paid
// invoice is voided by a refund; an unpaid one when its group is cancelled.
var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusPendingPayment: {InvoiceStatusPaid, InvoiceStatusFailed, InvoiceStatusVoid},
	InvoiceStatusFailed:         {InvoiceStatusPaid, InvoiceStatusVoid},
	InvoiceStatusPaid:           {InvoiceStatusVoid},
	InvoiceStatusVoid:           {},
}

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) IsValid() bool {
	_, ok := invoiceTransitions[s]
	return ok
}

func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	for _, allowed := range invoiceTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// SourcesOf lists the statuses from which target may be entered. It is the
// WHERE clause of the compare-and-set update.
func SourcesOf(target InvoiceStatus) []InvoiceStatus {
	var from []InvoiceStatus
	for _, s := range []InvoiceStatus{InvoiceStatusPendingPayment, InvoiceStatusFailed, InvoiceStatusPaid, InvoiceStatusVoid} {
		if s.CanTransitionTo(target) {
			from = append(from, s)
		}
	}
	return from
}

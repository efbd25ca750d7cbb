package valueobjects

// PaymentMethod is how a group's invoices are collected.
type PaymentMethod string

const (
	PaymentMethodUPIAutopay  PaymentMethod = "upi_autopay"
	PaymentMethodCardMandate PaymentMethod = "card_mandate"
	PaymentMethodOneTime     PaymentMethod = "one_time"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodUPIAutopay, PaymentMethodCardMandate, PaymentMethodOneTime:
		return true
	}
	return false
}

// IsRecurring reports whether the method needs a stored mandate.
func (m PaymentMethod) IsRecurring() bool {
	return m == PaymentMethodUPIAutopay || m == PaymentMethodCardMandate
}

func (m PaymentMethod) String() string {
	return string(m)
}

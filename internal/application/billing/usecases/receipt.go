package usecases

import "github.com/google/uuid"

// NewReceipt returns a gateway receipt id. It doubles as the idempotency
// key for creating the gateway order.
func NewReceipt() string {
	return "rcpt_" + uuid.NewString()
}

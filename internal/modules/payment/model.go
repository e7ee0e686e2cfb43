// README: Payment record created at ride settlement.
package payment

import (
	"time"

	"ridenow/internal/types"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
)

type Method string

const (
	MethodCash   Method = "CASH"
	MethodWallet Method = "WALLET"
)

// Payment is written once per completed ride; Amount equals the ride fare.
type Payment struct {
	ID        types.ID
	RideID    types.ID
	Amount    float64
	Method    Method
	Status    Status
	CreatedAt time.Time
}

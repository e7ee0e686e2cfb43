// README: Ride request, ride aggregate, and lifecycle status definitions.
package ride

import (
	"time"

	"ridenow/internal/modules/payment"
	"ridenow/internal/types"
)

type RequestStatus string

const (
	RequestPending RequestStatus = "PENDING"
	RequestMatched RequestStatus = "MATCHED"
)

// RideRequest is what a rider submits. It stays PENDING until a driver
// accepts it, which promotes it to a Ride.
type RideRequest struct {
	ID        types.ID
	RiderID   types.ID
	Pickup    types.Point
	Dropoff   types.Point
	Status    RequestStatus
	CreatedAt time.Time
}

type Status string

const (
	StatusAccepted  Status = "ACCEPTED"
	StatusStarted   Status = "STARTED"
	StatusEnded     Status = "ENDED"
	StatusCancelled Status = "CANCELLED"
)

// Ride exists from acceptance onward and always references exactly one
// driver and one rider.
type Ride struct {
	ID            types.ID
	RequestID     types.ID
	RiderID       types.ID
	DriverID      types.ID
	Pickup        types.Point
	Dropoff       types.Point
	OTP           string
	Status        Status
	StatusVersion int
	Fare          *float64
	PaymentMethod payment.Method
	CreatedAt     time.Time
	StartedAt     *time.Time
	EndedAt       *time.Time
}

// AllowedTransitions represents the ride state flow as code. ENDED and
// CANCELLED are terminal: no outgoing transitions.
var AllowedTransitions = map[Status][]Status{
	StatusAccepted: {StatusStarted, StatusCancelled},
	StatusStarted:  {StatusEnded, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

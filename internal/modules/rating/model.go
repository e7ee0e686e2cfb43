// README: Post-ride rating records.
package rating

import (
	"time"

	"ridenow/internal/types"
)

type RateeType string

const (
	RateeDriver RateeType = "DRIVER"
	RateeRider  RateeType = "RIDER"
)

type Rating struct {
	ID        types.ID
	RideID    types.ID
	RateeType RateeType
	RateeID   types.ID
	Score     int
	CreatedAt time.Time
}

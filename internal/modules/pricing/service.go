// README: Fare calculation strategies.
package pricing

import (
	"context"

	"ridenow/internal/types"
)

// RideFareMultiplier converts kilometres into fare units.
const RideFareMultiplier = 10.0

// Distancer computes the distance in kilometres between two points. The
// implementation (great-circle or routed) is a collaborator concern.
type Distancer interface {
	DistanceKm(ctx context.Context, a, b types.Point) (float64, error)
}

// FareStrategy prices a trip between two points.
type FareStrategy interface {
	CalculateFare(ctx context.Context, pickup, dropoff types.Point) (float64, error)
}

// DefaultFare is the strategy used when no override is configured:
// distance times a fixed multiplier. No surge, no minimum fare.
type DefaultFare struct {
	distance Distancer
}

func NewDefaultFare(distance Distancer) *DefaultFare {
	return &DefaultFare{distance: distance}
}

func (f *DefaultFare) CalculateFare(ctx context.Context, pickup, dropoff types.Point) (float64, error) {
	km, err := f.distance.DistanceKm(ctx, pickup, dropoff)
	if err != nil {
		return 0, err
	}
	return km * RideFareMultiplier, nil
}

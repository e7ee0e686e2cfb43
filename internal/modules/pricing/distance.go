// README: Great-circle distance implementation of Distancer.
package pricing

import (
	"context"
	"math"

	"ridenow/internal/types"
)

const earthRadiusKm = 6371.0

// Haversine measures straight-line (great-circle) distance. It is the
// fallback when no routing backend is configured.
type Haversine struct{}

func (Haversine) DistanceKm(_ context.Context, a, b types.Point) (float64, error) {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c, nil
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// README: Matching candidates and strategy names.
package matching

import "ridenow/internal/types"

// StrategyNearest and StrategyHighestRated are the two configurable
// driver-matching policies.
const (
	StrategyNearest      = "nearest"
	StrategyHighestRated = "highest_rated"
)

// MatchLimit caps how many candidate drivers a pre-screen returns.
const MatchLimit = 10

// Candidate is an available driver considered for a ride request.
type Candidate struct {
	DriverID   types.ID
	Position   types.Point
	Rating     float64
	DistanceKm float64
}

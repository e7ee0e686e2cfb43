// README: Driver matching strategies and geo pool maintenance.
package matching

import (
	"context"
	"fmt"

	"ridenow/internal/config"
	"ridenow/internal/types"
)

// Pool is the candidate query capability the strategies delegate to.
type Pool interface {
	NearestAvailable(ctx context.Context, p types.Point, radiusKm float64, limit int) ([]Candidate, error)
	TopRatedAvailable(ctx context.Context, p types.Point, radiusKm float64, limit int) ([]Candidate, error)
}

// DriverMatchingStrategy ranks available drivers for a pickup point. An
// empty result means no drivers around, not an error.
type DriverMatchingStrategy interface {
	FindMatchingDrivers(ctx context.Context, pickup types.Point) ([]Candidate, error)
}

// NearestDriverStrategy returns the closest available drivers, ascending by
// distance. The ordering comes from the underlying geo query unmodified.
type NearestDriverStrategy struct {
	pool     Pool
	radiusKm float64
	limit    int
}

func NewNearestDriverStrategy(pool Pool, radiusKm float64, limit int) *NearestDriverStrategy {
	return &NearestDriverStrategy{pool: pool, radiusKm: radiusKm, limit: limit}
}

func (s *NearestDriverStrategy) FindMatchingDrivers(ctx context.Context, pickup types.Point) ([]Candidate, error) {
	return s.pool.NearestAvailable(ctx, pickup, s.radiusKm, s.limit)
}

// HighestRatedDriverStrategy returns the best-rated available drivers within
// the proximity bound, descending by rating.
type HighestRatedDriverStrategy struct {
	pool     Pool
	radiusKm float64
	limit    int
}

func NewHighestRatedDriverStrategy(pool Pool, radiusKm float64, limit int) *HighestRatedDriverStrategy {
	return &HighestRatedDriverStrategy{pool: pool, radiusKm: radiusKm, limit: limit}
}

func (s *HighestRatedDriverStrategy) FindMatchingDrivers(ctx context.Context, pickup types.Point) ([]Candidate, error) {
	return s.pool.TopRatedAvailable(ctx, pickup, s.radiusKm, s.limit)
}

// NewStrategy selects the configured policy at construction time.
func NewStrategy(cfg config.MatchingConfig, pool Pool) (DriverMatchingStrategy, error) {
	limit := cfg.Limit
	if limit <= 0 || limit > MatchLimit {
		limit = MatchLimit
	}
	switch cfg.Strategy {
	case StrategyNearest, "":
		return NewNearestDriverStrategy(pool, cfg.RadiusKm, limit), nil
	case StrategyHighestRated:
		return NewHighestRatedDriverStrategy(pool, cfg.RadiusKm, limit), nil
	default:
		return nil, fmt.Errorf("unknown matching strategy %q", cfg.Strategy)
	}
}

// Service bundles the selected strategy with geo pool maintenance. Drivers
// enter the pool when they become available and leave it when they accept a
// ride or go offline.
type Service struct {
	store    *Store
	strategy DriverMatchingStrategy
}

func NewService(store *Store, strategy DriverMatchingStrategy) *Service {
	return &Service{store: store, strategy: strategy}
}

func (s *Service) FindMatchingDrivers(ctx context.Context, pickup types.Point) ([]Candidate, error) {
	return s.strategy.FindMatchingDrivers(ctx, pickup)
}

func (s *Service) DriverOnline(ctx context.Context, id types.ID, pos types.Point) error {
	return s.store.AddDriver(ctx, id, pos)
}

func (s *Service) DriverOffline(ctx context.Context, id types.ID) error {
	return s.store.RemoveDriver(ctx, id)
}

func (s *Service) UpdateDriverLocation(ctx context.Context, id types.ID, pos types.Point) error {
	return s.store.AddDriver(ctx, id, pos)
}

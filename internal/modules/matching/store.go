// README: Matching store: Redis GEO pool of available drivers plus Postgres ratings.
package matching

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"ridenow/internal/types"
)

const driverGeoKey = "matching:drivers"

type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Store struct {
	db    DB
	redis *redis.Client
}

func NewStore(db DB, redis *redis.Client) *Store {
	return &Store{db: db, redis: redis}
}

func (s *Store) AddDriver(ctx context.Context, id types.ID, pos types.Point) error {
	return s.redis.GeoAdd(ctx, driverGeoKey, &redis.GeoLocation{
		Name:      string(id),
		Longitude: pos.Lng,
		Latitude:  pos.Lat,
	}).Err()
}

func (s *Store) RemoveDriver(ctx context.Context, id types.ID) error {
	return s.redis.ZRem(ctx, driverGeoKey, string(id)).Err()
}

// NearestAvailable returns up to limit available drivers within radiusKm of
// p, ascending by distance. The geo pool may lag the availability flag, so
// results are re-checked against the drivers table.
func (s *Store) NearestAvailable(ctx context.Context, p types.Point, radiusKm float64, limit int) ([]Candidate, error) {
	nearby, err := s.searchGeo(ctx, p, radiusKm, limit)
	if err != nil {
		return nil, err
	}
	if len(nearby) == 0 {
		return nil, nil
	}

	ratings, err := s.availableRatings(ctx, candidateIDs(nearby))
	if err != nil {
		return nil, err
	}

	out := make([]Candidate, 0, limit)
	for _, c := range nearby {
		rating, ok := ratings[c.DriverID]
		if !ok {
			continue
		}
		c.Rating = rating
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// TopRatedAvailable returns up to limit available drivers within radiusKm of
// p, descending by rating.
func (s *Store) TopRatedAvailable(ctx context.Context, p types.Point, radiusKm float64, limit int) ([]Candidate, error) {
	nearby, err := s.searchGeo(ctx, p, radiusKm, limit)
	if err != nil {
		return nil, err
	}
	if len(nearby) == 0 {
		return nil, nil
	}
	byID := make(map[types.ID]Candidate, len(nearby))
	for _, c := range nearby {
		byID[c.DriverID] = c
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, rating FROM drivers
		WHERE id = ANY($1) AND available
		ORDER BY rating DESC
		LIMIT $2`,
		candidateIDs(nearby), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query top rated drivers: %w", err)
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		var id string
		var rating float64
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, err
		}
		c := byID[types.ID(id)]
		c.Rating = rating
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) searchGeo(ctx context.Context, p types.Point, radiusKm float64, limit int) ([]Candidate, error) {
	// Over-fetch: some pool members may have flipped unavailable since GeoAdd.
	results, err := s.redis.GeoSearchLocation(ctx, driverGeoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  p.Lng,
			Latitude:   p.Lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      limit * 5,
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, len(results))
	for i, r := range results {
		candidates[i] = Candidate{
			DriverID:   types.ID(r.Name),
			Position:   types.Point{Lat: r.Latitude, Lng: r.Longitude},
			DistanceKm: r.Dist,
		}
	}
	return candidates, nil
}

func (s *Store) availableRatings(ctx context.Context, ids []string) (map[types.ID]float64, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, rating FROM drivers WHERE id = ANY($1) AND available`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query available drivers: %w", err)
	}
	defer rows.Close()

	out := make(map[types.ID]float64)
	for rows.Next() {
		var id string
		var rating float64
		if err := rows.Scan(&id, &rating); err != nil {
			return nil, err
		}
		out[types.ID(id)] = rating
	}
	return out, rows.Err()
}

func candidateIDs(cs []Candidate) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = string(c.DriverID)
	}
	return ids
}

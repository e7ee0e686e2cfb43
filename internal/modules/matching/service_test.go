// README: Matching strategy tests.
package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridenow/internal/config"
	"ridenow/internal/types"
)

type stubPool struct {
	nearest  []Candidate
	topRated []Candidate

	gotRadius float64
	gotLimit  int
}

func (s *stubPool) NearestAvailable(_ context.Context, _ types.Point, radiusKm float64, limit int) ([]Candidate, error) {
	s.gotRadius, s.gotLimit = radiusKm, limit
	return s.nearest, nil
}

func (s *stubPool) TopRatedAvailable(_ context.Context, _ types.Point, radiusKm float64, limit int) ([]Candidate, error) {
	s.gotRadius, s.gotLimit = radiusKm, limit
	return s.topRated, nil
}

func TestNewStrategySelection(t *testing.T) {
	pool := &stubPool{}

	s, err := NewStrategy(config.MatchingConfig{Strategy: StrategyNearest, RadiusKm: 5, Limit: 3}, pool)
	require.NoError(t, err)
	assert.IsType(t, &NearestDriverStrategy{}, s)

	s, err = NewStrategy(config.MatchingConfig{Strategy: StrategyHighestRated, RadiusKm: 5, Limit: 3}, pool)
	require.NoError(t, err)
	assert.IsType(t, &HighestRatedDriverStrategy{}, s)

	// empty strategy falls back to nearest
	s, err = NewStrategy(config.MatchingConfig{RadiusKm: 5}, pool)
	require.NoError(t, err)
	assert.IsType(t, &NearestDriverStrategy{}, s)

	_, err = NewStrategy(config.MatchingConfig{Strategy: "alphabetical"}, pool)
	require.Error(t, err)
}

func TestNewStrategyClampsLimit(t *testing.T) {
	pool := &stubPool{}

	s, err := NewStrategy(config.MatchingConfig{Strategy: StrategyNearest, RadiusKm: 5, Limit: 500}, pool)
	require.NoError(t, err)

	_, err = s.FindMatchingDrivers(context.Background(), types.Point{})
	require.NoError(t, err)
	assert.Equal(t, MatchLimit, pool.gotLimit)

	s, err = NewStrategy(config.MatchingConfig{Strategy: StrategyNearest, RadiusKm: 5, Limit: 0}, pool)
	require.NoError(t, err)
	_, err = s.FindMatchingDrivers(context.Background(), types.Point{})
	require.NoError(t, err)
	assert.Equal(t, MatchLimit, pool.gotLimit)
}

func TestNearestStrategyPreservesPoolOrder(t *testing.T) {
	pool := &stubPool{nearest: []Candidate{
		{DriverID: "d1", DistanceKm: 0.4},
		{DriverID: "d2", DistanceKm: 1.1},
		{DriverID: "d3", DistanceKm: 2.9},
	}}
	s := NewNearestDriverStrategy(pool, 10, 10)

	got, err := s.FindMatchingDrivers(context.Background(), types.Point{Lat: 25, Lng: 121})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, types.ID("d1"), got[0].DriverID)
	assert.Equal(t, types.ID("d3"), got[2].DriverID)
	assert.Equal(t, 10.0, pool.gotRadius)
}

func TestHighestRatedStrategy(t *testing.T) {
	pool := &stubPool{topRated: []Candidate{
		{DriverID: "d9", Rating: 4.9},
		{DriverID: "d5", Rating: 4.2},
	}}
	s := NewHighestRatedDriverStrategy(pool, 10, 10)

	got, err := s.FindMatchingDrivers(context.Background(), types.Point{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, types.ID("d9"), got[0].DriverID)
}

func TestEmptyPoolIsNotAnError(t *testing.T) {
	s := NewNearestDriverStrategy(&stubPool{}, 10, 10)

	got, err := s.FindMatchingDrivers(context.Background(), types.Point{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

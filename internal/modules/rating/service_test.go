// README: Rating service tests.
package rating

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridenow/internal/modules/ride"
	"ridenow/internal/types"
)

type memStore struct {
	ratings []Rating
}

func (m *memStore) Append(_ context.Context, r *Rating) error {
	m.ratings = append(m.ratings, *r)
	return nil
}

func (m *memStore) AverageFor(_ context.Context, t RateeType, id types.ID) (float64, error) {
	sum, n := 0, 0
	for _, r := range m.ratings {
		if r.RateeType == t && r.RateeID == id {
			sum += r.Score
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

type stubRides struct {
	rides map[types.ID]*ride.Ride
}

func (s *stubRides) GetRide(_ context.Context, id types.ID) (*ride.Ride, error) {
	r, ok := s.rides[id]
	if !ok {
		return nil, fmt.Errorf("%w: ride %s", ride.ErrNotFound, id)
	}
	return r, nil
}

type recordingProfiles struct {
	driverRatings map[types.ID]float64
	riderRatings  map[types.ID]float64
}

func (p *recordingProfiles) UpdateDriverRating(_ context.Context, id types.ID, rating float64) error {
	p.driverRatings[id] = rating
	return nil
}

func (p *recordingProfiles) UpdateRiderRating(_ context.Context, id types.ID, rating float64) error {
	p.riderRatings[id] = rating
	return nil
}

func newTestService(rides map[types.ID]*ride.Ride) (*Service, *recordingProfiles) {
	profiles := &recordingProfiles{
		driverRatings: make(map[types.ID]float64),
		riderRatings:  make(map[types.ID]float64),
	}
	svc := NewService(&memStore{}, &stubRides{rides: rides}, profiles)
	return svc, profiles
}

func endedRide() map[types.ID]*ride.Ride {
	return map[types.ID]*ride.Ride{
		"ride-1": {ID: "ride-1", RiderID: "r1", DriverID: "d1", Status: ride.StatusEnded},
		"ride-2": {ID: "ride-2", RiderID: "r1", DriverID: "d1", Status: ride.StatusEnded},
		"ride-3": {ID: "ride-3", RiderID: "r1", DriverID: "d1", Status: ride.StatusStarted},
	}
}

func TestRateDriverUpdatesAverage(t *testing.T) {
	svc, profiles := newTestService(endedRide())
	ctx := context.Background()

	avg, err := svc.RateDriver(ctx, "ride-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)

	avg, err = svc.RateDriver(ctx, "ride-2", 4)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, avg, 1e-9)
	assert.InDelta(t, 4.5, profiles.driverRatings["d1"], 1e-9)
}

func TestRateRiderUpdatesAverage(t *testing.T) {
	svc, profiles := newTestService(endedRide())

	avg, err := svc.RateRider(context.Background(), "ride-1", 3)
	require.NoError(t, err)
	assert.Equal(t, 3.0, avg)
	assert.Equal(t, 3.0, profiles.riderRatings["r1"])
}

func TestScoreOutOfRange(t *testing.T) {
	svc, _ := newTestService(endedRide())

	for _, score := range []int{0, -1, 6} {
		_, err := svc.RateDriver(context.Background(), "ride-1", score)
		require.ErrorIs(t, err, ErrValidation, "score %d must be rejected", score)
	}
}

func TestRatingRequiresEndedRide(t *testing.T) {
	svc, _ := newTestService(endedRide())

	_, err := svc.RateDriver(context.Background(), "ride-3", 5)
	require.ErrorIs(t, err, ride.ErrInvalidState)
}

func TestRatingUnknownRide(t *testing.T) {
	svc, _ := newTestService(endedRide())

	_, err := svc.RateDriver(context.Background(), "missing", 5)
	require.ErrorIs(t, err, ride.ErrNotFound)
}

// README: Rating service: per-ride scores folded into running averages.
package rating

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ridenow/internal/modules/ride"
	"ridenow/internal/types"
)

var ErrValidation = errors.New("validation failed")

type Rides interface {
	GetRide(ctx context.Context, id types.ID) (*ride.Ride, error)
}

// Profiles writes recomputed averages back onto driver and rider records.
type Profiles interface {
	UpdateDriverRating(ctx context.Context, driverID types.ID, rating float64) error
	UpdateRiderRating(ctx context.Context, riderID types.ID, rating float64) error
}

type Service struct {
	store    Store
	rides    Rides
	profiles Profiles
}

func NewService(store Store, rides Rides, profiles Profiles) *Service {
	return &Service{store: store, rides: rides, profiles: profiles}
}

// RateDriver records a 1..5 score for the ride's driver. Only ended rides
// can be rated.
func (s *Service) RateDriver(ctx context.Context, rideID types.ID, score int) (float64, error) {
	return s.rate(ctx, rideID, score, RateeDriver)
}

// RateRider records a 1..5 score for the ride's rider.
func (s *Service) RateRider(ctx context.Context, rideID types.ID, score int) (float64, error) {
	return s.rate(ctx, rideID, score, RateeRider)
}

func (s *Service) rate(ctx context.Context, rideID types.ID, score int, t RateeType) (float64, error) {
	if score < 1 || score > 5 {
		return 0, fmt.Errorf("%w: score must be between 1 and 5", ErrValidation)
	}

	r, err := s.rides.GetRide(ctx, rideID)
	if err != nil {
		return 0, err
	}
	if r.Status != ride.StatusEnded {
		return 0, fmt.Errorf("%w: ride %s has not ended", ride.ErrInvalidState, rideID)
	}

	rateeID := r.DriverID
	if t == RateeRider {
		rateeID = r.RiderID
	}
	err = s.store.Append(ctx, &Rating{
		ID:        types.ID(uuid.NewString()),
		RideID:    rideID,
		RateeType: t,
		RateeID:   rateeID,
		Score:     score,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return 0, err
	}

	avg, err := s.store.AverageFor(ctx, t, rateeID)
	if err != nil {
		return 0, err
	}
	if t == RateeDriver {
		err = s.profiles.UpdateDriverRating(ctx, rateeID, avg)
	} else {
		err = s.profiles.UpdateRiderRating(ctx, rateeID, avg)
	}
	if err != nil {
		return 0, err
	}
	return avg, nil
}

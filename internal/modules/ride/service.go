// README: Ride lifecycle orchestrator: request, accept, start, end, cancel.
package ride

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ridenow/internal/modules/identity"
	"ridenow/internal/modules/matching"
	"ridenow/internal/modules/payment"
	"ridenow/internal/types"
)

var (
	ErrNotFound     = errors.New("ride not found")
	ErrConflict     = errors.New("ride conflict")
	ErrInvalidState = errors.New("invalid state transition")
	ErrValidation   = errors.New("validation failed")
)

// Matcher pre-screens candidate drivers for a pickup point.
type Matcher interface {
	FindMatchingDrivers(ctx context.Context, pickup types.Point) ([]matching.Candidate, error)
}

// DriverPool keeps the matching geo pool in sync with availability flips.
type DriverPool interface {
	DriverOnline(ctx context.Context, id types.ID, pos types.Point) error
	DriverOffline(ctx context.Context, id types.ID) error
}

// Drivers is the slice of the identity service the orchestrator needs.
type Drivers interface {
	FindDriverByID(ctx context.Context, id types.ID) (*identity.Driver, error)
	SetDriverAvailability(ctx context.Context, id types.ID, available bool) error
}

type Riders interface {
	FindRiderByID(ctx context.Context, id types.ID) (*identity.Rider, error)
}

type FareCalculator interface {
	CalculateFare(ctx context.Context, pickup, dropoff types.Point) (float64, error)
}

type Settler interface {
	Settle(ctx context.Context, cmd payment.SettleCommand) (*payment.Payment, error)
}

// EventPublisher exposes lifecycle events out-of-band. Publish failures must
// never fail the ride operation.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

type Service struct {
	store   Store
	matcher Matcher
	pool    DriverPool
	drivers Drivers
	riders  Riders
	fare    FareCalculator
	settler Settler
	events  EventPublisher
	log     *slog.Logger
}

func NewService(
	store Store,
	matcher Matcher,
	pool DriverPool,
	drivers Drivers,
	riders Riders,
	fare FareCalculator,
	settler Settler,
	events EventPublisher,
	log *slog.Logger,
) *Service {
	return &Service{
		store:   store,
		matcher: matcher,
		pool:    pool,
		drivers: drivers,
		riders:  riders,
		fare:    fare,
		settler: settler,
		events:  events,
		log:     log,
	}
}

type RequestCommand struct {
	RiderID types.ID
	Pickup  types.Point
	Dropoff types.Point
}

// RequestRide persists a PENDING request and pre-screens candidate drivers.
// Candidates reach drivers out-of-band via the published event; an empty
// candidate list is a valid outcome.
func (s *Service) RequestRide(ctx context.Context, cmd RequestCommand) (*RideRequest, []matching.Candidate, error) {
	if _, err := s.riders.FindRiderByID(ctx, cmd.RiderID); err != nil {
		return nil, nil, err
	}

	req := &RideRequest{
		ID:        types.ID(uuid.NewString()),
		RiderID:   cmd.RiderID,
		Pickup:    cmd.Pickup,
		Dropoff:   cmd.Dropoff,
		Status:    RequestPending,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, nil, err
	}

	candidates, err := s.matcher.FindMatchingDrivers(ctx, cmd.Pickup)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, "ride.requested", map[string]any{
		"request_id": req.ID,
		"rider_id":   req.RiderID,
		"pickup":     req.Pickup,
		"dropoff":    req.Dropoff,
		"candidates": len(candidates),
	})
	return req, candidates, nil
}

type AcceptCommand struct {
	RequestID types.ID
	DriverID  types.ID
}

// AcceptRide promotes a PENDING request to an ACCEPTED ride with a fresh
// OTP, and takes the driver off the market. Losing the pending flip to
// another driver is a conflict.
func (s *Service) AcceptRide(ctx context.Context, cmd AcceptCommand) (*Ride, error) {
	driver, err := s.drivers.FindDriverByID(ctx, cmd.DriverID)
	if err != nil {
		return nil, err
	}
	if !driver.Available {
		return nil, fmt.Errorf("%w: driver %s is not available", ErrConflict, cmd.DriverID)
	}

	req, err := s.store.GetRequest(ctx, cmd.RequestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: ride request %s", ErrNotFound, cmd.RequestID)
	}

	won, err := s.store.MarkRequestMatched(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, fmt.Errorf("%w: ride request %s already accepted", ErrConflict, req.ID)
	}

	r := &Ride{
		ID:            types.ID(uuid.NewString()),
		RequestID:     req.ID,
		RiderID:       req.RiderID,
		DriverID:      driver.ID,
		Pickup:        req.Pickup,
		Dropoff:       req.Dropoff,
		OTP:           generateOTP(),
		Status:        StatusAccepted,
		PaymentMethod: payment.MethodCash,
		CreatedAt:     time.Now(),
	}
	if err := s.store.CreateRide(ctx, r); err != nil {
		return nil, err
	}

	if err := s.drivers.SetDriverAvailability(ctx, driver.ID, false); err != nil {
		return nil, err
	}
	if err := s.pool.DriverOffline(ctx, driver.ID); err != nil {
		s.log.Warn("failed to remove driver from matching pool", "driver_id", driver.ID, "error", err)
	}

	s.publish(ctx, "ride.accepted", map[string]any{
		"ride_id":    r.ID,
		"request_id": req.ID,
		"driver_id":  driver.ID,
	})
	return r, nil
}

type StartCommand struct {
	RideID types.ID
	OTP    string
}

// StartRide verifies the OTP and moves the ride to STARTED. An OTP mismatch
// leaves the ride ACCEPTED.
func (s *Service) StartRide(ctx context.Context, cmd StartCommand) (*Ride, error) {
	r, err := s.getRide(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, StatusStarted) {
		return nil, transitionError(r.Status, StatusStarted)
	}
	if cmd.OTP != r.OTP {
		return nil, fmt.Errorf("%w: incorrect OTP for ride %s", ErrValidation, r.ID)
	}

	if err := s.swapStatus(ctx, r, StatusStarted); err != nil {
		return nil, err
	}
	s.publish(ctx, "ride.started", map[string]any{"ride_id": r.ID})
	return s.getRide(ctx, r.ID)
}

type EndCommand struct {
	RideID types.ID
}

// EndRide computes the fare, frees the driver, and settles the payment
// synchronously.
func (s *Service) EndRide(ctx context.Context, cmd EndCommand) (*Ride, error) {
	r, err := s.getRide(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, StatusEnded) {
		return nil, transitionError(r.Status, StatusEnded)
	}

	fare, err := s.fare.CalculateFare(ctx, r.Pickup, r.Dropoff)
	if err != nil {
		return nil, err
	}

	if err := s.swapStatus(ctx, r, StatusEnded); err != nil {
		return nil, err
	}
	if err := s.store.SetFare(ctx, r.ID, fare); err != nil {
		return nil, err
	}

	driver, err := s.freeDriver(ctx, r.DriverID)
	if err != nil {
		return nil, err
	}

	if _, err := s.settler.Settle(ctx, payment.SettleCommand{
		RideID:       r.ID,
		DriverUserID: driver.UserID,
		Fare:         fare,
		Method:       r.PaymentMethod,
	}); err != nil {
		return nil, err
	}

	s.publish(ctx, "ride.ended", map[string]any{"ride_id": r.ID, "fare": fare})
	return s.getRide(ctx, r.ID)
}

type CancelCommand struct {
	RideID types.ID
}

// CancelRide is allowed from ACCEPTED or STARTED. The assigned driver goes
// back on the market.
func (s *Service) CancelRide(ctx context.Context, cmd CancelCommand) (*Ride, error) {
	r, err := s.getRide(ctx, cmd.RideID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, StatusCancelled) {
		return nil, transitionError(r.Status, StatusCancelled)
	}

	if err := s.swapStatus(ctx, r, StatusCancelled); err != nil {
		return nil, err
	}
	if _, err := s.freeDriver(ctx, r.DriverID); err != nil {
		return nil, err
	}

	s.publish(ctx, "ride.cancelled", map[string]any{"ride_id": r.ID})
	return s.getRide(ctx, r.ID)
}

func (s *Service) GetRide(ctx context.Context, id types.ID) (*Ride, error) {
	return s.getRide(ctx, id)
}

func (s *Service) RidesByRider(ctx context.Context, riderID types.ID, limit, offset int) ([]Ride, error) {
	return s.store.ListByRider(ctx, riderID, limit, offset)
}

func (s *Service) RidesByDriver(ctx context.Context, driverID types.ID, limit, offset int) ([]Ride, error) {
	return s.store.ListByDriver(ctx, driverID, limit, offset)
}

func (s *Service) getRide(ctx context.Context, id types.ID) (*Ride, error) {
	r, err := s.store.GetRide(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: ride %s", ErrNotFound, id)
	}
	return r, nil
}

func (s *Service) swapStatus(ctx context.Context, r *Ride, to Status) error {
	ok, err := s.store.UpdateStatus(ctx, r.ID, r.Status, to, r.StatusVersion)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: ride %s changed concurrently", ErrConflict, r.ID)
	}
	return nil
}

func (s *Service) freeDriver(ctx context.Context, driverID types.ID) (*identity.Driver, error) {
	driver, err := s.drivers.FindDriverByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if err := s.drivers.SetDriverAvailability(ctx, driver.ID, true); err != nil {
		return nil, err
	}
	if err := s.pool.DriverOnline(ctx, driver.ID, driver.Location); err != nil {
		s.log.Warn("failed to return driver to matching pool", "driver_id", driver.ID, "error", err)
	}
	return driver, nil
}

func (s *Service) publish(ctx context.Context, key string, event any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, key, event); err != nil {
		s.log.Warn("failed to publish ride event", "routing_key", key, "error", err)
	}
}

func transitionError(from, to Status) error {
	return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidState, from, to)
}

// generateOTP returns a 6-digit one-time password for ride start
// verification.
func generateOTP() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return fmt.Sprintf("%06d", binary.BigEndian.Uint32(b[:])%1000000)
}

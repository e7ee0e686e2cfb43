// README: Ride store backed by PostgreSQL with optimistic status updates.
package ride

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ridenow/internal/types"
)

type Store interface {
	CreateRequest(ctx context.Context, req *RideRequest) error
	GetRequest(ctx context.Context, id types.ID) (*RideRequest, error)
	// MarkRequestMatched flips a PENDING request to MATCHED and reports
	// whether this call won the flip.
	MarkRequestMatched(ctx context.Context, id types.ID) (bool, error)

	CreateRide(ctx context.Context, r *Ride) error
	GetRide(ctx context.Context, id types.ID) (*Ride, error)
	// UpdateStatus applies a compare-and-swap on (status, status_version) and
	// reports whether the swap happened. Start/end timestamps are stamped on
	// the matching transition.
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error)
	SetFare(ctx context.Context, id types.ID, fare float64) error

	ListByRider(ctx context.Context, riderID types.ID, limit, offset int) ([]Ride, error)
	ListByDriver(ctx context.Context, driverID types.ID, limit, offset int) ([]Ride, error)
}

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgStore struct {
	db DB
}

func NewStore(db DB) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) CreateRequest(ctx context.Context, req *RideRequest) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ride_requests (id, rider_id, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(req.ID), string(req.RiderID),
		req.Pickup.Lat, req.Pickup.Lng, req.Dropoff.Lat, req.Dropoff.Lng,
		string(req.Status), req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ride request: %w", err)
	}
	return nil
}

func (s *PgStore) GetRequest(ctx context.Context, id types.ID) (*RideRequest, error) {
	var req RideRequest
	err := s.db.QueryRow(ctx, `
		SELECT id, rider_id, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, status, created_at
		FROM ride_requests WHERE id = $1`, string(id),
	).Scan(
		&req.ID, &req.RiderID,
		&req.Pickup.Lat, &req.Pickup.Lng, &req.Dropoff.Lat, &req.Dropoff.Lng,
		&req.Status, &req.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ride request: %w", err)
	}
	return &req, nil
}

func (s *PgStore) MarkRequestMatched(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE ride_requests SET status = $1 WHERE id = $2 AND status = $3`,
		string(RequestMatched), string(id), string(RequestPending),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PgStore) CreateRide(ctx context.Context, r *Ride) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO rides (
			id, request_id, rider_id, driver_id,
			pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
			otp, status, status_version, payment_method, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		string(r.ID), string(r.RequestID), string(r.RiderID), string(r.DriverID),
		r.Pickup.Lat, r.Pickup.Lng, r.Dropoff.Lat, r.Dropoff.Lng,
		r.OTP, string(r.Status), r.StatusVersion, string(r.PaymentMethod), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create ride: %w", err)
	}
	return nil
}

const rideColumns = `
	id, request_id, rider_id, driver_id,
	pickup_lat, pickup_lng, dropoff_lat, dropoff_lng,
	otp, status, status_version, fare, payment_method,
	created_at, started_at, ended_at`

func (s *PgStore) GetRide(ctx context.Context, id types.ID) (*Ride, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE id = $1`, string(id),
	)
	r, err := scanRide(row)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func scanRide(row pgx.Row) (*Ride, error) {
	var r Ride
	var fare *float64
	var startedAt, endedAt *time.Time
	err := row.Scan(
		&r.ID, &r.RequestID, &r.RiderID, &r.DriverID,
		&r.Pickup.Lat, &r.Pickup.Lng, &r.Dropoff.Lat, &r.Dropoff.Lng,
		&r.OTP, &r.Status, &r.StatusVersion, &fare, &r.PaymentMethod,
		&r.CreatedAt, &startedAt, &endedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan ride: %w", err)
	}
	r.Fare = fare
	r.StartedAt = startedAt
	r.EndedAt = endedAt
	return &r, nil
}

func (s *PgStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE rides
		SET status = $1,
		    status_version = status_version + 1,
		    started_at = CASE WHEN $1 = 'STARTED' THEN NOW() ELSE started_at END,
		    ended_at = CASE WHEN $1 = 'ENDED' THEN NOW() ELSE ended_at END
		WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to), string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PgStore) SetFare(ctx context.Context, id types.ID, fare float64) error {
	_, err := s.db.Exec(ctx, `UPDATE rides SET fare = $1 WHERE id = $2`, fare, string(id))
	return err
}

func (s *PgStore) ListByRider(ctx context.Context, riderID types.ID, limit, offset int) ([]Ride, error) {
	return s.list(ctx, `rider_id`, riderID, limit, offset)
}

func (s *PgStore) ListByDriver(ctx context.Context, driverID types.ID, limit, offset int) ([]Ride, error) {
	return s.list(ctx, `driver_id`, driverID, limit, offset)
}

func (s *PgStore) list(ctx context.Context, column string, id types.ID, limit, offset int) ([]Ride, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+rideColumns+` FROM rides WHERE `+column+` = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		string(id), limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rides: %w", err)
	}
	defer rows.Close()

	var out []Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// README: Identity store backed by PostgreSQL.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ridenow/internal/types"
)

// Store is the persistence contract the identity service depends on.
// *PgStore implements it; tests use in-memory fakes.
type Store interface {
	CreateUser(ctx context.Context, u *User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id types.ID) (*User, error)
	AddRole(ctx context.Context, userID types.ID, role Role) error

	CreateRider(ctx context.Context, r *Rider) error
	FindRiderByUserID(ctx context.Context, userID types.ID) (*Rider, error)
	FindRiderByID(ctx context.Context, id types.ID) (*Rider, error)
	UpdateRiderRating(ctx context.Context, id types.ID, rating float64) error

	CreateDriver(ctx context.Context, d *Driver) error
	FindDriverByID(ctx context.Context, id types.ID) (*Driver, error)
	FindDriverByUserID(ctx context.Context, userID types.ID) (*Driver, error)
	SetDriverAvailability(ctx context.Context, id types.ID, available bool) error
	UpdateDriverLocation(ctx context.Context, id types.ID, loc types.Point) error
	UpdateDriverRating(ctx context.Context, id types.ID, rating float64) error
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

func (s *PgStore) CreateUser(ctx context.Context, u *User) error {
	roles := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = string(r)
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (id, name, email, phone, password_hash, roles, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(u.ID), u.Name, u.Email, u.Phone, u.PasswordHash, roles, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByEmail returns (nil, nil) when no user exists; the service layer
// decides whether that is an error.
func (s *PgStore) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, email, phone, password_hash, roles, created_at
		FROM users WHERE email = $1`, email,
	)
	return scanUser(row)
}

func (s *PgStore) FindUserByID(ctx context.Context, id types.ID) (*User, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, email, phone, password_hash, roles, created_at
		FROM users WHERE id = $1`, string(id),
	)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var roles []string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &roles, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Roles = make([]Role, len(roles))
	for i, r := range roles {
		u.Roles[i] = Role(r)
	}
	return &u, nil
}

func (s *PgStore) AddRole(ctx context.Context, userID types.ID, role Role) error {
	_, err := s.db.Exec(ctx, `
		UPDATE users SET roles = array_append(roles, $1)
		WHERE id = $2 AND NOT ($1 = ANY(roles))`,
		string(role), string(userID),
	)
	return err
}

func (s *PgStore) CreateRider(ctx context.Context, r *Rider) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO riders (id, user_id, rating) VALUES ($1, $2, $3)`,
		string(r.ID), string(r.UserID), r.Rating,
	)
	return err
}

func (s *PgStore) FindRiderByUserID(ctx context.Context, userID types.ID) (*Rider, error) {
	return s.findRider(ctx, `SELECT id, user_id, rating FROM riders WHERE user_id = $1`, string(userID))
}

func (s *PgStore) FindRiderByID(ctx context.Context, id types.ID) (*Rider, error) {
	return s.findRider(ctx, `SELECT id, user_id, rating FROM riders WHERE id = $1`, string(id))
}

func (s *PgStore) findRider(ctx context.Context, sql, arg string) (*Rider, error) {
	var r Rider
	err := s.db.QueryRow(ctx, sql, arg).Scan(&r.ID, &r.UserID, &r.Rating)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan rider: %w", err)
	}
	return &r, nil
}

func (s *PgStore) UpdateRiderRating(ctx context.Context, id types.ID, rating float64) error {
	_, err := s.db.Exec(ctx, `UPDATE riders SET rating = $1 WHERE id = $2`, rating, string(id))
	return err
}

func (s *PgStore) CreateDriver(ctx context.Context, d *Driver) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO drivers (id, user_id, rating, available, vehicle_id, location_lat, location_lng)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(d.ID), string(d.UserID), d.Rating, d.Available, d.VehicleID, d.Location.Lat, d.Location.Lng,
	)
	return err
}

func (s *PgStore) FindDriverByID(ctx context.Context, id types.ID) (*Driver, error) {
	return s.findDriver(ctx, `
		SELECT id, user_id, rating, available, vehicle_id, location_lat, location_lng
		FROM drivers WHERE id = $1`, string(id))
}

func (s *PgStore) FindDriverByUserID(ctx context.Context, userID types.ID) (*Driver, error) {
	return s.findDriver(ctx, `
		SELECT id, user_id, rating, available, vehicle_id, location_lat, location_lng
		FROM drivers WHERE user_id = $1`, string(userID))
}

func (s *PgStore) findDriver(ctx context.Context, sql, arg string) (*Driver, error) {
	var d Driver
	err := s.db.QueryRow(ctx, sql, arg).Scan(
		&d.ID, &d.UserID, &d.Rating, &d.Available, &d.VehicleID, &d.Location.Lat, &d.Location.Lng,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan driver: %w", err)
	}
	return &d, nil
}

func (s *PgStore) SetDriverAvailability(ctx context.Context, id types.ID, available bool) error {
	_, err := s.db.Exec(ctx, `UPDATE drivers SET available = $1 WHERE id = $2`, available, string(id))
	return err
}

func (s *PgStore) UpdateDriverLocation(ctx context.Context, id types.ID, loc types.Point) error {
	_, err := s.db.Exec(ctx, `UPDATE drivers SET location_lat = $1, location_lng = $2 WHERE id = $3`,
		loc.Lat, loc.Lng, string(id))
	return err
}

func (s *PgStore) UpdateDriverRating(ctx context.Context, id types.ID, rating float64) error {
	_, err := s.db.Exec(ctx, `UPDATE drivers SET rating = $1 WHERE id = $2`, rating, string(id))
	return err
}

// README: Payment store backed by PostgreSQL.
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ridenow/internal/types"
)

type Store interface {
	Create(ctx context.Context, p *Payment) error
	FindByRide(ctx context.Context, rideID types.ID) (*Payment, error)
}

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgStore struct {
	db DB
}

func NewStore(db DB) *PgStore {
	return &PgStore{db: db}
}

func (s *PgStore) Create(ctx context.Context, p *Payment) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO payments (id, ride_id, amount, method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(p.ID), string(p.RideID), p.Amount, string(p.Method), string(p.Status), p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (s *PgStore) FindByRide(ctx context.Context, rideID types.ID) (*Payment, error) {
	var p Payment
	err := s.db.QueryRow(ctx, `
		SELECT id, ride_id, amount, method, status, created_at
		FROM payments WHERE ride_id = $1`,
		string(rideID),
	).Scan(&p.ID, &p.RideID, &p.Amount, &p.Method, &p.Status, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find payment: %w", err)
	}
	return &p, nil
}

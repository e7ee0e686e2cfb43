// README: Rating store backed by PostgreSQL.
package rating

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ridenow/internal/types"
)

type Store interface {
	Append(ctx context.Context, r *Rating) error
	// AverageFor returns the mean score across all ratings of one ratee.
	AverageFor(ctx context.Context, t RateeType, rateeID types.ID) (float64, error)
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

func (s *PgStore) Append(ctx context.Context, r *Rating) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ratings (id, ride_id, ratee_type, ratee_id, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(r.ID), string(r.RideID), string(r.RateeType), string(r.RateeID), r.Score, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append rating: %w", err)
	}
	return nil
}

func (s *PgStore) AverageFor(ctx context.Context, t RateeType, rateeID types.ID) (float64, error) {
	var avg float64
	err := s.db.QueryRow(ctx, `
		SELECT COALESCE(AVG(score), 0) FROM ratings
		WHERE ratee_type = $1 AND ratee_id = $2`,
		string(t), string(rateeID),
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to compute average rating: %w", err)
	}
	return avg, nil
}

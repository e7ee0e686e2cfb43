// README: Postgres connection pool initialization and schema migration.
package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewDB(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return pool, nil
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		roles TEXT[] NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS riders (
		id TEXT PRIMARY KEY,
		user_id TEXT UNIQUE NOT NULL REFERENCES users(id),
		rating DOUBLE PRECISION NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS drivers (
		id TEXT PRIMARY KEY,
		user_id TEXT UNIQUE NOT NULL REFERENCES users(id),
		rating DOUBLE PRECISION NOT NULL DEFAULT 0,
		available BOOLEAN NOT NULL DEFAULT TRUE,
		vehicle_id TEXT NOT NULL,
		location_lat DOUBLE PRECISION NOT NULL DEFAULT 0,
		location_lng DOUBLE PRECISION NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS ride_requests (
		id TEXT PRIMARY KEY,
		rider_id TEXT NOT NULL REFERENCES riders(id),
		pickup_lat DOUBLE PRECISION NOT NULL,
		pickup_lng DOUBLE PRECISION NOT NULL,
		dropoff_lat DOUBLE PRECISION NOT NULL,
		dropoff_lng DOUBLE PRECISION NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rides (
		id TEXT PRIMARY KEY,
		request_id TEXT UNIQUE NOT NULL REFERENCES ride_requests(id),
		rider_id TEXT NOT NULL REFERENCES riders(id),
		driver_id TEXT NOT NULL REFERENCES drivers(id),
		pickup_lat DOUBLE PRECISION NOT NULL,
		pickup_lng DOUBLE PRECISION NOT NULL,
		dropoff_lat DOUBLE PRECISION NOT NULL,
		dropoff_lng DOUBLE PRECISION NOT NULL,
		otp TEXT NOT NULL,
		status TEXT NOT NULL,
		status_version INT NOT NULL DEFAULT 0,
		fare DOUBLE PRECISION,
		payment_method TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		started_at TIMESTAMPTZ,
		ended_at TIMESTAMPTZ
	);
	CREATE INDEX IF NOT EXISTS idx_rides_rider ON rides(rider_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_rides_driver ON rides(driver_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		ride_id TEXT NOT NULL REFERENCES rides(id),
		amount DOUBLE PRECISION NOT NULL,
		method TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT UNIQUE NOT NULL REFERENCES users(id),
		balance DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS wallet_transactions (
		id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL REFERENCES wallets(id),
		ride_id TEXT REFERENCES rides(id),
		amount DOUBLE PRECISION NOT NULL,
		type TEXT NOT NULL,
		method TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_wallet_tx_wallet ON wallet_transactions(wallet_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS ratings (
		id TEXT PRIMARY KEY,
		ride_id TEXT NOT NULL REFERENCES rides(id),
		ratee_type TEXT NOT NULL,
		ratee_id TEXT NOT NULL,
		score INT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ratings_ratee ON ratings(ratee_type, ratee_id);
	`
	if _, err := db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	return nil
}

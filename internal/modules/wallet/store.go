// README: Wallet store backed by PostgreSQL.
package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"ridenow/internal/types"
)

type Store interface {
	Create(ctx context.Context, w *Wallet) error
	FindByUser(ctx context.Context, userID types.ID) (*Wallet, error)
	// AdjustBalance applies a signed delta and returns the new balance.
	AdjustBalance(ctx context.Context, walletID types.ID, delta float64) (float64, error)
	AppendTransaction(ctx context.Context, t *Transaction) error
	ListTransactions(ctx context.Context, walletID types.ID, limit, offset int) ([]Transaction, error)
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

func (s *PgStore) Create(ctx context.Context, w *Wallet) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO wallets (id, user_id, balance, created_at)
		VALUES ($1, $2, $3, $4)`,
		string(w.ID), string(w.UserID), w.Balance, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (s *PgStore) FindByUser(ctx context.Context, userID types.ID) (*Wallet, error) {
	var w Wallet
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, balance, created_at FROM wallets WHERE user_id = $1`,
		string(userID),
	).Scan(&w.ID, &w.UserID, &w.Balance, &w.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find wallet: %w", err)
	}
	return &w, nil
}

func (s *PgStore) AdjustBalance(ctx context.Context, walletID types.ID, delta float64) (float64, error) {
	var balance float64
	err := s.db.QueryRow(ctx, `
		UPDATE wallets SET balance = balance + $1 WHERE id = $2 RETURNING balance`,
		delta, string(walletID),
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}
	return balance, nil
}

func (s *PgStore) AppendTransaction(ctx context.Context, t *Transaction) error {
	var rideID *string
	if t.RideID != nil {
		v := string(*t.RideID)
		rideID = &v
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO wallet_transactions (id, wallet_id, ride_id, amount, type, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(t.ID), string(t.WalletID), rideID, t.Amount, string(t.Type), string(t.Method), t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append wallet transaction: %w", err)
	}
	return nil
}

func (s *PgStore) ListTransactions(ctx context.Context, walletID types.ID, limit, offset int) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, wallet_id, ride_id, amount, type, method, created_at
		FROM wallet_transactions
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		string(walletID), limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		var rideID *string
		if err := rows.Scan(&t.ID, &t.WalletID, &rideID, &t.Amount, &t.Type, &t.Method, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		if rideID != nil {
			v := types.ID(*rideID)
			t.RideID = &v
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

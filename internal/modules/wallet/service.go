// README: Wallet service: balance adjustments always paired with a ledger entry.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ridenow/internal/types"
)

var ErrWalletNotFound = errors.New("wallet not found")

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateWallet opens an empty wallet for a user. Creating twice for the same
// user fails on the unique constraint.
func (s *Service) CreateWallet(ctx context.Context, userID types.ID) error {
	w := &Wallet{
		ID:        types.ID(uuid.NewString()),
		UserID:    userID,
		Balance:   0,
		CreatedAt: time.Now(),
	}
	return s.store.Create(ctx, w)
}

type AdjustCommand struct {
	UserID types.ID
	Amount float64
	RideID *types.ID
	Method TransactionMethod
}

// Credit adds money to the user's wallet and appends a CREDIT ledger entry.
func (s *Service) Credit(ctx context.Context, cmd AdjustCommand) (*Wallet, error) {
	return s.adjust(ctx, cmd, TransactionCredit)
}

// Debit removes money from the user's wallet and appends a DEBIT ledger
// entry. There is no overdraft check; the balance may go negative.
func (s *Service) Debit(ctx context.Context, cmd AdjustCommand) (*Wallet, error) {
	return s.adjust(ctx, cmd, TransactionDebit)
}

func (s *Service) adjust(ctx context.Context, cmd AdjustCommand, typ TransactionType) (*Wallet, error) {
	w, err := s.store.FindByUser(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: user %s", ErrWalletNotFound, cmd.UserID)
	}

	delta := cmd.Amount
	if typ == TransactionDebit {
		delta = -cmd.Amount
	}
	balance, err := s.store.AdjustBalance(ctx, w.ID, delta)
	if err != nil {
		return nil, err
	}
	w.Balance = balance

	err = s.store.AppendTransaction(ctx, &Transaction{
		ID:        types.ID(uuid.NewString()),
		WalletID:  w.ID,
		RideID:    cmd.RideID,
		Amount:    cmd.Amount,
		Type:      typ,
		Method:    cmd.Method,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) FindByUser(ctx context.Context, userID types.ID) (*Wallet, error) {
	w, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, fmt.Errorf("%w: user %s", ErrWalletNotFound, userID)
	}
	return w, nil
}

func (s *Service) Transactions(ctx context.Context, userID types.ID, limit, offset int) ([]Transaction, error) {
	w, err := s.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.ListTransactions(ctx, w.ID, limit, offset)
}

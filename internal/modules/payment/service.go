// README: Payment settlement: platform commission debited from the driver wallet.
package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ridenow/internal/modules/wallet"
	"ridenow/internal/types"
)

// PlatformCommission is the platform's fixed cut of every fare.
const PlatformCommission = 0.3

// Wallets is the slice of the wallet service settlement needs.
type Wallets interface {
	Debit(ctx context.Context, cmd wallet.AdjustCommand) (*wallet.Wallet, error)
}

type Service struct {
	store   Store
	wallets Wallets
}

func NewService(store Store, wallets Wallets) *Service {
	return &Service{store: store, wallets: wallets}
}

type SettleCommand struct {
	RideID       types.ID
	DriverUserID types.ID
	Fare         float64
	Method       Method
}

// Settle debits the commission from the driver's wallet and records a
// CONFIRMED payment for the full fare. A failed debit propagates and leaves
// no payment row. Settlement is not guarded against double invocation;
// callers reach it only through the single ENDED transition.
func (s *Service) Settle(ctx context.Context, cmd SettleCommand) (*Payment, error) {
	commission := cmd.Fare * PlatformCommission
	rideID := cmd.RideID
	_, err := s.wallets.Debit(ctx, wallet.AdjustCommand{
		UserID: cmd.DriverUserID,
		Amount: commission,
		RideID: &rideID,
		Method: wallet.MethodRide,
	})
	if err != nil {
		return nil, err
	}

	p := &Payment{
		ID:        types.ID(uuid.NewString()),
		RideID:    cmd.RideID,
		Amount:    cmd.Fare,
		Method:    cmd.Method,
		Status:    StatusConfirmed,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) FindByRide(ctx context.Context, rideID types.ID) (*Payment, error) {
	return s.store.FindByRide(ctx, rideID)
}

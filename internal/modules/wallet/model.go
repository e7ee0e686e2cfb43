// README: Wallet aggregate and the append-only transaction ledger.
package wallet

import (
	"time"

	"ridenow/internal/types"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

type TransactionMethod string

const (
	MethodRide    TransactionMethod = "RIDE"
	MethodBanking TransactionMethod = "BANKING"
)

// Wallet keeps a cached running balance. The ledger is the source of truth;
// the balance must always equal the signed sum of the wallet's transactions.
type Wallet struct {
	ID        types.ID
	UserID    types.ID
	Balance   float64
	CreatedAt time.Time
}

// Transaction is a ledger entry. Entries are never updated or deleted.
type Transaction struct {
	ID        types.ID
	WalletID  types.ID
	RideID    *types.ID
	Amount    float64
	Type      TransactionType
	Method    TransactionMethod
	CreatedAt time.Time
}

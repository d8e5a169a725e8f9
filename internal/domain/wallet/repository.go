package wallet

import (
	"context"

	"github.com/ticketpulse/adwallet/internal/types"
)

// Repository defines the interface for wallet persistence operations
type Repository interface {
	// Wallet operations
	CreateWallet(ctx context.Context, w *Wallet) error
	GetWalletByID(ctx context.Context, id string) (*Wallet, error)
	GetWalletByOwner(ctx context.Context, owner types.WalletOwner) (*Wallet, error)
	UpdateWalletStatus(ctx context.Context, id string, status types.WalletStatus) error
	UpdateWalletAutoReload(ctx context.Context, id string, threshold, topupCredits int64, enabled bool) error

	// Transaction operations. CreateTransaction fails with ErrAlreadyExists
	// when the idempotency key is already present.
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*Transaction, error)
	GetTransactionByIdempotencyKey(ctx context.Context, idempotencyKey string) (*Transaction, error)
	ListTransactionsByWallet(ctx context.Context, walletID string, limit, offset int) ([]*Transaction, error)

	// SumCreditsByReference returns the signed sum of credits_delta over the
	// wallet's transactions of the given type that reference refType/refID.
	// Zero when no such transactions exist.
	SumCreditsByReference(ctx context.Context, walletID string, txType types.TransactionType, refType types.WalletTxReferenceType, refID string) (int64, error)

	// Balance operations. DebitWalletBalance performs "assert balance >= credits,
	// decrement" as one conditional update and fails with ErrInsufficientFunds
	// when the assertion does not hold; concurrent debits against the same
	// wallet serialize on it.
	DebitWalletBalance(ctx context.Context, walletID string, credits int64) error
	CreditWalletBalance(ctx context.Context, walletID string, credits int64) error

	// RecomputeBalance sums the wallet's transaction history, overwrites the
	// cached balance with the result and returns it.
	RecomputeBalance(ctx context.Context, walletID string) (int64, error)
}

package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/ticketpulse/adwallet/internal/domain/wallet"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/types"
)

type InMemoryWalletStore struct {
	mu           sync.RWMutex
	wallets      map[string]*wallet.Wallet
	transactions map[string]*wallet.Transaction
}

func NewInMemoryWalletStore() *InMemoryWalletStore {
	return &InMemoryWalletStore{
		wallets:      make(map[string]*wallet.Wallet),
		transactions: make(map[string]*wallet.Transaction),
	}
}

func (r *InMemoryWalletStore) snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	wallets := make(map[string]*wallet.Wallet, len(r.wallets))
	for id, w := range r.wallets {
		copied := *w
		wallets[id] = &copied
	}
	transactions := make(map[string]*wallet.Transaction, len(r.transactions))
	for id, tx := range r.transactions {
		copied := *tx
		transactions[id] = &copied
	}

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.wallets = wallets
		r.transactions = transactions
	}
}

func (r *InMemoryWalletStore) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets = make(map[string]*wallet.Wallet)
	r.transactions = make(map[string]*wallet.Transaction)
}

func (r *InMemoryWalletStore) CreateWallet(ctx context.Context, w *wallet.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.wallets {
		if existing.OwnerType == w.OwnerType && existing.OwnerID == w.OwnerID {
			return ierr.NewError("wallet already exists for owner").
				Mark(ierr.ErrAlreadyExists)
		}
	}

	copied := *w
	r.wallets[w.ID] = &copied
	return nil
}

func (r *InMemoryWalletStore) GetWalletByID(ctx context.Context, id string) (*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if w, exists := r.wallets[id]; exists {
		copied := *w
		return &copied, nil
	}
	return nil, ierr.NewError("wallet not found").
		WithHint("Wallet not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) GetWalletByOwner(ctx context.Context, owner types.WalletOwner) (*wallet.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.wallets {
		if w.OwnerType == owner.Type && w.OwnerID == owner.ID {
			copied := *w
			return &copied, nil
		}
	}
	return nil, ierr.NewError("wallet not found").
		WithHint("Wallet not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) UpdateWalletStatus(ctx context.Context, id string, status types.WalletStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.wallets[id]
	if !exists {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			Mark(ierr.ErrNotFound)
	}
	w.WalletStatus = status
	return nil
}

func (r *InMemoryWalletStore) UpdateWalletAutoReload(ctx context.Context, id string, threshold, topupCredits int64, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.wallets[id]
	if !exists {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			Mark(ierr.ErrNotFound)
	}
	w.LowBalanceThreshold = threshold
	w.AutoReloadTopupCredits = topupCredits
	w.AutoReloadEnabled = enabled
	return nil
}

func (r *InMemoryWalletStore) CreateTransaction(ctx context.Context, tx *wallet.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tx.IdempotencyKey != nil {
		for _, existing := range r.transactions {
			if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *tx.IdempotencyKey {
				return ierr.NewError("transaction already exists").
					Mark(ierr.ErrAlreadyExists)
			}
		}
	}

	copied := *tx
	r.transactions[tx.ID] = &copied
	return nil
}

func (r *InMemoryWalletStore) GetTransactionByID(ctx context.Context, id string) (*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if tx, exists := r.transactions[id]; exists {
		copied := *tx
		return &copied, nil
	}
	return nil, ierr.NewError("transaction not found").
		WithHint("Transaction not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) GetTransactionByIdempotencyKey(ctx context.Context, idempotencyKey string) (*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tx := range r.transactions {
		if tx.IdempotencyKey != nil && *tx.IdempotencyKey == idempotencyKey {
			copied := *tx
			return &copied, nil
		}
	}
	return nil, ierr.NewError("transaction not found").
		WithHint("Transaction not found").
		Mark(ierr.ErrNotFound)
}

func (r *InMemoryWalletStore) ListTransactionsByWallet(ctx context.Context, walletID string, limit, offset int) ([]*wallet.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*wallet.Transaction
	for _, tx := range r.transactions {
		if tx.WalletID == walletID {
			copied := *tx
			result = append(result, &copied)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r *InMemoryWalletStore) SumCreditsByReference(ctx context.Context, walletID string, txType types.TransactionType, refType types.WalletTxReferenceType, refID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sum int64
	for _, tx := range r.transactions {
		if tx.WalletID == walletID && tx.Type == txType &&
			tx.ReferenceType == refType && tx.ReferenceID == refID &&
			tx.Status == types.StatusPublished {
			sum += tx.CreditsDelta
		}
	}
	return sum, nil
}

func (r *InMemoryWalletStore) DebitWalletBalance(ctx context.Context, walletID string, credits int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.wallets[walletID]
	if !exists {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			Mark(ierr.ErrNotFound)
	}
	if w.IsFrozen() {
		return ierr.NewError("wallet is frozen").
			WithHint("Spend is blocked while the wallet is frozen").
			Mark(ierr.ErrWalletFrozen)
	}
	if w.BalanceCredits < credits {
		return ierr.NewError("insufficient funds").
			WithHint("Wallet balance is too low for this charge").
			Mark(ierr.ErrInsufficientFunds)
	}
	w.BalanceCredits -= credits
	return nil
}

func (r *InMemoryWalletStore) CreditWalletBalance(ctx context.Context, walletID string, credits int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.wallets[walletID]
	if !exists {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			Mark(ierr.ErrNotFound)
	}
	w.BalanceCredits += credits
	return nil
}

func (r *InMemoryWalletStore) RecomputeBalance(ctx context.Context, walletID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.wallets[walletID]
	if !exists {
		return 0, ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			Mark(ierr.ErrNotFound)
	}

	var sum int64
	for _, tx := range r.transactions {
		if tx.WalletID == walletID && tx.Status == types.StatusPublished {
			sum += tx.CreditsDelta
		}
	}
	w.BalanceCredits = sum
	return sum, nil
}

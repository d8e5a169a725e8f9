package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/samber/lo"

	"github.com/ticketpulse/adwallet/internal/api/dto"
	"github.com/ticketpulse/adwallet/internal/domain/wallet"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/types"
)

// WalletService owns wallet lifecycle and all balance mutations. Every
// mutation writes a ledger transaction and adjusts the cached balance inside
// one database transaction; the idempotency key's unique constraint makes
// replays collapse to the original entry.
type WalletService interface {
	GetOrCreateWallet(ctx context.Context, owner types.WalletOwner) (*wallet.Wallet, error)
	GetWallet(ctx context.Context, id string) (*dto.WalletResponse, error)
	GetWalletByOwner(ctx context.Context, owner types.WalletOwner) (*dto.WalletResponse, error)
	ListTransactions(ctx context.Context, walletID string, limit, offset int) (*dto.ListWalletTransactionsResponse, error)

	// CreditWallet adds credits. DebitWallet removes them; unless
	// op.AllowNegative is set it fails with ErrInsufficientFunds rather than
	// drive the balance below zero. Both return the existing transaction and
	// duplicate=true when the idempotency key was already processed.
	CreditWallet(ctx context.Context, op *WalletOperation) (*wallet.Transaction, bool, error)
	DebitWallet(ctx context.Context, op *WalletOperation) (*wallet.Transaction, bool, error)

	SetWalletStatus(ctx context.Context, walletID string, status types.WalletStatus, memo string) error
	ConfigureAutoReload(ctx context.Context, walletID string, req *dto.ConfigureAutoReloadRequest) (*dto.WalletResponse, error)

	// ReconcileBalance recomputes the cached balance from the transaction
	// history, retrying transient database failures.
	ReconcileBalance(ctx context.Context, walletID string) (*dto.ReconcileBalanceResponse, error)
}

// WalletOperation describes one balance mutation
type WalletOperation struct {
	WalletID       string
	Credits        int64
	Type           types.TransactionType
	AmountUSDCents *int64
	ReferenceType  types.WalletTxReferenceType
	ReferenceID    string
	IdempotencyKey string
	Memo           string
	// AllowNegative skips the sufficient-funds check. Only refund claw-backs
	// use it; the resulting negative balance freezes the wallet.
	AllowNegative bool
}

func (op *WalletOperation) validate() error {
	if op.WalletID == "" {
		return ierr.NewError("wallet_id is required").
			WithHint("Operation must reference a wallet").
			Mark(ierr.ErrValidation)
	}
	if op.Credits <= 0 {
		return ierr.NewError("credits must be greater than 0").
			WithHint("Operation amount must be positive").
			WithReportableDetails(map[string]interface{}{
				"credits": op.Credits,
			}).
			Mark(ierr.ErrValidation)
	}
	return op.Type.Validate()
}

type walletService struct {
	ServiceParams
}

// NewWalletService creates a new wallet service
func NewWalletService(params ServiceParams) WalletService {
	return &walletService{ServiceParams: params}
}

func (s *walletService) GetOrCreateWallet(ctx context.Context, owner types.WalletOwner) (*wallet.Wallet, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	w, err := s.WalletRepo.GetWalletByOwner(ctx, owner)
	if err == nil {
		return w, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	w = &wallet.Wallet{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET),
		OwnerType:      owner.Type,
		OwnerID:        owner.ID,
		BalanceCredits: 0,
		WalletStatus:   types.WalletStatusActive,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	if err := s.WalletRepo.CreateWallet(ctx, w); err != nil {
		// Lost a create race with a concurrent purchase for the same owner
		if ierr.IsAlreadyExists(err) {
			return s.WalletRepo.GetWalletByOwner(ctx, owner)
		}
		return nil, err
	}

	s.Logger.Infow("created wallet",
		"wallet_id", w.ID,
		"owner_type", owner.Type,
		"owner_id", owner.ID,
	)
	return w, nil
}

func (s *walletService) GetWallet(ctx context.Context, id string) (*dto.WalletResponse, error) {
	w, err := s.WalletRepo.GetWalletByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewWalletResponse(w), nil
}

func (s *walletService) GetWalletByOwner(ctx context.Context, owner types.WalletOwner) (*dto.WalletResponse, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	w, err := s.WalletRepo.GetWalletByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	return dto.NewWalletResponse(w), nil
}

func (s *walletService) ListTransactions(ctx context.Context, walletID string, limit, offset int) (*dto.ListWalletTransactionsResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	txns, err := s.WalletRepo.ListTransactionsByWallet(ctx, walletID, limit, offset)
	if err != nil {
		return nil, err
	}

	items := lo.Map(txns, func(t *wallet.Transaction, _ int) *dto.WalletTransactionResponse {
		return dto.NewWalletTransactionResponse(t)
	})
	return &dto.ListWalletTransactionsResponse{
		Items:  items,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *walletService) CreditWallet(ctx context.Context, op *WalletOperation) (*wallet.Transaction, bool, error) {
	return s.applyOperation(ctx, op, false)
}

func (s *walletService) DebitWallet(ctx context.Context, op *WalletOperation) (*wallet.Transaction, bool, error) {
	return s.applyOperation(ctx, op, true)
}

func (s *walletService) applyOperation(ctx context.Context, op *WalletOperation, debit bool) (*wallet.Transaction, bool, error) {
	if err := op.validate(); err != nil {
		return nil, false, err
	}

	if op.IdempotencyKey != "" {
		existing, err := s.WalletRepo.GetTransactionByIdempotencyKey(ctx, op.IdempotencyKey)
		if err == nil {
			return existing, true, nil
		}
		if !ierr.IsNotFound(err) {
			return nil, false, err
		}
	}

	delta := op.Credits
	if debit {
		delta = -op.Credits
	}

	tx := &wallet.Transaction{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_WALLET_TRANSACTION),
		WalletID:       op.WalletID,
		Type:           op.Type,
		CreditsDelta:   delta,
		AmountUSDCents: op.AmountUSDCents,
		ReferenceType:  op.ReferenceType,
		ReferenceID:    op.ReferenceID,
		Memo:           op.Memo,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	if op.IdempotencyKey != "" {
		tx.IdempotencyKey = &op.IdempotencyKey
	}
	if err := tx.Validate(); err != nil {
		return nil, false, err
	}

	var duplicate bool
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.WalletRepo.CreateTransaction(txCtx, tx); err != nil {
			if ierr.IsAlreadyExists(err) && op.IdempotencyKey != "" {
				duplicate = true
				return nil
			}
			return err
		}

		switch {
		case !debit:
			return s.WalletRepo.CreditWalletBalance(txCtx, op.WalletID, op.Credits)
		case op.AllowNegative:
			return s.WalletRepo.CreditWalletBalance(txCtx, op.WalletID, -op.Credits)
		default:
			return s.WalletRepo.DebitWalletBalance(txCtx, op.WalletID, op.Credits)
		}
	})
	if err != nil {
		return nil, false, err
	}

	if duplicate {
		// Lost the insert race to a concurrent request with the same key
		existing, err := s.WalletRepo.GetTransactionByIdempotencyKey(ctx, op.IdempotencyKey)
		if err != nil {
			return nil, false, err
		}
		return existing, true, nil
	}

	s.Logger.Infow("applied wallet operation",
		"wallet_id", op.WalletID,
		"transaction_id", tx.ID,
		"type", op.Type,
		"credits_delta", delta,
	)
	return tx, false, nil
}

func (s *walletService) SetWalletStatus(ctx context.Context, walletID string, status types.WalletStatus, memo string) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if err := s.WalletRepo.UpdateWalletStatus(ctx, walletID, status); err != nil {
		return err
	}
	s.Logger.Infow("updated wallet status",
		"wallet_id", walletID,
		"wallet_status", status,
		"memo", memo,
	)
	return nil
}

func (s *walletService) ConfigureAutoReload(ctx context.Context, walletID string, req *dto.ConfigureAutoReloadRequest) (*dto.WalletResponse, error) {
	if req.LowBalanceThreshold < 0 {
		return nil, ierr.NewError("low_balance_threshold must not be negative").
			WithHint("Threshold must be zero or positive").
			Mark(ierr.ErrValidation)
	}
	if req.AutoReloadEnabled && req.AutoReloadTopupCredits <= 0 {
		return nil, ierr.NewError("auto_reload_topup_credits must be greater than 0").
			WithHint("Auto reload requires a positive top-up amount").
			Mark(ierr.ErrValidation)
	}
	// Top-ups are ordinary custom purchases, so they obey the purchase floor
	if min := s.Config.Wallet.MinCustomCredits; req.AutoReloadEnabled && req.AutoReloadTopupCredits < min {
		return nil, ierr.NewError("auto_reload_topup_credits below the minimum purchase size").
			WithHint(fmt.Sprintf("Top-up purchases start at %d credits", min)).
			WithReportableDetails(map[string]interface{}{
				"auto_reload_topup_credits": req.AutoReloadTopupCredits,
				"minimum":                   min,
			}).
			Mark(ierr.ErrValidation)
	}

	if err := s.WalletRepo.UpdateWalletAutoReload(ctx, walletID, req.LowBalanceThreshold, req.AutoReloadTopupCredits, req.AutoReloadEnabled); err != nil {
		return nil, err
	}
	return s.GetWallet(ctx, walletID)
}

func (s *walletService) ReconcileBalance(ctx context.Context, walletID string) (*dto.ReconcileBalanceResponse, error) {
	if _, err := s.WalletRepo.GetWalletByID(ctx, walletID); err != nil {
		return nil, err
	}

	var balance int64
	operation := func() error {
		var err error
		balance, err = s.WalletRepo.RecomputeBalance(ctx, walletID)
		if err != nil && !ierr.IsDatabase(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}

	s.Logger.Infow("reconciled wallet balance",
		"wallet_id", walletID,
		"balance_credits", balance,
	)
	return &dto.ReconcileBalanceResponse{
		WalletID:       walletID,
		BalanceCredits: balance,
		ReconciledAt:   time.Now().UTC(),
	}, nil
}

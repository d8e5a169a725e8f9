package postgres

import (
	"context"

	"github.com/ticketpulse/adwallet/internal/domain/wallet"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/logger"
	"github.com/ticketpulse/adwallet/internal/postgres"
	"github.com/ticketpulse/adwallet/internal/types"
)

const (
	idxWalletOwner            = "wallets_owner_type_owner_id_key"
	idxTransactionIdempotency = "wallet_transactions_idempotency_key_key"
)

type walletRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

// NewWalletRepository creates a new instance of wallet repository
func NewWalletRepository(db *postgres.DB, logger *logger.Logger) wallet.Repository {
	return &walletRepository{
		db:     db,
		logger: logger,
	}
}

func (r *walletRepository) CreateWallet(ctx context.Context, w *wallet.Wallet) error {
	query := `
		INSERT INTO wallets (
			id, owner_type, owner_id, balance_credits, wallet_status,
			low_balance_threshold, auto_reload_enabled, auto_reload_topup_credits,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :owner_type, :owner_id, :balance_credits, :wallet_status,
			:low_balance_threshold, :auto_reload_enabled, :auto_reload_topup_credits,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating wallet",
		"wallet_id", w.ID,
		"owner_type", w.OwnerType,
		"owner_id", w.OwnerID,
	)

	if _, err := r.db.NamedExecContext(ctx, query, w); err != nil {
		if postgres.IsUniqueViolation(err, idxWalletOwner) {
			return ierr.WithError(err).
				WithHint("A wallet already exists for this owner").
				WithReportableDetails(map[string]any{
					"owner_type": w.OwnerType,
					"owner_id":   w.OwnerID,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create wallet").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *walletRepository) GetWalletByID(ctx context.Context, id string) (*wallet.Wallet, error) {
	query := `
		SELECT * FROM wallets
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query wallet").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			WithReportableDetails(map[string]any{
				"wallet_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var w wallet.Wallet
	if err := rows.StructScan(&w); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan wallet").
			Mark(ierr.ErrDatabase)
	}
	return &w, nil
}

func (r *walletRepository) GetWalletByOwner(ctx context.Context, owner types.WalletOwner) (*wallet.Wallet, error) {
	query := `
		SELECT * FROM wallets
		WHERE owner_type = :owner_type
		AND owner_id = :owner_id
		AND status = :status`

	params := map[string]interface{}{
		"owner_type": owner.Type,
		"owner_id":   owner.ID,
		"status":     types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query wallet").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("wallet not found").
			WithHint("No wallet exists for this owner").
			WithReportableDetails(map[string]any{
				"owner_type": owner.Type,
				"owner_id":   owner.ID,
			}).
			Mark(ierr.ErrNotFound)
	}

	var w wallet.Wallet
	if err := rows.StructScan(&w); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan wallet").
			Mark(ierr.ErrDatabase)
	}
	return &w, nil
}

func (r *walletRepository) UpdateWalletStatus(ctx context.Context, id string, status types.WalletStatus) error {
	query := `
		UPDATE wallets
		SET
			wallet_status = :wallet_status,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":            id,
		"wallet_status": status,
		"updated_by":    types.GetUserID(ctx),
		"status":        types.StatusPublished,
	}

	r.logger.Debugw("updating wallet status",
		"wallet_id", id,
		"wallet_status", status,
	)

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update wallet status").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update wallet status").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			WithReportableDetails(map[string]any{
				"wallet_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *walletRepository) UpdateWalletAutoReload(ctx context.Context, id string, threshold, topupCredits int64, enabled bool) error {
	query := `
		UPDATE wallets
		SET
			low_balance_threshold = :low_balance_threshold,
			auto_reload_enabled = :auto_reload_enabled,
			auto_reload_topup_credits = :auto_reload_topup_credits,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":                        id,
		"low_balance_threshold":     threshold,
		"auto_reload_enabled":       enabled,
		"auto_reload_topup_credits": topupCredits,
		"updated_by":                types.GetUserID(ctx),
		"status":                    types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update wallet auto reload settings").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update wallet auto reload settings").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			WithReportableDetails(map[string]any{
				"wallet_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *walletRepository) CreateTransaction(ctx context.Context, tx *wallet.Transaction) error {
	query := `
		INSERT INTO wallet_transactions (
			id, wallet_id, type, credits_delta, amount_usd_cents,
			reference_type, reference_id, idempotency_key, memo,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :wallet_id, :type, :credits_delta, :amount_usd_cents,
			:reference_type, :reference_id, :idempotency_key, :memo,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	r.logger.Debugw("creating wallet transaction",
		"transaction_id", tx.ID,
		"wallet_id", tx.WalletID,
		"type", tx.Type,
		"credits_delta", tx.CreditsDelta,
	)

	if _, err := r.db.NamedExecContext(ctx, query, tx); err != nil {
		if postgres.IsUniqueViolation(err, idxTransactionIdempotency) {
			return ierr.WithError(err).
				WithHint("A transaction with this idempotency key already exists").
				WithReportableDetails(map[string]any{
					"wallet_id":       tx.WalletID,
					"idempotency_key": tx.IdempotencyKey,
				}).
				Mark(ierr.ErrAlreadyExists)
		}
		return ierr.WithError(err).
			WithHint("Failed to create wallet transaction").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *walletRepository) GetTransactionByID(ctx context.Context, id string) (*wallet.Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":     id,
		"status": types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query wallet transaction").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("wallet transaction not found").
			WithHint("Transaction not found").
			WithReportableDetails(map[string]any{
				"transaction_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}

	var tx wallet.Transaction
	if err := rows.StructScan(&tx); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan wallet transaction").
			Mark(ierr.ErrDatabase)
	}
	return &tx, nil
}

func (r *walletRepository) GetTransactionByIdempotencyKey(ctx context.Context, idempotencyKey string) (*wallet.Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE idempotency_key = :idempotency_key
		AND status = :status`

	params := map[string]interface{}{
		"idempotency_key": idempotencyKey,
		"status":          types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query wallet transaction").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ierr.NewError("wallet transaction not found").
			WithHint("No transaction exists for this idempotency key").
			Mark(ierr.ErrNotFound)
	}

	var tx wallet.Transaction
	if err := rows.StructScan(&tx); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to scan wallet transaction").
			Mark(ierr.ErrDatabase)
	}
	return &tx, nil
}

func (r *walletRepository) ListTransactionsByWallet(ctx context.Context, walletID string, limit, offset int) ([]*wallet.Transaction, error) {
	query := `
		SELECT * FROM wallet_transactions
		WHERE wallet_id = :wallet_id
		AND status = :status
		ORDER BY created_at DESC, id DESC
		LIMIT :limit OFFSET :offset`

	params := map[string]interface{}{
		"wallet_id": walletID,
		"status":    types.StatusPublished,
		"limit":     limit,
		"offset":    offset,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to query wallet transactions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var transactions []*wallet.Transaction
	for rows.Next() {
		var tx wallet.Transaction
		if err := rows.StructScan(&tx); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan wallet transaction").
				Mark(ierr.ErrDatabase)
		}
		transactions = append(transactions, &tx)
	}

	if err = rows.Err(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to iterate wallet transactions").
			Mark(ierr.ErrDatabase)
	}
	return transactions, nil
}

func (r *walletRepository) SumCreditsByReference(ctx context.Context, walletID string, txType types.TransactionType, refType types.WalletTxReferenceType, refID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(credits_delta), 0) FROM wallet_transactions
		WHERE wallet_id = :wallet_id
		AND type = :type
		AND reference_type = :reference_type
		AND reference_id = :reference_id
		AND status = :status`

	params := map[string]interface{}{
		"wallet_id":      walletID,
		"type":           txType,
		"reference_type": refType,
		"reference_id":   refID,
		"status":         types.StatusPublished,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to sum wallet transactions").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var sum int64
	if rows.Next() {
		if err := rows.Scan(&sum); err != nil {
			return 0, ierr.WithError(err).
				WithHint("Failed to scan transaction sum").
				Mark(ierr.ErrDatabase)
		}
	}
	return sum, nil
}

// DebitWalletBalance decrements the cached balance only when the wallet is
// active and the balance covers the charge. The conditional update is the
// serialization point for concurrent spends against the same wallet: the row
// lock makes "read, assert, decrement" one indivisible unit, and the status
// predicate closes the window between a freeze and an in-flight spend.
func (r *walletRepository) DebitWalletBalance(ctx context.Context, walletID string, credits int64) error {
	query := `
		UPDATE wallets
		SET
			balance_credits = balance_credits - :credits,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status
		AND wallet_status = :wallet_status
		AND balance_credits >= :credits`

	params := map[string]interface{}{
		"id":            walletID,
		"credits":       credits,
		"updated_by":    types.GetUserID(ctx),
		"status":        types.StatusPublished,
		"wallet_status": types.WalletStatusActive,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to debit wallet balance").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to debit wallet balance").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		// Zero rows is either a missing wallet, a frozen wallet or an
		// uncovered charge; re-read to report the right failure.
		w, err := r.GetWalletByID(ctx, walletID)
		if err != nil {
			return err
		}
		if w.IsFrozen() {
			return ierr.NewError("wallet is frozen").
				WithHint("Spend is blocked while the wallet is frozen").
				WithReportableDetails(map[string]any{
					"wallet_id": walletID,
				}).
				Mark(ierr.ErrWalletFrozen)
		}
		return ierr.NewError("insufficient balance").
			WithHint("Wallet balance does not cover this charge").
			WithReportableDetails(map[string]any{
				"wallet_id": walletID,
				"credits":   credits,
			}).
			Mark(ierr.ErrInsufficientFunds)
	}
	return nil
}

func (r *walletRepository) CreditWalletBalance(ctx context.Context, walletID string, credits int64) error {
	query := `
		UPDATE wallets
		SET
			balance_credits = balance_credits + :credits,
			updated_at = NOW(),
			updated_by = :updated_by
		WHERE id = :id
		AND status = :status`

	params := map[string]interface{}{
		"id":         walletID,
		"credits":    credits,
		"updated_by": types.GetUserID(ctx),
		"status":     types.StatusPublished,
	}

	result, err := r.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to credit wallet balance").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to credit wallet balance").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			WithReportableDetails(map[string]any{
				"wallet_id": walletID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// RecomputeBalance overwrites the cached balance with the signed sum of the
// wallet's transaction history and returns the recomputed value.
func (r *walletRepository) RecomputeBalance(ctx context.Context, walletID string) (int64, error) {
	query := `
		UPDATE wallets
		SET
			balance_credits = (
				SELECT COALESCE(SUM(credits_delta), 0)
				FROM wallet_transactions
				WHERE wallet_id = :id
				AND status = :status
			),
			updated_at = NOW()
		WHERE id = :id
		AND status = :status
		RETURNING balance_credits`

	params := map[string]interface{}{
		"id":     walletID,
		"status": types.StatusPublished,
	}

	r.logger.Infow("recomputing wallet balance from transaction history",
		"wallet_id", walletID,
	)

	rows, err := r.db.NamedQueryContext(ctx, query, params)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to recompute wallet balance").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	if !rows.Next() {
		return 0, ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			WithReportableDetails(map[string]any{
				"wallet_id": walletID,
			}).
			Mark(ierr.ErrNotFound)
	}

	var balance int64
	if err := rows.Scan(&balance); err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to scan recomputed balance").
			Mark(ierr.ErrDatabase)
	}
	return balance, nil
}

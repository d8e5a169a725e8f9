package dto

import (
	"time"

	"github.com/ticketpulse/adwallet/internal/domain/wallet"
	"github.com/ticketpulse/adwallet/internal/types"
)

// WalletResponse is the external view of a wallet
type WalletResponse struct {
	ID                     string             `json:"id"`
	OwnerType              types.OwnerType    `json:"owner_type"`
	OwnerID                string             `json:"owner_id"`
	BalanceCredits         int64              `json:"balance_credits"`
	WalletStatus           types.WalletStatus `json:"wallet_status"`
	LowBalanceThreshold    int64              `json:"low_balance_threshold"`
	AutoReloadEnabled      bool               `json:"auto_reload_enabled"`
	AutoReloadTopupCredits int64              `json:"auto_reload_topup_credits"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

// NewWalletResponse converts a domain wallet to a response
func NewWalletResponse(w *wallet.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:                     w.ID,
		OwnerType:              w.OwnerType,
		OwnerID:                w.OwnerID,
		BalanceCredits:         w.BalanceCredits,
		WalletStatus:           w.WalletStatus,
		LowBalanceThreshold:    w.LowBalanceThreshold,
		AutoReloadEnabled:      w.AutoReloadEnabled,
		AutoReloadTopupCredits: w.AutoReloadTopupCredits,
		CreatedAt:              w.CreatedAt,
		UpdatedAt:              w.UpdatedAt,
	}
}

// WalletTransactionResponse is the external view of a ledger entry
type WalletTransactionResponse struct {
	ID             string                      `json:"id"`
	WalletID       string                      `json:"wallet_id"`
	Type           types.TransactionType       `json:"type"`
	CreditsDelta   int64                       `json:"credits_delta"`
	AmountUSDCents *int64                      `json:"amount_usd_cents,omitempty"`
	ReferenceType  types.WalletTxReferenceType `json:"reference_type"`
	ReferenceID    string                      `json:"reference_id"`
	Memo           string                      `json:"memo,omitempty"`
	CreatedAt      time.Time                   `json:"created_at"`
}

// ListWalletTransactionsResponse is a page of ledger entries
type ListWalletTransactionsResponse struct {
	Items  []*WalletTransactionResponse `json:"items"`
	Limit  int                          `json:"limit"`
	Offset int                          `json:"offset"`
}

// NewWalletTransactionResponse converts a domain transaction to a response
func NewWalletTransactionResponse(t *wallet.Transaction) *WalletTransactionResponse {
	return &WalletTransactionResponse{
		ID:             t.ID,
		WalletID:       t.WalletID,
		Type:           t.Type,
		CreditsDelta:   t.CreditsDelta,
		AmountUSDCents: t.AmountUSDCents,
		ReferenceType:  t.ReferenceType,
		ReferenceID:    t.ReferenceID,
		Memo:           t.Memo,
		CreatedAt:      t.CreatedAt,
	}
}

// ReconcileBalanceResponse reports the recomputed authoritative balance
type ReconcileBalanceResponse struct {
	WalletID       string    `json:"wallet_id"`
	BalanceCredits int64     `json:"balance_credits"`
	ReconciledAt   time.Time `json:"reconciled_at"`
}

// UpdateWalletStatusRequest freezes or unfreezes a wallet
type UpdateWalletStatusRequest struct {
	WalletStatus types.WalletStatus `json:"wallet_status" binding:"required"`
	Memo         string             `json:"memo,omitempty"`
}

func (r *UpdateWalletStatusRequest) Validate() error {
	return r.WalletStatus.Validate()
}

// ConfigureAutoReloadRequest updates a wallet's low balance behavior
type ConfigureAutoReloadRequest struct {
	LowBalanceThreshold    int64 `json:"low_balance_threshold"`
	AutoReloadEnabled      bool  `json:"auto_reload_enabled"`
	AutoReloadTopupCredits int64 `json:"auto_reload_topup_credits"`
}

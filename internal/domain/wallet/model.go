package wallet

import (
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/types"
)

// Wallet is a prepaid credits wallet funding metered ad spend. One wallet per
// individual user or per organization; created lazily on first purchase
// attempt and never deleted.
type Wallet struct {
	ID        string             `db:"id" json:"id"`
	OwnerType types.OwnerType    `db:"owner_type" json:"owner_type"`
	OwnerID   string             `db:"owner_id" json:"owner_id"`
	// BalanceCredits is the cached balance. The authoritative value is the
	// signed sum of the wallet's non-voided transactions; the reconciler
	// repairs drift between the two. May go transiently negative only during
	// dispute/refund windows.
	BalanceCredits         int64              `db:"balance_credits" json:"balance_credits"`
	WalletStatus           types.WalletStatus `db:"wallet_status" json:"wallet_status"`
	LowBalanceThreshold    int64              `db:"low_balance_threshold" json:"low_balance_threshold"`
	AutoReloadEnabled      bool               `db:"auto_reload_enabled" json:"auto_reload_enabled"`
	AutoReloadTopupCredits int64              `db:"auto_reload_topup_credits" json:"auto_reload_topup_credits"`
	types.BaseModel
}

func (w *Wallet) TableName() string {
	return "wallets"
}

// Owner returns the wallet's owner reference as a tagged union
func (w *Wallet) Owner() types.WalletOwner {
	return types.WalletOwner{Type: w.OwnerType, ID: w.OwnerID}
}

func (w *Wallet) Validate() error {
	if err := w.Owner().Validate(); err != nil {
		return err
	}
	if err := w.WalletStatus.Validate(); err != nil {
		return err
	}
	if w.AutoReloadEnabled && w.AutoReloadTopupCredits <= 0 {
		return ierr.NewError("auto reload topup credits must be greater than 0").
			WithHint("Auto reload requires a positive top-up amount").
			WithReportableDetails(map[string]interface{}{
				"wallet_id":                 w.ID,
				"auto_reload_topup_credits": w.AutoReloadTopupCredits,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsFrozen reports whether spend against this wallet must be rejected
func (w *Wallet) IsFrozen() bool {
	return w.WalletStatus == types.WalletStatusFrozen
}

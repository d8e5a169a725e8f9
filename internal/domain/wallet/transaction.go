package wallet

import (
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/types"
)

// Transaction is an immutable, append-only ledger entry. The unique constraint
// on IdempotencyKey is the sole correctness mechanism for exactly-once
// processing of spend, purchase and refund requests.
type Transaction struct {
	ID           string                `db:"id" json:"id"`
	WalletID     string                `db:"wallet_id" json:"wallet_id"`
	Type         types.TransactionType `db:"type" json:"type"`
	// CreditsDelta is signed: positive for purchase/refund-reversals, negative
	// for spend and refund claw-backs.
	CreditsDelta int64  `db:"credits_delta" json:"credits_delta"`
	// AmountUSDCents is nil for non-monetary adjustments
	AmountUSDCents *int64                      `db:"amount_usd_cents" json:"amount_usd_cents,omitempty"`
	ReferenceType  types.WalletTxReferenceType `db:"reference_type" json:"reference_type"`
	ReferenceID    string                      `db:"reference_id" json:"reference_id"`
	// IdempotencyKey is nil only for internally generated adjustments
	IdempotencyKey *string `db:"idempotency_key" json:"idempotency_key,omitempty"`
	Memo           string  `db:"memo" json:"memo"`
	types.BaseModel
}

func (t *Transaction) TableName() string {
	return "wallet_transactions"
}

func (t *Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if t.WalletID == "" {
		return ierr.NewError("wallet_id is required").
			WithHint("Transaction must reference a wallet").
			Mark(ierr.ErrValidation)
	}
	if t.CreditsDelta == 0 {
		return ierr.NewError("credits_delta must be non-zero").
			WithHint("A ledger entry must move credits").
			WithReportableDetails(map[string]interface{}{
				"transaction_id": t.ID,
				"type":           t.Type,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

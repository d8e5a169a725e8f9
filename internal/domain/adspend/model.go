package adspend

import (
	"time"

	"github.com/ticketpulse/adwallet/internal/types"
)

// LedgerEntry links a spend transaction to the metering event that caused it.
// Write-once and best-effort: a failed insert is logged, never propagated,
// because the financial charge has already committed.
type LedgerEntry struct {
	ID                  string           `db:"id" json:"id"`
	CampaignID          string           `db:"campaign_id" json:"campaign_id"`
	MetricType          types.MetricType `db:"metric_type" json:"metric_type"`
	Quantity            int64            `db:"quantity" json:"quantity"`
	RateModel           types.RateModel  `db:"rate_model" json:"rate_model"`
	RateUSDCents        int64            `db:"rate_usd_cents" json:"rate_usd_cents"`
	CreditsCharged      int64            `db:"credits_charged" json:"credits_charged"`
	OccurredAt          time.Time        `db:"occurred_at" json:"occurred_at"`
	WalletTransactionID string           `db:"wallet_transaction_id" json:"wallet_transaction_id"`
	types.BaseModel
}

func (e *LedgerEntry) TableName() string {
	return "ad_spend_ledger"
}

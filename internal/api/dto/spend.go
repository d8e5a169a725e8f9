package dto

import (
	"time"

	"github.com/ticketpulse/adwallet/internal/domain/wallet"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/types"
)

// ChargeSpendRequest is a metered usage charge reported by the ad delivery
// service. IdempotencyKey comes from the X-Idempotency-Key header, not the
// body, and is mandatory.
type ChargeSpendRequest struct {
	WalletID     string           `json:"wallet_id" binding:"required"`
	CampaignID   string           `json:"campaign_id" binding:"required"`
	MetricType   types.MetricType `json:"metric_type" binding:"required"`
	Quantity     int64            `json:"quantity" binding:"required"`
	RateModel    types.RateModel  `json:"rate_model" binding:"required"`
	RateUSDCents int64            `json:"rate_usd_cents" binding:"required"`
	OccurredAt   time.Time        `json:"occurred_at"`
	// ViewerID enables per-viewer frequency accounting when present
	ViewerID string `json:"viewer_id,omitempty"`

	IdempotencyKey string `json:"-"`
}

func (r *ChargeSpendRequest) Validate() error {
	if err := r.MetricType.Validate(); err != nil {
		return err
	}
	if err := r.RateModel.Validate(); err != nil {
		return err
	}
	if r.Quantity <= 0 {
		return ierr.NewError("quantity must be greater than 0").
			WithHint("Usage quantity must be positive").
			WithReportableDetails(map[string]interface{}{
				"quantity": r.Quantity,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.RateUSDCents <= 0 {
		return ierr.NewError("rate_usd_cents must be greater than 0").
			WithHint("Rate must be positive").
			WithReportableDetails(map[string]interface{}{
				"rate_usd_cents": r.RateUSDCents,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.RateModel == types.RateModelCPM && r.MetricType != types.MetricTypeImpression {
		return ierr.NewError("cpm pricing applies to impressions only").
			WithHint("Use metric_type impression with rate_model cpm").
			Mark(ierr.ErrValidation)
	}
	if r.RateModel == types.RateModelCPC && r.MetricType != types.MetricTypeClick {
		return ierr.NewError("cpc pricing applies to clicks only").
			WithHint("Use metric_type click with rate_model cpc").
			Mark(ierr.ErrValidation)
	}
	if r.IdempotencyKey == "" {
		return ierr.NewError("idempotency key is required").
			WithHint("Provide the X-Idempotency-Key header").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ChargeSpendResponse reports the outcome of a spend charge. Duplicate is
// true when the idempotency key had already been processed; the original
// result is returned and no new charge is made.
type ChargeSpendResponse struct {
	TransactionID  string `json:"transaction_id"`
	WalletID       string `json:"wallet_id"`
	CreditsCharged int64  `json:"credits_charged"`
	BalanceCredits int64  `json:"balance_credits"`
	Duplicate      bool   `json:"duplicate"`
	// OverFrequencyCap flags charges whose viewer exceeded the per-window
	// impression cap; the charge still stands, delivery is expected to stop
	// serving that viewer.
	OverFrequencyCap bool `json:"over_frequency_cap,omitempty"`
}

// NewChargeSpendResponse builds a response from the spend transaction and the
// wallet's post-charge balance
func NewChargeSpendResponse(tx *wallet.Transaction, balance int64, duplicate bool) *ChargeSpendResponse {
	return &ChargeSpendResponse{
		TransactionID:  tx.ID,
		WalletID:       tx.WalletID,
		CreditsCharged: -tx.CreditsDelta,
		BalanceCredits: balance,
		Duplicate:      duplicate,
	}
}

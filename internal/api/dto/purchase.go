package dto

import (
	"github.com/ticketpulse/adwallet/internal/domain/invoice"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/types"
)

// PurchaseCreditsRequest starts a credit purchase. Exactly one of PackageID
// and CustomCredits must be set. IdempotencyKey comes from the
// X-Idempotency-Key header and is mandatory. The owner is resolved from the
// caller's authenticated identity, never from the request body.
type PurchaseCreditsRequest struct {
	PackageID     string `json:"package_id,omitempty"`
	CustomCredits int64  `json:"custom_credits,omitempty"`
	PromoCode     string `json:"promo_code,omitempty"`

	OwnerType      types.OwnerType `json:"-"`
	OwnerID        string          `json:"-"`
	IdempotencyKey string          `json:"-"`
}

func (r *PurchaseCreditsRequest) Validate() error {
	if err := (types.WalletOwner{Type: r.OwnerType, ID: r.OwnerID}).Validate(); err != nil {
		return err
	}
	if (r.PackageID == "") == (r.CustomCredits == 0) {
		return ierr.NewError("exactly one of package_id and custom_credits is required").
			WithHint("Choose a catalog package or a custom credit amount, not both").
			Mark(ierr.ErrValidation)
	}
	if r.CustomCredits < 0 {
		return ierr.NewError("custom_credits must be greater than 0").
			WithHint("Custom credit amount must be positive").
			WithReportableDetails(map[string]interface{}{
				"custom_credits": r.CustomCredits,
			}).
			Mark(ierr.ErrValidation)
	}
	if r.IdempotencyKey == "" {
		return ierr.NewError("idempotency key is required").
			WithHint("Provide the X-Idempotency-Key header").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PurchaseCreditsResponse carries the invoice and, for fresh purchases, the
// hosted checkout session to complete payment at. Replays of an existing
// idempotency key return the invoice's current state with Duplicate set.
type PurchaseCreditsResponse struct {
	InvoiceID        string              `json:"invoice_id"`
	InvoiceNumber    string              `json:"invoice_number"`
	WalletID         string              `json:"wallet_id"`
	AmountUSDCents   int64               `json:"amount_usd_cents"`
	CreditsPurchased int64               `json:"credits_purchased"`
	PromoCode        string              `json:"promo_code,omitempty"`
	InvoiceStatus    types.InvoiceStatus `json:"invoice_status"`
	SessionID        string              `json:"session_id,omitempty"`
	CheckoutURL      string              `json:"checkout_url,omitempty"`
	Duplicate        bool                `json:"duplicate"`
}

// NewPurchaseCreditsResponse builds a response from an invoice
func NewPurchaseCreditsResponse(inv *invoice.Invoice, checkoutURL string, duplicate bool) *PurchaseCreditsResponse {
	return &PurchaseCreditsResponse{
		InvoiceID:        inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		WalletID:         inv.WalletID,
		AmountUSDCents:   inv.AmountUSDCents,
		CreditsPurchased: inv.CreditsPurchased,
		PromoCode:        inv.PromoCode,
		InvoiceStatus:    inv.InvoiceStatus,
		SessionID:        inv.ProcessorSessionID,
		CheckoutURL:      checkoutURL,
		Duplicate:        duplicate,
	}
}

package invoice

import (
	"github.com/shopspring/decimal"

	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/types"
)

// Invoice represents one attempted credit purchase. Created pending by the
// purchase flow and transitioned to paid only by the webhook reconciler upon a
// verified payment-completed event. Never transitions backward out of paid.
type Invoice struct {
	ID               string `db:"id" json:"id"`
	InvoiceNumber    string `db:"invoice_number" json:"invoice_number"`
	WalletID         string `db:"wallet_id" json:"wallet_id"`
	AmountUSDCents   int64  `db:"amount_usd_cents" json:"amount_usd_cents"`
	CreditsPurchased int64  `db:"credits_purchased" json:"credits_purchased"`
	PromoCode        string `db:"promo_code" json:"promo_code,omitempty"`
	TaxUSDCents      int64  `db:"tax_usd_cents" json:"tax_usd_cents"`

	InvoiceStatus types.InvoiceStatus `db:"invoice_status" json:"invoice_status"`

	// Processor references, persisted after the checkout session is created
	ProcessorSessionID string `db:"processor_session_id" json:"processor_session_id,omitempty"`
	ProcessorPaymentID string `db:"processor_payment_id" json:"processor_payment_id,omitempty"`
	ReceiptURL         string `db:"receipt_url" json:"receipt_url,omitempty"`

	// IdempotencyKey is the caller-supplied purchase key; it later seeds the
	// purchase transaction so webhook redelivery stays exactly-once.
	IdempotencyKey string `db:"idempotency_key" json:"idempotency_key"`
	PurchasedBy    string `db:"purchased_by" json:"purchased_by"`
	types.BaseModel
}

func (i *Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) Validate() error {
	if i.WalletID == "" {
		return ierr.NewError("wallet_id is required").
			WithHint("Invoice must reference a wallet").
			Mark(ierr.ErrValidation)
	}
	if i.CreditsPurchased <= 0 {
		return ierr.NewError("credits_purchased must be greater than 0").
			WithHint("Invoice must purchase a positive number of credits").
			WithReportableDetails(map[string]interface{}{
				"invoice_id":        i.ID,
				"credits_purchased": i.CreditsPurchased,
			}).
			Mark(ierr.ErrValidation)
	}
	if i.AmountUSDCents < 0 {
		return ierr.NewError("amount_usd_cents must not be negative").
			WithHint("Invoice amount must not be negative").
			WithReportableDetails(map[string]interface{}{
				"invoice_id":       i.ID,
				"amount_usd_cents": i.AmountUSDCents,
			}).
			Mark(ierr.ErrValidation)
	}
	return i.InvoiceStatus.Validate()
}

// IsPaid reports whether the invoice has reached its terminal success state
func (i *Invoice) IsPaid() bool {
	return i.InvoiceStatus == types.InvoiceStatusPaid
}

// RefundCredits converts a refunded monetary amount back into credits using
// the invoice's own effective exchange rate. Promotional bonus credits make
// that rate differ from the fixed 1-credit-per-cent baseline, so refunds scale
// against the purchase's actual rate rather than claw back too much or too
// little. Rounds up, favoring the platform.
func (i *Invoice) RefundCredits(refundedUSDCents int64) int64 {
	if i.AmountUSDCents <= 0 || refundedUSDCents <= 0 {
		return 0
	}
	if refundedUSDCents >= i.AmountUSDCents {
		return i.CreditsPurchased
	}
	credits := decimal.NewFromInt(refundedUSDCents).
		Mul(decimal.NewFromInt(i.CreditsPurchased)).
		Div(decimal.NewFromInt(i.AmountUSDCents))
	return credits.Ceil().IntPart()
}

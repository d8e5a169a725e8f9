package types

import (
	ierr "github.com/ticketpulse/adwallet/internal/errors"
)

// InvoiceStatus is the state of a credit purchase attempt.
// pending -> paid is the only forward transition for success; an invoice never
// transitions backward out of paid.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusFailed  InvoiceStatus = "failed"
)

func (s InvoiceStatus) Validate() error {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusFailed:
		return nil
	}
	return ierr.NewError("invalid invoice status").
		WithHint("Invoice status must be one of pending, paid, failed").
		WithReportableDetails(map[string]interface{}{
			"invoice_status": s,
		}).
		Mark(ierr.ErrValidation)
}

// PromoType is the discount mechanism a promo code applies
type PromoType string

const (
	// PromoTypePercentOff discounts the pre-promo price by a percentage
	PromoTypePercentOff PromoType = "percent_off"
	// PromoTypeAmountOff discounts the pre-promo price by a flat amount in cents
	PromoTypeAmountOff PromoType = "amount_off"
	// PromoTypeBonusCredits increases the purchased credits without discounting price
	PromoTypeBonusCredits PromoType = "bonus_credits"
)

func (p PromoType) Validate() error {
	switch p {
	case PromoTypePercentOff, PromoTypeAmountOff, PromoTypeBonusCredits:
		return nil
	}
	return ierr.NewError("invalid promo type").
		WithHint("Promo type must be one of percent_off, amount_off, bonus_credits").
		WithReportableDetails(map[string]interface{}{
			"promo_type": p,
		}).
		Mark(ierr.ErrValidation)
}

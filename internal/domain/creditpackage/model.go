package creditpackage

import (
	"github.com/shopspring/decimal"

	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/types"
)

// Package is a purchasable credit bundle from the catalog
type Package struct {
	ID            string `json:"id"`
	Credits       int64  `json:"credits"`
	PriceUSDCents int64  `json:"price_usd_cents"`
}

// Promo applies one discount mechanism to a purchase. Percent and amount
// discounts are computed against the pre-promo price; bonus credits increase
// the purchased credits without discounting price.
type Promo struct {
	Code           string          `json:"code"`
	Type           types.PromoType `json:"type"`
	PercentOff     int64           `json:"percent_off,omitempty"`
	AmountOffCents int64           `json:"amount_off_cents,omitempty"`
	BonusCredits   int64           `json:"bonus_credits,omitempty"`
}

func (p *Promo) Validate() error {
	if err := p.Type.Validate(); err != nil {
		return err
	}
	switch p.Type {
	case types.PromoTypePercentOff:
		if p.PercentOff <= 0 || p.PercentOff > 100 {
			return ierr.NewError("percent_off must be between 1 and 100").
				WithHint("Invalid promo configuration").
				WithReportableDetails(map[string]interface{}{
					"promo_code":  p.Code,
					"percent_off": p.PercentOff,
				}).
				Mark(ierr.ErrValidation)
		}
	case types.PromoTypeAmountOff:
		if p.AmountOffCents <= 0 {
			return ierr.NewError("amount_off_cents must be greater than 0").
				WithHint("Invalid promo configuration").
				Mark(ierr.ErrValidation)
		}
	case types.PromoTypeBonusCredits:
		if p.BonusCredits <= 0 {
			return ierr.NewError("bonus_credits must be greater than 0").
				WithHint("Invalid promo configuration").
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// Apply returns the post-promo price and credits for a purchase priced at
// priceCents for credits. The price never goes below zero.
func (p *Promo) Apply(priceCents, credits int64) (int64, int64) {
	switch p.Type {
	case types.PromoTypePercentOff:
		discount := decimal.NewFromInt(priceCents).
			Mul(decimal.NewFromInt(p.PercentOff)).
			Div(decimal.NewFromInt(100)).
			Floor().IntPart()
		return priceCents - discount, credits
	case types.PromoTypeAmountOff:
		discounted := priceCents - p.AmountOffCents
		if discounted < 0 {
			discounted = 0
		}
		return discounted, credits
	case types.PromoTypeBonusCredits:
		return priceCents, credits + p.BonusCredits
	}
	return priceCents, credits
}

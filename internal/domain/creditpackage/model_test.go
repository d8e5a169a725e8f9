package creditpackage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ticketpulse/adwallet/internal/types"
)

func TestPromoApply(t *testing.T) {
	tests := []struct {
		name        string
		promo       Promo
		price       int64
		credits     int64
		wantPrice   int64
		wantCredits int64
	}{
		{
			name:        "percent off discounts price only",
			promo:       Promo{Code: "SAVE10", Type: types.PromoTypePercentOff, PercentOff: 10},
			price:       4500,
			credits:     5000,
			wantPrice:   4050,
			wantCredits: 5000,
		},
		{
			name:        "percent off floors the discount",
			promo:       Promo{Code: "SAVE33", Type: types.PromoTypePercentOff, PercentOff: 33},
			price:       100,
			credits:     100,
			wantPrice:   67,
			wantCredits: 100,
		},
		{
			name:        "amount off",
			promo:       Promo{Code: "LESS500", Type: types.PromoTypeAmountOff, AmountOffCents: 500},
			price:       4500,
			credits:     5000,
			wantPrice:   4000,
			wantCredits: 5000,
		},
		{
			name:        "amount off never goes negative",
			promo:       Promo{Code: "LESS500", Type: types.PromoTypeAmountOff, AmountOffCents: 500},
			price:       300,
			credits:     1000,
			wantPrice:   0,
			wantCredits: 1000,
		},
		{
			name:        "bonus credits leave price alone",
			promo:       Promo{Code: "EXTRA500", Type: types.PromoTypeBonusCredits, BonusCredits: 500},
			price:       4500,
			credits:     5000,
			wantPrice:   4500,
			wantCredits: 5500,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotPrice, gotCredits := tt.promo.Apply(tt.price, tt.credits)
			assert.Equal(t, tt.wantPrice, gotPrice)
			assert.Equal(t, tt.wantCredits, gotCredits)
		})
	}
}

func TestPromoValidate(t *testing.T) {
	assert.NoError(t, (&Promo{Code: "A", Type: types.PromoTypePercentOff, PercentOff: 50}).Validate())
	assert.Error(t, (&Promo{Code: "A", Type: types.PromoTypePercentOff, PercentOff: 0}).Validate())
	assert.Error(t, (&Promo{Code: "A", Type: types.PromoTypePercentOff, PercentOff: 101}).Validate())
	assert.Error(t, (&Promo{Code: "A", Type: types.PromoTypeAmountOff}).Validate())
	assert.Error(t, (&Promo{Code: "A", Type: types.PromoTypeBonusCredits}).Validate())
	assert.Error(t, (&Promo{Code: "A", Type: "mystery"}).Validate())
}

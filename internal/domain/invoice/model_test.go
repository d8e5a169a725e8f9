package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefundCredits(t *testing.T) {
	// 1000 cents bought 2000 credits, effective rate 2 credits per cent
	inv := &Invoice{
		AmountUSDCents:   1000,
		CreditsPurchased: 2000,
	}

	tests := []struct {
		name     string
		refunded int64
		want     int64
	}{
		{"full refund returns all credits", 1000, 2000},
		{"over-refund is capped", 1500, 2000},
		{"half refund at invoice rate", 500, 1000},
		{"small refund rounds up", 1, 2},
		{"zero refund", 0, 0},
		{"negative refund", -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inv.RefundCredits(tt.refunded))
		})
	}
}

func TestRefundCreditsRoundsUpUnevenRate(t *testing.T) {
	// 999 cents bought 1000 credits; 100 cents maps to 100.1 credits
	inv := &Invoice{
		AmountUSDCents:   999,
		CreditsPurchased: 1000,
	}
	assert.Equal(t, int64(101), inv.RefundCredits(100))
}

func TestRefundCreditsFreePurchase(t *testing.T) {
	inv := &Invoice{
		AmountUSDCents:   0,
		CreditsPurchased: 500,
	}
	assert.Equal(t, int64(0), inv.RefundCredits(100))
}

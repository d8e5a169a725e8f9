package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ticketpulse/adwallet/internal/api/dto"
	"github.com/ticketpulse/adwallet/internal/breaker"
	"github.com/ticketpulse/adwallet/internal/domain/creditpackage"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/testutil"
	"github.com/ticketpulse/adwallet/internal/types"
)

type PurchaseServiceSuite struct {
	testutil.BaseServiceTestSuite
	params  ServiceParams
	service PurchaseService
}

func TestPurchaseService(t *testing.T) {
	suite.Run(t, new(PurchaseServiceSuite))
}

func (s *PurchaseServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.params = newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewPurchaseService(s.params)

	catalog := s.GetStores().CatalogRepo.(*testutil.InMemoryCatalogStore)
	catalog.AddPackage(&creditpackage.Package{ID: "starter", Credits: 5000, PriceUSDCents: 4500})
	catalog.AddPromo(&creditpackage.Promo{Code: "SAVE10", Type: types.PromoTypePercentOff, PercentOff: 10})
	catalog.AddPromo(&creditpackage.Promo{Code: "EXTRA500", Type: types.PromoTypeBonusCredits, BonusCredits: 500})
}

func (s *PurchaseServiceSuite) TestPackagePurchase() {
	resp, err := s.service.Purchase(s.GetContext(), &dto.PurchaseCreditsRequest{
		OwnerType:      types.OwnerTypeUser,
		OwnerID:        "user_1",
		PackageID:      "starter",
		IdempotencyKey: "purchase-1",
	})
	s.NoError(err)
	s.Equal(int64(4500), resp.AmountUSDCents)
	s.Equal(int64(5000), resp.CreditsPurchased)
	s.Equal(types.InvoiceStatusPending, resp.InvoiceStatus)
	s.NotEmpty(resp.SessionID)
	s.NotEmpty(resp.CheckoutURL)
	s.False(resp.Duplicate)

	// Credits are not granted until payment settles
	w, err := s.GetStores().WalletRepo.GetWalletByOwner(s.GetContext(), types.NewUserOwner("user_1"))
	s.NoError(err)
	s.Equal(int64(0), w.BalanceCredits)
	s.Equal(resp.WalletID, w.ID)
}

func (s *PurchaseServiceSuite) TestCheckoutSessionCarriesInvoiceMetadata() {
	resp, err := s.service.Purchase(s.GetContext(), &dto.PurchaseCreditsRequest{
		OwnerType:      types.OwnerTypeUser,
		OwnerID:        "user_1",
		PackageID:      "starter",
		IdempotencyKey: "purchase-1",
	})
	s.NoError(err)

	// The session request carries everything the webhook needs to settle
	// the invoice, plus the key the processor dedupes retries on
	s.Require().Len(s.GetGateway().CheckoutRequests, 1)
	req := s.GetGateway().CheckoutRequests[0]
	s.Equal(resp.InvoiceID, req.InvoiceID)
	s.Equal(resp.WalletID, req.WalletID)
	s.Equal(int64(5000), req.Credits)
	s.Equal("purchase-1", req.IdempotencyKey)
}

func (s *PurchaseServiceSuite) TestCustomCreditsPurchase() {
	resp, err := s.service.Purchase(s.GetContext(), &dto.PurchaseCreditsRequest{
		OwnerType:      types.OwnerTypeOrganization,
		OwnerID:        "org_1",
		CustomCredits:  2500,
		IdempotencyKey: "purchase-1",
	})
	s.NoError(err)
	s.Equal(int64(2500), resp.CreditsPurchased)
	s.Equal(2500*s.GetConfig().Wallet.CustomCreditPriceCents, resp.AmountUSDCents)
}

func (s *PurchaseServiceSuite) TestCustomCreditsBelowMinimum() {
	_, err := s.service.Purchase(s.GetContext(), &dto.PurchaseCreditsRequest{
		OwnerType:      types.OwnerTypeUser,
		OwnerID:        "user_1",
		CustomCredits:  s.GetConfig().Wallet.MinCustomCredits - 1,
		IdempotencyKey: "purchase-1",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PurchaseServiceSuite) TestPercentOffPromo() {
	resp, err := s.service.Purchase(s.GetContext(), &dto.PurchaseCreditsRequest{
		OwnerType:      types.OwnerTypeUser,
		OwnerID:        "user_1",
		PackageID:      "starter",
		PromoCode:      "SAVE10",
		IdempotencyKey: "purchase-1",
	})
	s.NoError(err)
	s.Equal(int64(4050), resp.AmountUSDCents)
	s.Equal(int64(5000), resp.CreditsPurchased)
	s.Equal("SAVE10", resp.PromoCode)
}

func (s *PurchaseServiceSuite) TestBonusCreditsPromo() {
	resp, err := s.service.Purchase(s.GetContext(), &dto.PurchaseCreditsRequest{
		OwnerType:      types.OwnerTypeUser,
		OwnerID:        "user_1",
		PackageID:      "starter",
		PromoCode:      "EXTRA500",
		IdempotencyKey: "purchase-1",
	})
	s.NoError(err)
	s.Equal(int64(4500), resp.AmountUSDCents)
	s.Equal(int64(5500), resp.CreditsPurchased)
}

func (s *PurchaseServiceSuite) TestUnknownPromo() {
	_, err := s.service.Purchase(s.GetContext(), &dto.PurchaseCreditsRequest{
		OwnerType:      types.OwnerTypeUser,
		OwnerID:        "user_1",
		PackageID:      "starter",
		PromoCode:      "NOPE",
		IdempotencyKey: "purchase-1",
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PurchaseServiceSuite) TestReplayReturnsExistingInvoice() {
	req := &dto.PurchaseCreditsRequest{
		OwnerType:      types.OwnerTypeUser,
		OwnerID:        "user_1",
		PackageID:      "starter",
		IdempotencyKey: "purchase-1",
	}

	first, err := s.service.Purchase(s.GetContext(), req)
	s.NoError(err)

	second, err := s.service.Purchase(s.GetContext(), req)
	s.NoError(err)
	s.True(second.Duplicate)
	s.Equal(first.InvoiceID, second.InvoiceID)

	// Only one checkout session was ever opened
	s.Len(s.GetGateway().CheckoutRequests, 1)
}

func (s *PurchaseServiceSuite) TestProcessorFailureMarksInvoiceFailed() {
	s.GetGateway().FailCheckout = true

	_, err := s.service.Purchase(s.GetContext(), &dto.PurchaseCreditsRequest{
		OwnerType:      types.OwnerTypeUser,
		OwnerID:        "user_1",
		PackageID:      "starter",
		IdempotencyKey: "purchase-1",
	})
	s.Error(err)
	s.True(ierr.IsProcessorUnavailable(err))

	inv, err := s.GetStores().InvoiceRepo.GetByIdempotencyKey(s.GetContext(), "purchase-1")
	s.NoError(err)
	s.Equal(types.InvoiceStatusFailed, inv.InvoiceStatus)
}

func (s *PurchaseServiceSuite) TestBreakerOpensAfterRepeatedFailures() {
	s.GetGateway().FailCheckout = true

	threshold := s.GetConfig().Breaker.FailureThreshold
	for i := 0; i < threshold; i++ {
		_, err := s.service.Purchase(s.GetContext(), &dto.PurchaseCreditsRequest{
			OwnerType:      types.OwnerTypeUser,
			OwnerID:        "user_1",
			PackageID:      "starter",
			IdempotencyKey: types.GenerateUUID(),
		})
		s.Error(err)
	}

	b := s.params.Breakers.For(breaker.ServicePaymentProcessor)
	s.Equal(breaker.StateOpen, b.Snapshot().State)

	// The circuit now fails fast without reaching the processor
	requestsBefore := len(s.GetGateway().CheckoutRequests)
	_, err := s.service.Purchase(s.GetContext(), &dto.PurchaseCreditsRequest{
		OwnerType:      types.OwnerTypeUser,
		OwnerID:        "user_1",
		PackageID:      "starter",
		IdempotencyKey: types.GenerateUUID(),
	})
	s.Error(err)
	s.True(ierr.IsProcessorUnavailable(err))
	s.Len(s.GetGateway().CheckoutRequests, requestsBefore)
}

func (s *PurchaseServiceSuite) TestValidation() {
	cases := []struct {
		name string
		req  *dto.PurchaseCreditsRequest
	}{
		{"both package and custom", &dto.PurchaseCreditsRequest{
			OwnerType: types.OwnerTypeUser, OwnerID: "user_1",
			PackageID: "starter", CustomCredits: 2000,
			IdempotencyKey: "k",
		}},
		{"neither package nor custom", &dto.PurchaseCreditsRequest{
			OwnerType: types.OwnerTypeUser, OwnerID: "user_1",
			IdempotencyKey: "k",
		}},
		{"missing idempotency key", &dto.PurchaseCreditsRequest{
			OwnerType: types.OwnerTypeUser, OwnerID: "user_1",
			PackageID: "starter",
		}},
	}
	for _, tc := range cases {
		_, err := s.service.Purchase(s.GetContext(), tc.req)
		s.Error(err, tc.name)
	}
}

package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ticketpulse/adwallet/internal/api/dto"
	"github.com/ticketpulse/adwallet/internal/domain/creditpackage"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/integration/stripe"
	"github.com/ticketpulse/adwallet/internal/testutil"
	"github.com/ticketpulse/adwallet/internal/types"
)

type WebhookServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     WebhookService
	purchaseSvc PurchaseService
	walletSvc   WalletService
	spendSvc    SpendService
}

func TestWebhookService(t *testing.T) {
	suite.Run(t, new(WebhookServiceSuite))
}

func (s *WebhookServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewWebhookService(params)
	s.purchaseSvc = NewPurchaseService(params)
	s.walletSvc = NewWalletService(params)
	s.spendSvc = NewSpendService(params)

	catalog := s.GetStores().CatalogRepo.(*testutil.InMemoryCatalogStore)
	catalog.AddPackage(&creditpackage.Package{ID: "starter", Credits: 1000, PriceUSDCents: 1000})
	catalog.AddPromo(&creditpackage.Promo{Code: "EXTRA1000", Type: types.PromoTypeBonusCredits, BonusCredits: 1000})
}

// purchase creates a pending invoice and returns the purchase response
func (s *WebhookServiceSuite) purchase(promoCode string) *dto.PurchaseCreditsResponse {
	resp, err := s.purchaseSvc.Purchase(s.GetContext(), &dto.PurchaseCreditsRequest{
		OwnerType:      types.OwnerTypeUser,
		OwnerID:        "user_1",
		PackageID:      "starter",
		PromoCode:      promoCode,
		IdempotencyKey: types.GenerateUUID(),
	})
	s.Require().NoError(err)
	return resp
}

// settle delivers a payment-completed event for the invoice
func (s *WebhookServiceSuite) settle(invoiceID, paymentID string) *dto.WebhookResult {
	payload := "completed-" + invoiceID
	s.GetGateway().PushEvent(payload, &stripe.Event{
		ID:        "evt-" + invoiceID,
		Type:      stripe.EventPaymentCompleted,
		InvoiceID: invoiceID,
		PaymentID: paymentID,
	})
	result, err := s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.Require().NoError(err)
	return result
}

func (s *WebhookServiceSuite) TestPaymentCompletedGrantsCredits() {
	purchase := s.purchase("")

	result := s.settle(purchase.InvoiceID, "pi_1")
	s.True(result.Handled)

	inv, err := s.GetStores().InvoiceRepo.GetByID(s.GetContext(), purchase.InvoiceID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, inv.InvoiceStatus)
	s.Equal("pi_1", inv.ProcessorPaymentID)

	w, err := s.walletSvc.GetWallet(s.GetContext(), purchase.WalletID)
	s.NoError(err)
	s.Equal(int64(1000), w.BalanceCredits)
}

func (s *WebhookServiceSuite) TestPaymentCompletedRedelivery() {
	purchase := s.purchase("")

	s.settle(purchase.InvoiceID, "pi_1")
	result := s.settle(purchase.InvoiceID, "pi_1")
	s.True(result.Handled)
	s.Equal("invoice already paid", result.Reason)

	// Redelivery grants nothing extra
	w, err := s.walletSvc.GetWallet(s.GetContext(), purchase.WalletID)
	s.NoError(err)
	s.Equal(int64(1000), w.BalanceCredits)
}

func (s *WebhookServiceSuite) TestInvalidSignature() {
	_, err := s.service.HandleEvent(s.GetContext(), []byte("anything"), "forged")
	s.Error(err)
	s.True(ierr.IsSignatureInvalid(err))
}

func (s *WebhookServiceSuite) TestSessionExpiredMarksInvoiceFailed() {
	purchase := s.purchase("")

	payload := "expired-" + purchase.InvoiceID
	s.GetGateway().PushEvent(payload, &stripe.Event{
		ID:        "evt-exp",
		Type:      stripe.EventPaymentFailed,
		InvoiceID: purchase.InvoiceID,
	})
	result, err := s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.NoError(err)
	s.True(result.Handled)

	inv, err := s.GetStores().InvoiceRepo.GetByID(s.GetContext(), purchase.InvoiceID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusFailed, inv.InvoiceStatus)
}

func (s *WebhookServiceSuite) TestFullRefundClawsBackAllCredits() {
	purchase := s.purchase("")
	s.settle(purchase.InvoiceID, "pi_1")

	payload := "refund-full"
	s.GetGateway().PushEvent(payload, &stripe.Event{
		ID:                  "evt-refund",
		Type:                stripe.EventRefund,
		PaymentID:           "pi_1",
		AmountRefundedCents: 1000,
	})
	result, err := s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.NoError(err)
	s.True(result.Handled)

	w, err := s.walletSvc.GetWallet(s.GetContext(), purchase.WalletID)
	s.NoError(err)
	s.Equal(int64(0), w.BalanceCredits)
	s.Equal(types.WalletStatusActive, w.WalletStatus)
}

func (s *WebhookServiceSuite) TestPartialRefundUsesInvoiceRate() {
	// 1000 cents bought 2000 credits with the bonus promo, so the invoice's
	// effective rate is 2 credits per cent
	purchase := s.purchase("EXTRA1000")
	s.settle(purchase.InvoiceID, "pi_1")

	payload := "refund-partial"
	s.GetGateway().PushEvent(payload, &stripe.Event{
		ID:                  "evt-refund",
		Type:                stripe.EventRefund,
		PaymentID:           "pi_1",
		AmountRefundedCents: 250,
	})
	_, err := s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.NoError(err)

	w, err := s.walletSvc.GetWallet(s.GetContext(), purchase.WalletID)
	s.NoError(err)
	s.Equal(int64(1500), w.BalanceCredits)
}

func (s *WebhookServiceSuite) TestRefundAfterSpendFreezesNegativeWallet() {
	purchase := s.purchase("")
	s.settle(purchase.InvoiceID, "pi_1")

	// Spend half the credits before the refund arrives
	_, err := s.spendSvc.Charge(s.GetContext(), &dto.ChargeSpendRequest{
		WalletID:       purchase.WalletID,
		CampaignID:     "camp_1",
		MetricType:     types.MetricTypeClick,
		Quantity:       5,
		RateModel:      types.RateModelCPC,
		RateUSDCents:   100,
		IdempotencyKey: "spend-1",
	})
	s.Require().NoError(err)

	payload := "refund-full"
	s.GetGateway().PushEvent(payload, &stripe.Event{
		ID:                  "evt-refund",
		Type:                stripe.EventRefund,
		PaymentID:           "pi_1",
		AmountRefundedCents: 1000,
	})
	_, err = s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.NoError(err)

	w, err := s.walletSvc.GetWallet(s.GetContext(), purchase.WalletID)
	s.NoError(err)
	s.Equal(int64(-500), w.BalanceCredits)
	s.Equal(types.WalletStatusFrozen, w.WalletStatus)
}

func (s *WebhookServiceSuite) TestSequentialPartialRefundsUseCumulativeTotal() {
	purchase := s.purchase("")
	s.settle(purchase.InvoiceID, "pi_1")

	// Stripe reports amount_refunded as a running total, so a 250 cent
	// refund followed by another 250 cents arrives as 250 then 500
	payload := "refund-250"
	s.GetGateway().PushEvent(payload, &stripe.Event{
		ID:                  "evt-refund-1",
		Type:                stripe.EventRefund,
		PaymentID:           "pi_1",
		AmountRefundedCents: 250,
	})
	_, err := s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.NoError(err)

	payload = "refund-500"
	s.GetGateway().PushEvent(payload, &stripe.Event{
		ID:                  "evt-refund-2",
		Type:                stripe.EventRefund,
		PaymentID:           "pi_1",
		AmountRefundedCents: 500,
	})
	_, err = s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.NoError(err)

	// 500 cents refunded in total claws back 500 credits, not 750
	w, err := s.walletSvc.GetWallet(s.GetContext(), purchase.WalletID)
	s.NoError(err)
	s.Equal(int64(500), w.BalanceCredits)
}

func (s *WebhookServiceSuite) TestPaymentCompletedStoresReceiptURL() {
	purchase := s.purchase("")

	payload := "completed-receipt"
	s.GetGateway().PushEvent(payload, &stripe.Event{
		ID:         "evt-receipt",
		Type:       stripe.EventPaymentCompleted,
		InvoiceID:  purchase.InvoiceID,
		PaymentID:  "pi_1",
		ReceiptURL: "https://pay.stripe.com/receipts/rcpt_1",
	})
	_, err := s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.NoError(err)

	inv, err := s.GetStores().InvoiceRepo.GetByID(s.GetContext(), purchase.InvoiceID)
	s.NoError(err)
	s.Equal("https://pay.stripe.com/receipts/rcpt_1", inv.ReceiptURL)
}

func (s *WebhookServiceSuite) TestRefundRepairsCachedBalanceDrift() {
	purchase := s.purchase("")
	s.settle(purchase.InvoiceID, "pi_1")

	// Drift the cached balance away from the ledger without a transaction
	store := s.GetStores().WalletRepo.(*testutil.InMemoryWalletStore)
	s.Require().NoError(store.CreditWalletBalance(s.GetContext(), purchase.WalletID, 300))

	payload := "refund-250"
	s.GetGateway().PushEvent(payload, &stripe.Event{
		ID:                  "evt-refund",
		Type:                stripe.EventRefund,
		PaymentID:           "pi_1",
		AmountRefundedCents: 250,
	})
	_, err := s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.NoError(err)

	// The refund reconciles the balance from the ledger, discarding the drift
	w, err := s.walletSvc.GetWallet(s.GetContext(), purchase.WalletID)
	s.NoError(err)
	s.Equal(int64(750), w.BalanceCredits)
	s.Equal(types.WalletStatusActive, w.WalletStatus)
}

func (s *WebhookServiceSuite) TestRefundRedeliveryClawsBackOnce() {
	purchase := s.purchase("")
	s.settle(purchase.InvoiceID, "pi_1")

	payload := "refund-full"
	s.GetGateway().PushEvent(payload, &stripe.Event{
		ID:                  "evt-refund",
		Type:                stripe.EventRefund,
		PaymentID:           "pi_1",
		AmountRefundedCents: 1000,
	})
	_, err := s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.NoError(err)
	_, err = s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.NoError(err)

	w, err := s.walletSvc.GetWallet(s.GetContext(), purchase.WalletID)
	s.NoError(err)
	s.Equal(int64(0), w.BalanceCredits)
}

func (s *WebhookServiceSuite) TestDisputeFreezesWallet() {
	purchase := s.purchase("")
	s.settle(purchase.InvoiceID, "pi_1")

	payload := "dispute"
	s.GetGateway().PushEvent(payload, &stripe.Event{
		ID:        "evt-dispute",
		Type:      stripe.EventDispute,
		PaymentID: "pi_1",
	})
	result, err := s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.NoError(err)
	s.True(result.Handled)

	w, err := s.walletSvc.GetWallet(s.GetContext(), purchase.WalletID)
	s.NoError(err)
	s.Equal(types.WalletStatusFrozen, w.WalletStatus)

	// Frozen wallet rejects further spend
	_, err = s.spendSvc.Charge(s.GetContext(), &dto.ChargeSpendRequest{
		WalletID:       purchase.WalletID,
		CampaignID:     "camp_1",
		MetricType:     types.MetricTypeClick,
		Quantity:       1,
		RateModel:      types.RateModelCPC,
		RateUSDCents:   100,
		IdempotencyKey: "spend-frozen",
	})
	s.Error(err)
	s.True(ierr.IsWalletFrozen(err))
}

func (s *WebhookServiceSuite) TestIgnoredEventType() {
	payload := "ignored"
	s.GetGateway().PushEvent(payload, &stripe.Event{
		ID:   "evt-ignored",
		Type: stripe.EventIgnored,
	})
	result, err := s.service.HandleEvent(s.GetContext(), []byte(payload), "valid")
	s.NoError(err)
	s.True(result.Handled)
	s.Equal("event type not relevant", result.Reason)
}

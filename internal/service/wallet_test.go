package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ticketpulse/adwallet/internal/api/dto"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/testutil"
	"github.com/ticketpulse/adwallet/internal/types"
)

type WalletServiceSuite struct {
	testutil.BaseServiceTestSuite
	service WalletService
}

func TestWalletService(t *testing.T) {
	suite.Run(t, new(WalletServiceSuite))
}

func (s *WalletServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewWalletService(newTestServiceParams(&s.BaseServiceTestSuite))
}

func (s *WalletServiceSuite) TestGetOrCreateWalletIsLazy() {
	owner := types.NewUserOwner("user_1")

	w, err := s.service.GetOrCreateWallet(s.GetContext(), owner)
	s.NoError(err)
	s.NotEmpty(w.ID)
	s.Equal(int64(0), w.BalanceCredits)
	s.Equal(types.WalletStatusActive, w.WalletStatus)

	again, err := s.service.GetOrCreateWallet(s.GetContext(), owner)
	s.NoError(err)
	s.Equal(w.ID, again.ID)
}

func (s *WalletServiceSuite) TestGetOrCreateWalletPerOwnerType() {
	userWallet, err := s.service.GetOrCreateWallet(s.GetContext(), types.NewUserOwner("shared_id"))
	s.NoError(err)
	orgWallet, err := s.service.GetOrCreateWallet(s.GetContext(), types.NewOrganizationOwner("shared_id"))
	s.NoError(err)
	s.NotEqual(userWallet.ID, orgWallet.ID)
}

func (s *WalletServiceSuite) TestGetOrCreateWalletRejectsInvalidOwner() {
	_, err := s.service.GetOrCreateWallet(s.GetContext(), types.WalletOwner{Type: "robot", ID: "r2"})
	s.Error(err)
}

func (s *WalletServiceSuite) TestCreditAndDebit() {
	w, err := s.service.GetOrCreateWallet(s.GetContext(), types.NewUserOwner("user_1"))
	s.NoError(err)

	_, dup, err := s.service.CreditWallet(s.GetContext(), &WalletOperation{
		WalletID:       w.ID,
		Credits:        1000,
		Type:           types.TransactionTypePurchase,
		ReferenceType:  types.WalletTxReferenceTypeInvoice,
		ReferenceID:    "inv_1",
		IdempotencyKey: "purchase-1",
	})
	s.NoError(err)
	s.False(dup)

	tx, dup, err := s.service.DebitWallet(s.GetContext(), &WalletOperation{
		WalletID:       w.ID,
		Credits:        300,
		Type:           types.TransactionTypeSpend,
		ReferenceType:  types.WalletTxReferenceTypeCampaign,
		ReferenceID:    "camp_1",
		IdempotencyKey: "spend-1",
	})
	s.NoError(err)
	s.False(dup)
	s.Equal(int64(-300), tx.CreditsDelta)

	resp, err := s.service.GetWallet(s.GetContext(), w.ID)
	s.NoError(err)
	s.Equal(int64(700), resp.BalanceCredits)
}

func (s *WalletServiceSuite) TestDebitInsufficientFunds() {
	w, err := s.service.GetOrCreateWallet(s.GetContext(), types.NewUserOwner("user_1"))
	s.NoError(err)

	_, _, err = s.service.DebitWallet(s.GetContext(), &WalletOperation{
		WalletID:       w.ID,
		Credits:        1,
		Type:           types.TransactionTypeSpend,
		ReferenceType:  types.WalletTxReferenceTypeCampaign,
		ReferenceID:    "camp_1",
		IdempotencyKey: "spend-1",
	})
	s.Error(err)
	s.True(ierr.IsInsufficientFunds(err))

	// A rejected debit leaves no ledger entry behind
	resp, err := s.service.ListTransactions(s.GetContext(), w.ID, 10, 0)
	s.NoError(err)
	s.Empty(resp.Items)
}

func (s *WalletServiceSuite) TestIdempotentReplayReturnsOriginal() {
	w, err := s.service.GetOrCreateWallet(s.GetContext(), types.NewUserOwner("user_1"))
	s.NoError(err)

	op := &WalletOperation{
		WalletID:       w.ID,
		Credits:        500,
		Type:           types.TransactionTypePurchase,
		ReferenceType:  types.WalletTxReferenceTypeInvoice,
		ReferenceID:    "inv_1",
		IdempotencyKey: "purchase-1",
	}

	first, dup, err := s.service.CreditWallet(s.GetContext(), op)
	s.NoError(err)
	s.False(dup)

	second, dup, err := s.service.CreditWallet(s.GetContext(), op)
	s.NoError(err)
	s.True(dup)
	s.Equal(first.ID, second.ID)

	resp, err := s.service.GetWallet(s.GetContext(), w.ID)
	s.NoError(err)
	s.Equal(int64(500), resp.BalanceCredits)
}

func (s *WalletServiceSuite) TestDebitAllowNegative() {
	w, err := s.service.GetOrCreateWallet(s.GetContext(), types.NewUserOwner("user_1"))
	s.NoError(err)

	_, _, err = s.service.CreditWallet(s.GetContext(), &WalletOperation{
		WalletID:       w.ID,
		Credits:        500,
		Type:           types.TransactionTypePurchase,
		ReferenceType:  types.WalletTxReferenceTypeInvoice,
		ReferenceID:    "inv_1",
		IdempotencyKey: "purchase-1",
	})
	s.NoError(err)

	_, _, err = s.service.DebitWallet(s.GetContext(), &WalletOperation{
		WalletID:       w.ID,
		Credits:        800,
		Type:           types.TransactionTypeRefund,
		ReferenceType:  types.WalletTxReferenceTypeInvoice,
		ReferenceID:    "inv_1",
		IdempotencyKey: "refund-1",
		AllowNegative:  true,
	})
	s.NoError(err)

	resp, err := s.service.GetWallet(s.GetContext(), w.ID)
	s.NoError(err)
	s.Equal(int64(-300), resp.BalanceCredits)
}

func (s *WalletServiceSuite) TestReconcileBalanceRepairsDrift() {
	w, err := s.service.GetOrCreateWallet(s.GetContext(), types.NewUserOwner("user_1"))
	s.NoError(err)

	_, _, err = s.service.CreditWallet(s.GetContext(), &WalletOperation{
		WalletID:       w.ID,
		Credits:        1000,
		Type:           types.TransactionTypePurchase,
		ReferenceType:  types.WalletTxReferenceTypeInvoice,
		ReferenceID:    "inv_1",
		IdempotencyKey: "purchase-1",
	})
	s.NoError(err)

	// Drift the cached balance away from the ledger sum
	store := s.GetStores().WalletRepo
	s.NoError(store.CreditWalletBalance(s.GetContext(), w.ID, 250))

	resp, err := s.service.ReconcileBalance(s.GetContext(), w.ID)
	s.NoError(err)
	s.Equal(int64(1000), resp.BalanceCredits)

	walletResp, err := s.service.GetWallet(s.GetContext(), w.ID)
	s.NoError(err)
	s.Equal(int64(1000), walletResp.BalanceCredits)
}

func (s *WalletServiceSuite) TestSetWalletStatus() {
	w, err := s.service.GetOrCreateWallet(s.GetContext(), types.NewUserOwner("user_1"))
	s.NoError(err)

	s.NoError(s.service.SetWalletStatus(s.GetContext(), w.ID, types.WalletStatusFrozen, "dispute"))

	resp, err := s.service.GetWallet(s.GetContext(), w.ID)
	s.NoError(err)
	s.Equal(types.WalletStatusFrozen, resp.WalletStatus)
}

func (s *WalletServiceSuite) TestDebitFrozenWalletRejected() {
	w, err := s.service.GetOrCreateWallet(s.GetContext(), types.NewUserOwner("user_1"))
	s.NoError(err)
	_, _, err = s.service.CreditWallet(s.GetContext(), &WalletOperation{
		WalletID:       w.ID,
		Credits:        1000,
		Type:           types.TransactionTypePurchase,
		ReferenceType:  types.WalletTxReferenceTypeInvoice,
		ReferenceID:    "inv_1",
		IdempotencyKey: "purchase-1",
	})
	s.NoError(err)

	// A freeze landing between the service-level check and the balance
	// update still blocks the debit at the store
	s.NoError(s.service.SetWalletStatus(s.GetContext(), w.ID, types.WalletStatusFrozen, "dispute"))

	_, _, err = s.service.DebitWallet(s.GetContext(), &WalletOperation{
		WalletID:       w.ID,
		Credits:        100,
		Type:           types.TransactionTypeSpend,
		ReferenceType:  types.WalletTxReferenceTypeCampaign,
		ReferenceID:    "camp_1",
		IdempotencyKey: "spend-1",
	})
	s.Error(err)
	s.True(ierr.IsWalletFrozen(err))

	resp, err := s.service.GetWallet(s.GetContext(), w.ID)
	s.NoError(err)
	s.Equal(int64(1000), resp.BalanceCredits)
}

func (s *WalletServiceSuite) TestConfigureAutoReloadBelowPurchaseFloor() {
	w, err := s.service.GetOrCreateWallet(s.GetContext(), types.NewUserOwner("user_1"))
	s.NoError(err)

	_, err = s.service.ConfigureAutoReload(s.GetContext(), w.ID, &dto.ConfigureAutoReloadRequest{
		LowBalanceThreshold:    500,
		AutoReloadEnabled:      true,
		AutoReloadTopupCredits: s.GetConfig().Wallet.MinCustomCredits - 1,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

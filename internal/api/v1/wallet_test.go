package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/ticketpulse/adwallet/internal/breaker"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/idempotency"
	"github.com/ticketpulse/adwallet/internal/service"
	"github.com/ticketpulse/adwallet/internal/testutil"
	"github.com/ticketpulse/adwallet/internal/types"
)

type WalletHandlerSuite struct {
	testutil.BaseServiceTestSuite
	handler   *WalletHandler
	walletSvc service.WalletService
}

func TestWalletHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(WalletHandlerSuite))
}

func (s *WalletHandlerSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	stores := s.GetStores()
	s.walletSvc = service.NewWalletService(service.ServiceParams{
		Logger:         s.GetLogger(),
		Config:         s.GetConfig(),
		DB:             s.GetDB(),
		WalletRepo:     stores.WalletRepo,
		InvoiceRepo:    stores.InvoiceRepo,
		AdSpendRepo:    stores.AdSpendRepo,
		CatalogRepo:    stores.CatalogRepo,
		Gateway:        s.GetGateway(),
		Breakers:       breaker.NewRegistry(s.GetConfig()),
		IdempotencyGen: idempotency.NewGenerator(),
	})
	s.handler = NewWalletHandler(s.walletSvc, s.GetLogger())
}

// request builds a gin test context whose request carries the given identity
func (s *WalletHandlerSuite) request(ctx context.Context, walletID string) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/v1/wallets/"+walletID, nil)
	c.Request = req.WithContext(ctx)
	c.Params = gin.Params{{Key: "id", Value: walletID}}
	return c, rec
}

func (s *WalletHandlerSuite) createWallet(userID string) string {
	ctx := types.SetUserID(context.Background(), userID)
	w, err := s.walletSvc.GetOrCreateWallet(ctx, types.NewUserOwner(userID))
	s.Require().NoError(err)
	return w.ID
}

func (s *WalletHandlerSuite) TestGetWalletAsOwner() {
	walletID := s.createWallet("user_1")

	ctx := types.SetUserID(context.Background(), "user_1")
	c, rec := s.request(ctx, walletID)
	s.handler.GetWallet(c)

	s.Empty(c.Errors)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *WalletHandlerSuite) TestGetWalletOwnedBySomeoneElse() {
	walletID := s.createWallet("user_1")

	// A valid wallet id owned by another user reads as not found
	ctx := types.SetUserID(context.Background(), "user_2")
	c, _ := s.request(ctx, walletID)
	s.handler.GetWallet(c)

	s.Require().NotEmpty(c.Errors)
	s.True(ierr.IsNotFound(c.Errors.Last().Err))
}

func (s *WalletHandlerSuite) TestGetWalletAsServiceCaller() {
	walletID := s.createWallet("user_1")

	ctx := types.SetServiceCaller(context.Background())
	c, rec := s.request(ctx, walletID)
	s.handler.GetWallet(c)

	s.Empty(c.Errors)
	s.Equal(http.StatusOK, rec.Code)
}

func (s *WalletHandlerSuite) TestGetWalletByOwnerUsesCallerIdentity() {
	s.createWallet("user_1")
	otherID := s.createWallet("user_2")

	ctx := types.SetUserID(context.Background(), "user_1")
	c, rec := s.request(ctx, "")
	s.handler.GetWalletByOwner(c)

	s.Empty(c.Errors)
	s.Equal(http.StatusOK, rec.Code)
	s.NotContains(rec.Body.String(), otherID)
}

func (s *WalletHandlerSuite) TestGetWalletByOwnerWithoutIdentity() {
	c, _ := s.request(context.Background(), "")
	s.handler.GetWalletByOwner(c)

	s.Require().NotEmpty(c.Errors)
	s.True(ierr.IsPermissionDenied(c.Errors.Last().Err))
}

func (s *WalletHandlerSuite) TestListTransactionsOwnedBySomeoneElse() {
	walletID := s.createWallet("user_1")

	ctx := types.SetUserID(context.Background(), "user_2")
	c, _ := s.request(ctx, walletID)
	s.handler.ListTransactions(c)

	s.Require().NotEmpty(c.Errors)
	s.True(ierr.IsNotFound(c.Errors.Last().Err))
}

func (s *WalletHandlerSuite) TestOrganizationIdentityTakesPrecedence() {
	orgCtx := types.SetOrgID(context.Background(), "org_1")
	w, err := s.walletSvc.GetOrCreateWallet(orgCtx, types.NewOrganizationOwner("org_1"))
	s.Require().NoError(err)

	// A caller carrying both identities acts as the organization
	ctx := types.SetOrgID(types.SetUserID(context.Background(), "user_1"), "org_1")
	c, rec := s.request(ctx, w.ID)
	s.handler.GetWallet(c)

	s.Empty(c.Errors)
	s.Equal(http.StatusOK, rec.Code)
}

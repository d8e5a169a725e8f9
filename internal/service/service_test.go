package service

import (
	"github.com/ticketpulse/adwallet/internal/breaker"
	"github.com/ticketpulse/adwallet/internal/idempotency"
	"github.com/ticketpulse/adwallet/internal/testutil"
)

func newTestServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
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
	}
}

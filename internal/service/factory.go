package service

import (
	"github.com/ticketpulse/adwallet/internal/breaker"
	"github.com/ticketpulse/adwallet/internal/config"
	"github.com/ticketpulse/adwallet/internal/domain/adspend"
	"github.com/ticketpulse/adwallet/internal/domain/creditpackage"
	"github.com/ticketpulse/adwallet/internal/domain/invoice"
	"github.com/ticketpulse/adwallet/internal/domain/wallet"
	"github.com/ticketpulse/adwallet/internal/idempotency"
	"github.com/ticketpulse/adwallet/internal/integration/stripe"
	"github.com/ticketpulse/adwallet/internal/logger"
	"github.com/ticketpulse/adwallet/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	WalletRepo  wallet.Repository
	InvoiceRepo invoice.Repository
	AdSpendRepo adspend.Repository
	CatalogRepo creditpackage.Repository

	// External
	Gateway  stripe.Gateway
	Breakers *breaker.Registry

	IdempotencyGen *idempotency.Generator
}

// NewServiceParams creates a new ServiceParams with all dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	walletRepo wallet.Repository,
	invoiceRepo invoice.Repository,
	adSpendRepo adspend.Repository,
	catalogRepo creditpackage.Repository,
	gateway stripe.Gateway,
	breakers *breaker.Registry,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		DB:             db,
		WalletRepo:     walletRepo,
		InvoiceRepo:    invoiceRepo,
		AdSpendRepo:    adSpendRepo,
		CatalogRepo:    catalogRepo,
		Gateway:        gateway,
		Breakers:       breakers,
		IdempotencyGen: idempotency.NewGenerator(),
	}
}

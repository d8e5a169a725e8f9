package repository

import (
	"github.com/ticketpulse/adwallet/internal/config"
	"github.com/ticketpulse/adwallet/internal/domain/adspend"
	"github.com/ticketpulse/adwallet/internal/domain/creditpackage"
	"github.com/ticketpulse/adwallet/internal/domain/invoice"
	"github.com/ticketpulse/adwallet/internal/domain/wallet"
	"github.com/ticketpulse/adwallet/internal/logger"
	"github.com/ticketpulse/adwallet/internal/postgres"
	postgresRepo "github.com/ticketpulse/adwallet/internal/repository/postgres"
)

func NewWalletRepository(db *postgres.DB, logger *logger.Logger) wallet.Repository {
	return postgresRepo.NewWalletRepository(db, logger)
}

func NewInvoiceRepository(db *postgres.DB, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(db, logger)
}

func NewAdSpendRepository(db *postgres.DB, logger *logger.Logger) adspend.Repository {
	return postgresRepo.NewAdSpendRepository(db, logger)
}

func NewCreditPackageRepository(cfg *config.Configuration) creditpackage.Repository {
	return NewCatalogRepository(cfg)
}

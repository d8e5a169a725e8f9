package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/ticketpulse/adwallet/internal/config"
	"github.com/ticketpulse/adwallet/internal/domain/adspend"
	"github.com/ticketpulse/adwallet/internal/domain/creditpackage"
	"github.com/ticketpulse/adwallet/internal/domain/invoice"
	"github.com/ticketpulse/adwallet/internal/domain/wallet"
	"github.com/ticketpulse/adwallet/internal/logger"
	"github.com/ticketpulse/adwallet/internal/postgres"
	"github.com/ticketpulse/adwallet/internal/types"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	WalletRepo  wallet.Repository
	InvoiceRepo invoice.Repository
	AdSpendRepo adspend.Repository
	CatalogRepo creditpackage.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	gateway *FakeProcessorGateway
	db      postgres.IClient
	logger  *logger.Logger
	config  *config.Configuration
	now     time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	s.config = config.GetDefaultConfig()

	var err error
	s.logger, err = logger.NewLogger(s.config.Logging.Level)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = types.SetUserID(s.ctx, "user_test")
	s.ctx = types.SetRequestID(s.ctx, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	walletStore := NewInMemoryWalletStore()
	invoiceStore := NewInMemoryInvoiceStore()
	s.stores = Stores{
		WalletRepo:  walletStore,
		InvoiceRepo: invoiceStore,
		AdSpendRepo: NewInMemoryAdSpendStore(),
		CatalogRepo: NewInMemoryCatalogStore(),
	}
	s.db = NewMockPostgresClient(s.logger, walletStore, invoiceStore)
	s.gateway = NewFakeProcessorGateway()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.WalletRepo.(*InMemoryWalletStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.AdSpendRepo.(*InMemoryAdSpendStore).Clear()
	s.stores.CatalogRepo.(*InMemoryCatalogStore).Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetGateway returns the fake payment gateway
func (s *BaseServiceTestSuite) GetGateway() *FakeProcessorGateway {
	return s.gateway
}

// GetDB returns the mock database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}

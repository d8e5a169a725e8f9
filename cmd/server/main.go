package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	"github.com/ticketpulse/adwallet/internal/api"
	v1 "github.com/ticketpulse/adwallet/internal/api/v1"
	"github.com/ticketpulse/adwallet/internal/breaker"
	"github.com/ticketpulse/adwallet/internal/config"
	"github.com/ticketpulse/adwallet/internal/integration/stripe"
	"github.com/ticketpulse/adwallet/internal/logger"
	"github.com/ticketpulse/adwallet/internal/postgres"
	"github.com/ticketpulse/adwallet/internal/repository"
	"github.com/ticketpulse/adwallet/internal/service"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Load local overrides from .env when present
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			provideLogger,

			// Postgres
			providePostgres,
			providePostgresClient,

			// Repositories
			repository.NewWalletRepository,
			repository.NewInvoiceRepository,
			repository.NewAdSpendRepository,
			repository.NewCreditPackageRepository,

			// External integrations
			provideGateway,
			breaker.NewRegistry,

			// Services
			service.NewServiceParams,
			service.NewWalletService,
			service.NewSpendService,
			service.NewPurchaseService,
			service.NewWebhookService,

			// HTTP
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideLogger(cfg *config.Configuration) (*logger.Logger, error) {
	return logger.NewLogger(cfg.Logging.Level)
}

func providePostgres(cfg *config.Configuration, log *logger.Logger) (*postgres.DB, error) {
	return postgres.NewDB(cfg, log)
}

func providePostgresClient(db *postgres.DB) postgres.IClient {
	return db
}

func provideGateway(cfg *config.Configuration, log *logger.Logger) stripe.Gateway {
	return stripe.NewClient(cfg, log)
}

func provideHandlers(
	walletService service.WalletService,
	spendService service.SpendService,
	purchaseService service.PurchaseService,
	webhookService service.WebhookService,
	breakers *breaker.Registry,
	log *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Health:   v1.NewHealthHandler(log),
		Wallet:   v1.NewWalletHandler(walletService, log),
		Spend:    v1.NewSpendHandler(spendService, log),
		Purchase: v1.NewPurchaseHandler(purchaseService, log),
		Webhook:  v1.NewWebhookHandler(webhookService, log),
		Breaker:  v1.NewBreakerHandler(breakers, log),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, log)
}

func startServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

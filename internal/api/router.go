package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/ticketpulse/adwallet/internal/api/v1"
	"github.com/ticketpulse/adwallet/internal/config"
	"github.com/ticketpulse/adwallet/internal/logger"
	"github.com/ticketpulse/adwallet/internal/rest/middleware"
)

type Handlers struct {
	Health   *v1.HealthHandler
	Wallet   *v1.WalletHandler
	Spend    *v1.SpendHandler
	Purchase *v1.PurchaseHandler
	Webhook  *v1.WebhookHandler
	Breaker  *v1.BreakerHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	// Webhooks authenticate by signature, not by caller credentials
	router.POST("/webhooks/stripe", handlers.Webhook.HandleStripeWebhook)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers, cfg, logger)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers, cfg *config.Configuration, logger *logger.Logger) {
	userAuth := middleware.UserAuthMiddleware(cfg, logger)
	serviceAuth := middleware.ServiceAuthMiddleware(cfg, logger)

	// Metered spend, reported by the ad delivery service
	spend := router.Group("", serviceAuth)
	{
		spend.POST("/spend", handlers.Spend.Charge)
		spend.GET("/campaigns/:id/spend", handlers.Spend.ListCampaignSpend)
	}

	// Purchases, initiated by end users
	purchases := router.Group("", userAuth)
	{
		purchases.POST("/purchases", handlers.Purchase.Purchase)
		purchases.GET("/invoices/:id", handlers.Purchase.GetInvoice)
		purchases.GET("/wallets", handlers.Wallet.GetWalletByOwner)
		purchases.GET("/wallets/:id", handlers.Wallet.GetWallet)
		purchases.GET("/wallets/:id/transactions", handlers.Wallet.ListTransactions)
		purchases.PUT("/wallets/:id/auto-reload", handlers.Wallet.ConfigureAutoReload)
	}

	// Operational surface for internal services
	ops := router.Group("", serviceAuth)
	{
		ops.POST("/wallets/:id/reconcile", handlers.Wallet.ReconcileBalance)
		ops.PUT("/wallets/:id/status", handlers.Wallet.UpdateWalletStatus)
		ops.GET("/breakers", handlers.Breaker.ListBreakers)
	}
}

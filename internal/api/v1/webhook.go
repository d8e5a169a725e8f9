package v1

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/logger"
	"github.com/ticketpulse/adwallet/internal/service"
)

const stripeSignatureHeader = "Stripe-Signature"

type WebhookHandler struct {
	webhookService service.WebhookService
	logger         *logger.Logger
}

func NewWebhookHandler(webhookService service.WebhookService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
		logger:         logger,
	}
}

// HandleStripeWebhook godoc
// @Summary Process a payment processor webhook
// @Description Verify and apply a processor event; redelivery is safe
// @Tags Webhook
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Unable to read webhook payload").
			Mark(ierr.ErrValidation))
		return
	}

	result, err := h.webhookService.HandleEvent(c.Request.Context(), payload, c.GetHeader(stripeSignatureHeader))
	if err != nil {
		h.logger.Errorw("webhook processing failed", "error", err)
		c.Error(err)
		return
	}

	h.logger.Infow("webhook processed",
		"event_id", result.EventID,
		"event_type", result.EventType,
		"handled", result.Handled,
		"reason", result.Reason)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

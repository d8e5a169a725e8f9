package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ticketpulse/adwallet/internal/api/dto"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/logger"
	"github.com/ticketpulse/adwallet/internal/service"
	"github.com/ticketpulse/adwallet/internal/types"
)

type PurchaseHandler struct {
	purchaseService service.PurchaseService
	logger          *logger.Logger
}

func NewPurchaseHandler(purchaseService service.PurchaseService, logger *logger.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
		logger:          logger,
	}
}

// Purchase godoc
// @Summary Purchase credits
// @Description Create a pending invoice and a hosted checkout session
// @Tags Purchase
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-Idempotency-Key header string true "Idempotency key"
// @Param request body dto.PurchaseCreditsRequest true "Purchase request"
// @Success 200 {object} dto.PurchaseCreditsResponse
// @Failure 503 {object} middleware.ErrorResponse "Payment processor unavailable"
// @Router /purchases [post]
func (h *PurchaseHandler) Purchase(c *gin.Context) {
	var req dto.PurchaseCreditsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	req.IdempotencyKey = c.GetHeader(types.HeaderIdempotencyKey)

	owner, err := types.OwnerFromContext(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	req.OwnerType = owner.Type
	req.OwnerID = owner.ID

	resp, err := h.purchaseService.Purchase(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetInvoice godoc
// @Summary Get an invoice
// @Description Get a purchase invoice by id
// @Tags Purchase
// @Produce json
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} invoice.Invoice
// @Router /invoices/{id} [get]
func (h *PurchaseHandler) GetInvoice(c *gin.Context) {
	inv, err := h.purchaseService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

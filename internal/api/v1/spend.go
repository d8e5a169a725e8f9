package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ticketpulse/adwallet/internal/api/dto"
	ierr "github.com/ticketpulse/adwallet/internal/errors"
	"github.com/ticketpulse/adwallet/internal/logger"
	"github.com/ticketpulse/adwallet/internal/service"
	"github.com/ticketpulse/adwallet/internal/types"
)

type SpendHandler struct {
	spendService service.SpendService
	logger       *logger.Logger
}

func NewSpendHandler(spendService service.SpendService, logger *logger.Logger) *SpendHandler {
	return &SpendHandler{
		spendService: spendService,
		logger:       logger,
	}
}

// Charge godoc
// @Summary Charge metered ad usage
// @Description Convert a usage report into credits and debit the wallet
// @Tags Spend
// @Accept json
// @Produce json
// @Param X-Idempotency-Key header string true "Idempotency key"
// @Param request body dto.ChargeSpendRequest true "Usage charge"
// @Success 200 {object} dto.ChargeSpendResponse
// @Success 204 "Already processed"
// @Failure 402 {object} middleware.ErrorResponse "Insufficient funds"
// @Failure 409 {object} middleware.ErrorResponse "Wallet frozen"
// @Router /spend [post]
func (h *SpendHandler) Charge(c *gin.Context) {
	var req dto.ChargeSpendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	req.IdempotencyKey = c.GetHeader(types.HeaderIdempotencyKey)

	resp, err := h.spendService.Charge(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	if resp.Duplicate {
		// Redelivery of a settled charge carries no new state.
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListCampaignSpend godoc
// @Summary List campaign spend
// @Description List the metering audit trail for a campaign
// @Tags Spend
// @Produce json
// @Param id path string true "Campaign ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {array} adspend.LedgerEntry
// @Router /campaigns/{id}/spend [get]
func (h *SpendHandler) ListCampaignSpend(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := h.spendService.ListCampaignSpend(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

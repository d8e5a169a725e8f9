package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ticketpulse/adwallet/internal/breaker"
	"github.com/ticketpulse/adwallet/internal/logger"
)

type BreakerHandler struct {
	registry *breaker.Registry
	logger   *logger.Logger
}

func NewBreakerHandler(registry *breaker.Registry, logger *logger.Logger) *BreakerHandler {
	return &BreakerHandler{
		registry: registry,
		logger:   logger,
	}
}

// ListBreakers godoc
// @Summary List circuit breakers
// @Description Report the state of every external service circuit breaker
// @Tags Breaker
// @Produce json
// @Success 200 {array} breaker.Snapshot
// @Router /breakers [get]
func (h *BreakerHandler) ListBreakers(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Snapshots())
}

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

type WalletHandler struct {
	walletService service.WalletService
	logger        *logger.Logger
}

func NewWalletHandler(walletService service.WalletService, logger *logger.Logger) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
		logger:        logger,
	}
}

// authorizeWallet loads the wallet and verifies the caller may act on it.
// Internal service callers see every wallet; end users only their own. A
// wallet owned by someone else reads as not found so ids do not leak.
func (h *WalletHandler) authorizeWallet(c *gin.Context, id string) (*dto.WalletResponse, error) {
	resp, err := h.walletService.GetWallet(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if types.IsServiceCaller(c.Request.Context()) {
		return resp, nil
	}

	owner, err := types.OwnerFromContext(c.Request.Context())
	if err != nil {
		return nil, err
	}
	if resp.OwnerType != owner.Type || resp.OwnerID != owner.ID {
		return nil, ierr.NewError("wallet not found").
			WithHint("Wallet not found").
			WithReportableDetails(map[string]any{
				"wallet_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return resp, nil
}

// GetWallet godoc
// @Summary Get a wallet
// @Description Get a wallet by id
// @Tags Wallet
// @Produce json
// @Security BearerAuth
// @Param id path string true "Wallet ID"
// @Success 200 {object} dto.WalletResponse
// @Router /wallets/{id} [get]
func (h *WalletHandler) GetWallet(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("wallet id is required").
			WithHint("Provide a wallet id").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.authorizeWallet(c, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetWalletByOwner godoc
// @Summary Get the caller's wallet
// @Description Resolve the wallet owned by the authenticated caller
// @Tags Wallet
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.WalletResponse
// @Router /wallets [get]
func (h *WalletHandler) GetWalletByOwner(c *gin.Context) {
	owner, err := types.OwnerFromContext(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	resp, err := h.walletService.GetWalletByOwner(c.Request.Context(), owner)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListTransactions godoc
// @Summary List wallet transactions
// @Description List a wallet's ledger entries, newest first
// @Tags Wallet
// @Produce json
// @Param id path string true "Wallet ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.ListWalletTransactionsResponse
// @Router /wallets/{id}/transactions [get]
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	id := c.Param("id")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	if _, err := h.authorizeWallet(c, id); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.walletService.ListTransactions(c.Request.Context(), id, limit, offset)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ReconcileBalance godoc
// @Summary Reconcile a wallet balance
// @Description Recompute the cached balance from the transaction history
// @Tags Wallet
// @Produce json
// @Param id path string true "Wallet ID"
// @Success 200 {object} dto.ReconcileBalanceResponse
// @Router /wallets/{id}/reconcile [post]
func (h *WalletHandler) ReconcileBalance(c *gin.Context) {
	resp, err := h.walletService.ReconcileBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateWalletStatus godoc
// @Summary Freeze or unfreeze a wallet
// @Description Update a wallet's status; frozen wallets reject all spend
// @Tags Wallet
// @Accept json
// @Produce json
// @Param id path string true "Wallet ID"
// @Param request body dto.UpdateWalletStatusRequest true "Status update"
// @Success 200 {object} dto.WalletResponse
// @Router /wallets/{id}/status [put]
func (h *WalletHandler) UpdateWalletStatus(c *gin.Context) {
	var req dto.UpdateWalletStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	id := c.Param("id")
	if err := h.walletService.SetWalletStatus(c.Request.Context(), id, req.WalletStatus, req.Memo); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.walletService.GetWallet(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfigureAutoReload godoc
// @Summary Configure auto reload
// @Description Update a wallet's low balance threshold and top-up behavior
// @Tags Wallet
// @Accept json
// @Produce json
// @Param id path string true "Wallet ID"
// @Param request body dto.ConfigureAutoReloadRequest true "Auto reload settings"
// @Success 200 {object} dto.WalletResponse
// @Router /wallets/{id}/auto-reload [put]
func (h *WalletHandler) ConfigureAutoReload(c *gin.Context) {
	var req dto.ConfigureAutoReloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	if _, err := h.authorizeWallet(c, c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.walletService.ConfigureAutoReload(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

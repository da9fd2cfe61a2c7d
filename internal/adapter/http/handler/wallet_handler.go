package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet read endpoints.
type WalletHandler struct {
	fundsSvc ports.FundsService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(fundsSvc ports.FundsService) *WalletHandler {
	return &WalletHandler{fundsSvc: fundsSvc}
}

// GetWallet handles GET /api/v1/users/:id/wallet. The wallet is
// created on first access, so the endpoint never 404s for a known
// user.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	wallet, err := h.fundsSvc.GetWallet(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletResponse(wallet))
}

// ListTransactions handles GET /api/v1/users/:id/wallet/transactions.
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	statement, err := h.fundsSvc.ListTransactions(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewStatementResponse(statement))
}

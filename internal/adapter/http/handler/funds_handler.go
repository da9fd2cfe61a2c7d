package handler

import (
	"context"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderIdempotencyKey lets callers pass the dedup key as a header
// instead of the request body. The header wins when both are set.
const HeaderIdempotencyKey = "Idempotency-Key"

// FundsHandler handles deposit and withdrawal endpoints.
type FundsHandler struct {
	fundsSvc ports.FundsService
}

// NewFundsHandler creates a new FundsHandler.
func NewFundsHandler(fundsSvc ports.FundsService) *FundsHandler {
	return &FundsHandler{fundsSvc: fundsSvc}
}

// Deposit handles POST /api/v1/users/:id/wallet/deposit.
func (h *FundsHandler) Deposit(c *gin.Context) {
	h.handle(c, h.fundsSvc.Deposit)
}

// Withdraw handles POST /api/v1/users/:id/wallet/withdraw.
func (h *FundsHandler) Withdraw(c *gin.Context) {
	h.handle(c, h.fundsSvc.Withdraw)
}

func (h *FundsHandler) handle(c *gin.Context, op func(ctx context.Context, req ports.FundsRequest) (*ports.FundsResult, error)) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid user id"))
		return
	}

	var req dto.FundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	idempKey := req.IdempotencyKey
	if header := c.GetHeader(HeaderIdempotencyKey); header != "" {
		idempKey = &header
	}

	result, err := op(c.Request.Context(), ports.FundsRequest{
		UserID:         userID,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Metadata:       req.Metadata,
		IdempotencyKey: idempKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.NewFundsResponse(result))
}

package public

import (
	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateWithdrawalRequest 提现申请
type CreateWithdrawalRequest struct {
	Amount         models.Money      `json:"amount"`
	PaymentMethod  string            `json:"payment_method" binding:"required"`
	PaymentDetails map[string]string `json:"payment_details" binding:"required"`
}

// CreateWithdrawal 发起提现，金额从可提现冻结到提现中
func (h *Handler) CreateWithdrawal(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	withdrawal, err := h.WithdrawalService.Create(c.Request.Context(), principal, service.CreateWithdrawalInput{
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		PaymentDetails: req.PaymentDetails,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, withdrawal)
}

// ListMyWithdrawals 我的提现记录
func (h *Handler) ListMyWithdrawals(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	rows, total, err := h.WithdrawalService.ListMine(principal, c.Query("status"), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetMyWithdrawalStats 提现概览
func (h *Handler) GetMyWithdrawalStats(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	stats, err := h.WithdrawalService.Stats(principal)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, stats)
}

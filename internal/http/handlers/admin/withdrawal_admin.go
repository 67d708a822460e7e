package admin

import (
	"strings"

	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminApproveWithdrawalRequest 审核通过
type AdminApproveWithdrawalRequest struct {
	Notes string `json:"notes"`
}

// AdminRejectWithdrawalRequest 驳回
type AdminRejectWithdrawalRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// AdminCompleteWithdrawalRequest 打款完成
type AdminCompleteWithdrawalRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
	Notes         string `json:"notes"`
}

// AdminListWithdrawals 管理端提现列表
func (h *Handler) AdminListWithdrawals(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	rows, total, err := h.WithdrawalService.ListAdmin(principal, repository.WithdrawalListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserUID:       strings.TrimSpace(c.Query("user_uid")),
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentMethod: strings.TrimSpace(c.Query("payment_method")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// AdminApproveWithdrawal 审核通过，资金仍保持冻结
func (h *Handler) AdminApproveWithdrawal(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	withdrawalID, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AdminApproveWithdrawalRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
	}
	withdrawal, err := h.WithdrawalService.Approve(c.Request.Context(), principal, withdrawalID, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, withdrawal)
}

// AdminRejectWithdrawal 驳回并释放冻结资金
func (h *Handler) AdminRejectWithdrawal(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	withdrawalID, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AdminRejectWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	withdrawal, err := h.WithdrawalService.Reject(c.Request.Context(), principal, withdrawalID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, withdrawal)
}

// AdminCompleteWithdrawal 确认打款
func (h *Handler) AdminCompleteWithdrawal(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	withdrawalID, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AdminCompleteWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	withdrawal, err := h.WithdrawalService.Complete(c.Request.Context(), principal, withdrawalID, req.TransactionID, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, withdrawal)
}

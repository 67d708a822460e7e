package admin

import (
	"strconv"
	"strings"

	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminSetCommissionStatusRequest 佣金状态人工调整
type AdminSetCommissionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminListCommissions 管理端佣金列表
func (h *Handler) AdminListCommissions(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	filter := repository.CommissionListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserUID:     strings.TrimSpace(c.Query("user_uid")),
		Status:      strings.TrimSpace(c.Query("status")),
		OrderNumber: strings.TrimSpace(c.Query("order_number")),
	}
	if raw := strings.TrimSpace(c.Query("order_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.OrderID = uint(parsed)
		}
	}
	rows, total, err := h.CommissionService.ListAdmin(principal, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// AdminSetCommissionStatus 人工调整佣金状态，允许回退，钱包同步调整
func (h *Handler) AdminSetCommissionStatus(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	commissionID, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AdminSetCommissionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	commission, err := h.CommissionService.AdminSetStatus(c.Request.Context(), principal, commissionID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, commission)
}

package public

import (
	"github.com/buyv-ledger/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListMyCommissions 推广者佣金明细
func (h *Handler) ListMyCommissions(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	rows, total, err := h.CommissionService.ListMine(principal, c.Query("status"), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

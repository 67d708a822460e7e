package admin

import (
	"github.com/buyv-ledger/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetAdminWallet 查看推广者钱包
func (h *Handler) GetAdminWallet(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	wallet, err := h.WalletService.AdminGetWallet(principal, c.Param("uid"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, wallet)
}

// ReconcileAdminWallet 单个钱包对账，只返回差异不修正
func (h *Handler) ReconcileAdminWallet(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	report, err := h.ReconcileService.ReconcileWallet(principal, c.Param("uid"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, report)
}

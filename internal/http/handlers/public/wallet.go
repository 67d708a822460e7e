package public

import (
	"strings"

	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/repository"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// UpdateBankDetailsRequest 银行卡信息
type UpdateBankDetailsRequest struct {
	BankName          string `json:"bank_name" binding:"required"`
	BankAccountHolder string `json:"bank_account_holder" binding:"required"`
	BankAccountNumber string `json:"bank_account_number" binding:"required"`
	BankSwiftCode     string `json:"bank_swift_code"`
}

// GetMyWallet 获取当前推广者钱包
func (h *Handler) GetMyWallet(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	wallet, err := h.WalletService.GetWallet(principal)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, wallet)
}

// UpdateMyBankDetails 更新银行卡信息
func (h *Handler) UpdateMyBankDetails(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req UpdateBankDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	wallet, err := h.WalletService.UpdateBankDetails(principal, service.UpdateBankDetailsInput{
		BankName:          req.BankName,
		BankAccountHolder: req.BankAccountHolder,
		BankAccountNumber: req.BankAccountNumber,
		BankSwiftCode:     req.BankSwiftCode,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, wallet)
}

// ListMyWalletTransactions 钱包流水
func (h *Handler) ListMyWalletTransactions(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	rows, total, err := h.WalletService.ListTransactions(principal, repository.WalletTransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		Type:     strings.TrimSpace(c.Query("type")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

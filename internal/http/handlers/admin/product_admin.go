package admin

import (
	"strings"

	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/repository"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AdminUpsertProductRequest 商品及佣金比例
type AdminUpsertProductRequest struct {
	Name                  string `json:"name" binding:"required"`
	Price                 string `json:"price" binding:"required"`
	CommissionRatePercent string `json:"commission_rate_percent" binding:"required"`
	Status                string `json:"status"`
}

// AdminListProducts 商品列表
func (h *Handler) AdminListProducts(c *gin.Context) {
	page, pageSize := parsePagination(c)
	rows, total, err := h.ProductService.ListProducts(repository.ProductListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// AdminUpsertProduct 创建或更新商品佣金比例
func (h *Handler) AdminUpsertProduct(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req AdminUpsertProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	rate, err := decimal.NewFromString(strings.TrimSpace(req.CommissionRatePercent))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	product, err := h.ProductService.UpsertProduct(c.Request.Context(), principal, service.UpsertProductInput{
		ID:                    c.Param("id"),
		Name:                  req.Name,
		Price:                 price,
		CommissionRatePercent: rate,
		Status:                req.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, product)
}

package admin

import (
	"strconv"
	"strings"

	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminUpdateOrderStatusRequest 订单状态更新
type AdminUpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AdminUpdateOrderTrackingRequest 物流信息更新
type AdminUpdateOrderTrackingRequest struct {
	TrackingNumber    string `json:"tracking_number" binding:"required"`
	EstimatedDelivery string `json:"estimated_delivery"`
}

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)

	createdFrom, err := parseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var userID uint
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			userID = uint(parsed)
		}
	}

	orders, total, err := h.OrderService.ListOrdersAdmin(principal, repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		UserID:      userID,
		Status:      strings.TrimSpace(c.Query("status")),
		OrderNumber: strings.TrimSpace(c.Query("order_number")),
		PromoterUID: strings.TrimSpace(c.Query("promoter_uid")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// AdminUpdateOrderStatus 更新订单状态，关联佣金随之流转
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	orderID, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AdminUpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderService.UpdateOrderStatus(c.Request.Context(), principal, orderID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// AdminUpdateOrderTracking 更新物流单号
func (h *Handler) AdminUpdateOrderTracking(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	orderID, ok := parsePathUint(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var req AdminUpdateOrderTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	estimated, err := parseTimeNullable(req.EstimatedDelivery)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	order, err := h.OrderService.UpdateTracking(principal, orderID, req.TrackingNumber, estimated)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

package public

import (
	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderItemRequest 下单商品项
type CreateOrderItemRequest struct {
	ProductID         string                 `json:"product_id" binding:"required"`
	ProductName       string                 `json:"product_name"`
	ProductImage      string                 `json:"product_image"`
	Price             models.Money           `json:"price"`
	Quantity          int                    `json:"quantity" binding:"required,min=1"`
	Size              string                 `json:"size"`
	Color             string                 `json:"color"`
	Attributes        map[string]interface{} `json:"attributes"`
	IsPromotedProduct bool                   `json:"is_promoted_product"`
	PromoterUID       string                 `json:"promoter_uid"`
}

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	OrderNumber     string                   `json:"order_number"`
	Items           []CreateOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Shipping        models.Money             `json:"shipping"`
	Tax             models.Money             `json:"tax"`
	ShippingAddress map[string]interface{}   `json:"shipping_address"`
	PaymentMethod   string                   `json:"payment_method"`
	PaymentIntentID string                   `json:"payment_intent_id"`
	PromoterUID     string                   `json:"promoter_uid"`
	Notes           string                   `json:"notes"`
}

// CreateOrder 买家下单，推广商品按佣金比例计提待结算佣金
func (h *Handler) CreateOrder(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	items := make([]service.CreateOrderItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItemInput{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			ProductImage:      item.ProductImage,
			Price:             item.Price,
			Quantity:          item.Quantity,
			Size:              item.Size,
			Color:             item.Color,
			Attributes:        item.Attributes,
			IsPromotedProduct: item.IsPromotedProduct,
			PromoterUID:       item.PromoterUID,
		})
	}
	order, err := h.OrderService.CreateOrder(c.Request.Context(), principal, service.CreateOrderInput{
		OrderNumber:     req.OrderNumber,
		Items:           items,
		Shipping:        req.Shipping,
		Tax:             req.Tax,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentIntentID: req.PaymentIntentID,
		PromoterUID:     req.PromoterUID,
		Notes:           req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ListMyOrders 我的订单
func (h *Handler) ListMyOrders(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	orders, total, err := h.OrderService.ListMyOrders(principal, c.Query("status"), page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetMyOrder 订单详情（买家本人或管理员）
func (h *Handler) GetMyOrder(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.GetOrder(principal, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelMyOrder 买家取消订单，同步作废待结算佣金
func (h *Handler) CancelMyOrder(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	order, err := h.OrderService.CancelOrder(c.Request.Context(), principal, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

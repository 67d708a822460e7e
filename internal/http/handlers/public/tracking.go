package public

import (
	"strconv"
	"strings"

	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// TrackViewRequest 视频曝光上报
type TrackViewRequest struct {
	ReelID         string   `json:"reel_id" binding:"required"`
	PromoterUID    string   `json:"promoter_uid" binding:"required"`
	ProductID      string   `json:"product_id"`
	SessionID      string   `json:"session_id"`
	WatchDuration  *int     `json:"watch_duration"`
	CompletionRate *float64 `json:"completion_rate"`
}

// TrackClickRequest 推广商品点击上报
type TrackClickRequest struct {
	ReelID      string                 `json:"reel_id" binding:"required"`
	ProductID   string                 `json:"product_id" binding:"required"`
	PromoterUID string                 `json:"promoter_uid" binding:"required"`
	SessionID   string                 `json:"session_id"`
	DeviceInfo  map[string]interface{} `json:"device_info"`
}

// TrackConversionRequest 订单转化上报
type TrackConversionRequest struct {
	OrderID        uint   `json:"order_id" binding:"required"`
	ClickSessionID string `json:"click_session_id" binding:"required"`
}

func viewerUID(c *gin.Context) string {
	if principal := optionalPrincipal(c); principal != nil {
		return principal.UID
	}
	return ""
}

// TrackView 记录曝光，同一观看者同一会话只记一次
func (h *Handler) TrackView(c *gin.Context) {
	var req TrackViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.TrackingService.TrackView(c.Request.Context(), service.TrackViewInput{
		ReelID:         req.ReelID,
		PromoterUID:    req.PromoterUID,
		ProductID:      req.ProductID,
		ViewerUID:      viewerUID(c),
		SessionID:      req.SessionID,
		WatchDuration:  req.WatchDuration,
		CompletionRate: req.CompletionRate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// TrackClick 记录推广商品点击
func (h *Handler) TrackClick(c *gin.Context) {
	var req TrackClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	device := req.DeviceInfo
	if device == nil {
		device = map[string]interface{}{}
	}
	if _, ok := device["user_agent"]; !ok {
		device["user_agent"] = c.Request.UserAgent()
	}
	result, err := h.TrackingService.TrackClick(c.Request.Context(), service.TrackClickInput{
		ReelID:      req.ReelID,
		ProductID:   req.ProductID,
		PromoterUID: req.PromoterUID,
		ViewerUID:   viewerUID(c),
		SessionID:   req.SessionID,
		DeviceInfo:  device,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// TrackConversion 订单与点击会话关联，必要时补计佣金
func (h *Handler) TrackConversion(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req TrackConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.TrackingService.TrackConversion(c.Request.Context(), principal, req.OrderID, req.ClickSessionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// GetPromoterAnalytics 推广数据概览，只能查看自己（管理员除外）
func (h *Handler) GetPromoterAnalytics(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	days := 0
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", err)
			return
		}
		days = parsed
	}
	analytics, err := h.TrackingService.PromoterAnalytics(principal, c.Param("uid"), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, analytics)
}

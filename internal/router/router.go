package router

import (
	"sort"
	"strings"

	"github.com/buyv-ledger/internal/authz"
	"github.com/buyv-ledger/internal/cache"
	"github.com/buyv-ledger/internal/config"
	adminhandlers "github.com/buyv-ledger/internal/http/handlers/admin"
	publichandlers "github.com/buyv-ledger/internal/http/handlers/public"
	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisClient := cache.Client()
	withdrawRule := NewRateLimitRule(cfg.Redis.Prefix, "withdraw", cfg.Security.WithdrawRateLimit, false)
	trackingRule := NewRateLimitRule(cfg.Redis.Prefix, "tracking", cfg.Security.TrackingRateLimit, true)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	if cfg.Tracing.Enabled {
		r.Use(TracingMiddleware())
	}
	if cfg.Metrics.Enabled {
		r.Use(MetricsMiddleware())
	}
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 匿名追踪接口，带 Token 时记录观看者
		tracking := apiV1.Group("/tracking")
		tracking.Use(OptionalPrincipalMiddleware(c.AuthService))
		{
			tracking.POST("/view", RateLimitMiddleware(redisClient, trackingRule, KeyBySession("session_id")), publicHandler.TrackView)
			tracking.POST("/click", RateLimitMiddleware(redisClient, trackingRule, KeyBySession("session_id")), publicHandler.TrackClick)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("")
		user.Use(PrincipalAuthMiddleware(c.AuthService))
		{
			user.POST("/orders", publicHandler.CreateOrder)
			user.GET("/orders", publicHandler.ListMyOrders)
			user.GET("/orders/:id", publicHandler.GetMyOrder)
			user.POST("/orders/:id/cancel", publicHandler.CancelMyOrder)

			user.GET("/commissions", publicHandler.ListMyCommissions)

			user.GET("/wallet", publicHandler.GetMyWallet)
			user.PUT("/wallet/bank", publicHandler.UpdateMyBankDetails)
			user.GET("/wallet/transactions", publicHandler.ListMyWalletTransactions)

			user.POST("/withdrawals", RateLimitMiddleware(redisClient, withdrawRule, KeyByPrincipal), publicHandler.CreateWithdrawal)
			user.GET("/withdrawals", publicHandler.ListMyWithdrawals)
			user.GET("/withdrawals/stats", publicHandler.GetMyWithdrawalStats)

			user.POST("/tracking/conversion", publicHandler.TrackConversion)
			user.GET("/analytics/promoter/:uid", publicHandler.GetPromoterAnalytics)
		}

		// 管理接口：JWT + 角色 RBAC
		admin := apiV1.Group("/admin")
		admin.Use(PrincipalAuthMiddleware(c.AuthService), AdminRBACMiddleware(c.AuthzService))
		{
			admin.GET("/orders", adminHandler.AdminListOrders)
			admin.PATCH("/orders/:id/status", adminHandler.AdminUpdateOrderStatus)
			admin.PATCH("/orders/:id/tracking", adminHandler.AdminUpdateOrderTracking)

			admin.GET("/commissions", adminHandler.AdminListCommissions)
			admin.PATCH("/commissions/:id/status", adminHandler.AdminSetCommissionStatus)

			admin.GET("/withdrawals", adminHandler.AdminListWithdrawals)
			admin.POST("/withdrawals/:id/approve", adminHandler.AdminApproveWithdrawal)
			admin.POST("/withdrawals/:id/reject", adminHandler.AdminRejectWithdrawal)
			admin.POST("/withdrawals/:id/complete", adminHandler.AdminCompleteWithdrawal)

			admin.GET("/wallets/:uid", adminHandler.GetAdminWallet)
			admin.GET("/wallets/:uid/reconcile", adminHandler.ReconcileAdminWallet)

			admin.GET("/products", adminHandler.AdminListProducts)
			admin.PUT("/products/:id", adminHandler.AdminUpsertProduct)

			admin.GET("/authz/me", adminHandler.GetAuthzMe)
			admin.GET("/authz/roles", adminHandler.ListAuthzRoles)
			admin.POST("/authz/roles/:role/policies", adminHandler.GrantRolePolicy)
			admin.DELETE("/authz/roles/:role/policies", adminHandler.RevokeRolePolicy)
			admin.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminPermissionCatalog(r))
			})
		}
	}

	if cfg.Metrics.Enabled {
		metricsPath := strings.TrimSpace(cfg.Metrics.Path)
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		r.GET(metricsPath, gin.WrapH(promhttp.Handler()))
	}

	// 健康检查
	r.GET(healthPath, func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	return segments[1]
}

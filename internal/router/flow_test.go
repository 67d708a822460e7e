package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type flowClient struct {
	t      *testing.T
	engine *gin.Engine
}

func (f flowClient) do(method, path, token string, body interface{}) envelope {
	f.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	require.Equal(f.t, http.StatusOK, w.Code)
	return decodeEnvelope(f.t, w)
}

func dataMap(t *testing.T, resp envelope) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	return data
}

func setupFlowRouter(t *testing.T) (flowClient, map[string]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:router_flow_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.LedgerModels()...))
	models.DB = db

	users := []models.User{
		{ID: 1, UID: "admin-uid", Email: "admin@example.com", Role: constants.RoleAdmin, Status: constants.UserStatusActive},
		{ID: 2, UID: "promoter-uid", Email: "promoter@example.com", Role: constants.RolePromoter, Status: constants.UserStatusActive},
		{ID: 3, UID: "buyer-uid", Email: "buyer@example.com", Role: constants.RoleUser, Status: constants.UserStatusActive},
		{ID: 4, UID: "support-uid", Email: "support@example.com", Role: constants.RoleSupport, Status: constants.UserStatusActive},
	}
	require.NoError(t, db.Create(&users).Error)

	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{SecretKey: "router-flow-secret", ExpireHours: 1}
	container := provider.NewContainer(cfg)
	t.Cleanup(container.Close)

	tokens := make(map[string]string, len(users))
	for i := range users {
		token, _, err := container.AuthService.IssueToken(&users[i])
		require.NoError(t, err)
		tokens[users[i].Role] = token
	}
	return flowClient{t: t, engine: SetupRouter(cfg, container)}, tokens
}

func TestLedgerFlowOverHTTP(t *testing.T) {
	client, tokens := setupFlowRouter(t)
	admin, promoter, buyer := tokens[constants.RoleAdmin], tokens[constants.RolePromoter], tokens[constants.RoleUser]

	resp := client.do(http.MethodPut, "/api/v1/admin/products/prod-1", admin, map[string]string{
		"name":                    "Hoodie",
		"price":                   "1000",
		"commission_rate_percent": "10",
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	// 普通用户不能访问管理接口
	resp = client.do(http.MethodPut, "/api/v1/admin/products/prod-2", buyer, map[string]string{
		"name":                    "Cap",
		"price":                   "10",
		"commission_rate_percent": "5",
	})
	require.Equal(t, 403, resp.StatusCode)

	resp = client.do(http.MethodPost, "/api/v1/orders", buyer, map[string]interface{}{
		"payment_method": "card",
		"items": []map[string]interface{}{{
			"product_id":          "prod-1",
			"product_name":        "Hoodie",
			"price":               "1000",
			"quantity":            1,
			"is_promoted_product": true,
			"promoter_uid":        "promoter-uid",
		}},
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	order := dataMap(t, resp)
	orderID := uint(order["id"].(float64))
	require.Equal(t, constants.OrderStatusPending, order["status"])

	resp = client.do(http.MethodGet, "/api/v1/wallet", promoter, nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	wallet := dataMap(t, resp)
	require.Equal(t, "100.00", wallet["pending_commission_amount"])
	require.Equal(t, "0.00", wallet["available_amount"])

	resp = client.do(http.MethodPatch, fmt.Sprintf("/api/v1/admin/orders/%d/status", orderID), admin, map[string]string{
		"status": constants.OrderStatusDelivered,
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	wallet = dataMap(t, client.do(http.MethodGet, "/api/v1/wallet", promoter, nil))
	require.Equal(t, "0.00", wallet["pending_commission_amount"])
	require.Equal(t, "100.00", wallet["available_amount"])

	// 超出可提现余额
	resp = client.do(http.MethodPost, "/api/v1/withdrawals", promoter, map[string]interface{}{
		"amount":          "150",
		"payment_method":  constants.WithdrawalMethodPaypal,
		"payment_details": map[string]string{"email": "promoter@example.com"},
	})
	require.Equal(t, 400, resp.StatusCode)

	resp = client.do(http.MethodPost, "/api/v1/withdrawals", promoter, map[string]interface{}{
		"amount":          "60",
		"payment_method":  constants.WithdrawalMethodPaypal,
		"payment_details": map[string]string{"email": "promoter@example.com"},
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	withdrawalID := uint(dataMap(t, resp)["id"].(float64))

	resp = client.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/withdrawals/%d/complete", withdrawalID), admin, map[string]string{
		"transaction_id": "PAYPAL-00001",
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	// 已完成的提现不能再驳回
	resp = client.do(http.MethodPost, fmt.Sprintf("/api/v1/admin/withdrawals/%d/reject", withdrawalID), admin, map[string]string{
		"reason": "account could not be verified",
	})
	require.Equal(t, 409, resp.StatusCode)

	wallet = dataMap(t, client.do(http.MethodGet, "/api/v1/wallet", promoter, nil))
	require.Equal(t, "40.00", wallet["available_amount"])
	require.Equal(t, "60.00", wallet["withdrawn_amount"])

	resp = client.do(http.MethodGet, "/api/v1/commissions", promoter, nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var commissions []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &commissions))
	require.Len(t, commissions, 1)
	require.Equal(t, constants.CommissionStatusPaid, commissions[0]["status"])

	resp = client.do(http.MethodGet, "/api/v1/orders/424242", buyer, nil)
	require.Equal(t, 404, resp.StatusCode)

	resp = client.do(http.MethodGet, "/api/v1/wallet", "", nil)
	require.Equal(t, 401, resp.StatusCode)
}

func TestAuthzRolePolicyOverHTTP(t *testing.T) {
	client, tokens := setupFlowRouter(t)
	admin, support := tokens[constants.RoleAdmin], tokens[constants.RoleSupport]
	product := map[string]string{
		"name":                    "Cap",
		"price":                   "20",
		"commission_rate_percent": "5",
	}
	grant := map[string]string{"object": "/admin/products/:id", "action": http.MethodPut}

	resp := client.do(http.MethodPut, "/api/v1/admin/products/prod-cap", support, product)
	require.Equal(t, 403, resp.StatusCode)

	resp = client.do(http.MethodPost, "/api/v1/admin/authz/roles/support/policies", support, grant)
	require.Equal(t, 403, resp.StatusCode, "support cannot manage policies")

	resp = client.do(http.MethodPost, "/api/v1/admin/authz/roles/support/policies", admin, grant)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	require.Contains(t, string(resp.Data), "/admin/products/:id")

	resp = client.do(http.MethodPut, "/api/v1/admin/products/prod-cap", support, product)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	resp = client.do(http.MethodDelete, "/api/v1/admin/authz/roles/support/policies", admin, grant)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	resp = client.do(http.MethodPut, "/api/v1/admin/products/prod-cap", support, product)
	require.Equal(t, 403, resp.StatusCode)

	resp = client.do(http.MethodDelete, "/api/v1/admin/authz/roles/admin/policies", admin, map[string]string{
		"object": "/admin/*",
		"action": "*",
	})
	require.Equal(t, 403, resp.StatusCode)

	resp = client.do(http.MethodPost, "/api/v1/admin/authz/roles/support/policies", admin, map[string]string{
		"object": "/wallet",
		"action": http.MethodGet,
	})
	require.Equal(t, 400, resp.StatusCode)
}

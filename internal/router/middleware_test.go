package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/buyv-ledger/internal/config"
	handlershared "github.com/buyv-ledger/internal/http/handlers/shared"
	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestResolveAllowedOrigin(t *testing.T) {
	cases := []struct {
		name        string
		origin      string
		allowed     []string
		credentials bool
		want        string
	}{
		{"wildcard", "https://shop.example.com", []string{"*"}, false, "*"},
		{"wildcard with credentials echoes", "https://shop.example.com", []string{"*"}, true, "https://shop.example.com"},
		{"allow list match", "https://admin.example.com", []string{"https://shop.example.com", "https://ADMIN.example.com"}, false, "https://admin.example.com"},
		{"allow list miss", "https://evil.example.com", []string{"https://shop.example.com"}, false, ""},
		{"no origin", "", []string{"https://shop.example.com"}, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, resolveAllowedOrigin(tc.origin, tc.allowed, tc.credentials))
		})
	}
}

func TestCORSPreflightAllowsAdminPatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware(config.CORSConfig{
		AllowedOrigins:   []string{"https://admin.example.com"},
		AllowCredentials: true,
		MaxAge:           600,
	}))
	r.PATCH("/api/v1/admin/commissions/:id/status", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/admin/commissions/1/status", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	require.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	require.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), requestIDHeader)
	require.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
}

func TestRequestIDFlowsIntoErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/api/v1/withdrawals/:id", func(c *gin.Context) {
		handlershared.RespondServiceError(c, service.ErrWithdrawalNotFound)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/withdrawals/9", nil)
	req.Header.Set(requestIDHeader, "req-123")
	r.ServeHTTP(w, req)

	require.Equal(t, "req-123", w.Header().Get(requestIDHeader))
	var body struct {
		StatusCode int                `json:"status_code"`
		Data       response.ErrorData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, response.CodeNotFound, body.StatusCode)
	require.Equal(t, "req-123", body.Data.RequestID)
	require.Equal(t, "error.withdrawal_not_found", body.Data.ErrorKey)

	// 未携带时自动生成
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/withdrawals/9", nil))
	require.NotEmpty(t, w.Header().Get(requestIDHeader))
}

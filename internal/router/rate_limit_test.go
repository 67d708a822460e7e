package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/buyv-ledger/internal/config"
	handlershared "github.com/buyv-ledger/internal/http/handlers/shared"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func serveRateLimited(client *redis.Client, rule RateLimitRule) *httptest.ResponseRecorder {
	r := gin.New()
	r.Use(RateLimitMiddleware(client, rule, KeyByIP))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping?lang=en-US", nil))
	return w
}

func TestNewRateLimitRule(t *testing.T) {
	rule := NewRateLimitRule("", "withdraw", config.RateLimitConfig{WindowSeconds: 60, MaxRequests: 5}, false)
	require.Equal(t, "ledger:rate:withdraw", rule.Prefix)
	require.True(t, rule.enabled())

	disabled := NewRateLimitRule("shop", "tracking", config.RateLimitConfig{}, true)
	require.Equal(t, "shop:rate:tracking", disabled.Prefix)
	require.False(t, disabled.enabled())
}

func TestRateLimitMiddlewarePassThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := serveRateLimited(nil, RateLimitRule{Name: "tracking", WindowSeconds: 60, MaxRequests: 1})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"ok":true`)

	// 规则未配置时不访问 Redis
	w = serveRateLimited(unreachableRedis(t), RateLimitRule{Name: "tracking"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddlewareRedisFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client := unreachableRedis(t)

	w := serveRateLimited(client, RateLimitRule{Name: "tracking", WindowSeconds: 60, MaxRequests: 1, FailOpen: true})
	require.Equal(t, http.StatusOK, w.Code)

	w = serveRateLimited(client, RateLimitRule{Name: "withdraw", WindowSeconds: 60, MaxRequests: 1})
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "Internal server error")
}

func TestKeyBySession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/tracking/view", strings.NewReader(`{"session_id":" Sess-ABC ","reel_id":"r-1"}`))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.RemoteAddr = "1.2.3.4:5678"

	require.Equal(t, "sess-abc|1.2.3.4", KeyBySession("session_id")(c))

	body, err := io.ReadAll(c.Request.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "Sess-ABC", "request body should be restored after peeking")

	c.Request = httptest.NewRequest(http.MethodPost, "/tracking/view", strings.NewReader(`{"session_id":42}`))
	c.Request.RemoteAddr = "1.2.3.4:5678"
	require.Equal(t, "1.2.3.4", KeyBySession("session_id")(c))
}

func TestKeyByPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/withdrawals", nil)
	c.Request.RemoteAddr = "5.6.7.8:1234"

	require.Equal(t, "5.6.7.8", KeyByPrincipal(c))
	handlershared.SetPrincipal(c, &service.Principal{ID: 1, UID: "promoter-1", Role: "promoter"})
	require.Equal(t, "uid:promoter-1", KeyByPrincipal(c))
}

func TestRetryAfterSeconds(t *testing.T) {
	require.Equal(t, 12, retryAfterSeconds(12, 60))
	require.Equal(t, 60, retryAfterSeconds(-1, 60))
	require.Equal(t, 1, retryAfterSeconds(-2, 0))
}

package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/buyv-ledger/internal/config"
	handlershared "github.com/buyv-ledger/internal/http/handlers/shared"
	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/i18n"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/metrics"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitLimitHeader     = "X-RateLimit-Limit"
	rateLimitRemainingHeader = "X-RateLimit-Remaining"
	retryAfterHeader         = "Retry-After"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
// FailOpen 为 true 时 Redis 异常放行请求，否则返回 500
type RateLimitRule struct {
	Name          string
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	FailOpen      bool
}

// NewRateLimitRule 由配置生成规则，key 形如 <redisPrefix>:rate:<name>:<subject>
func NewRateLimitRule(redisPrefix, name string, cfg config.RateLimitConfig, failOpen bool) RateLimitRule {
	redisPrefix = strings.TrimSpace(redisPrefix)
	if redisPrefix == "" {
		redisPrefix = "ledger"
	}
	return RateLimitRule{
		Name:          name,
		Prefix:        fmt.Sprintf("%s:rate:%s", redisPrefix, name),
		WindowSeconds: cfg.WindowSeconds,
		MaxRequests:   cfg.MaxRequests,
		FailOpen:      failOpen,
	}
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

// 返回窗口内计数与剩余秒数
var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware Redis 频率限制中间件，未配置 Redis 或规则时直接放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}

		subject := ""
		if keyFunc != nil {
			subject = strings.TrimSpace(keyFunc(c))
		}
		if subject == "" {
			subject = c.ClientIP()
		}
		key := subject
		if rule.Prefix != "" {
			key = rule.Prefix + ":" + subject
		}

		counts, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, rule.WindowSeconds).Int64Slice()
		if err == nil && len(counts) < 2 {
			err = fmt.Errorf("unexpected rate limit reply: %v", counts)
		}
		if err != nil {
			logger.Warnw("rate_limit_script_failed", "rule", rule.Name, "fail_open", rule.FailOpen, "error", err)
			if rule.FailOpen {
				metrics.RateLimitedTotal.WithLabelValues(rule.Name, "fail_open").Inc()
				c.Next()
				return
			}
			response.Error(c, response.CodeInternal, i18n.T(i18n.ResolveLocale(c), "error.internal"))
			c.Abort()
			return
		}

		count, ttl := counts[0], counts[1]
		remaining := int64(rule.MaxRequests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header(rateLimitLimitHeader, strconv.Itoa(rule.MaxRequests))
		c.Header(rateLimitRemainingHeader, strconv.FormatInt(remaining, 10))
		if count <= int64(rule.MaxRequests) {
			c.Next()
			return
		}

		wait := retryAfterSeconds(ttl, rule.WindowSeconds)
		c.Header(retryAfterHeader, strconv.Itoa(wait))
		metrics.RateLimitedTotal.WithLabelValues(rule.Name, "rejected").Inc()
		logger.Infow("rate_limited", "rule", rule.Name, "subject", subject, "count", count)
		msg := i18n.Sprintf(i18n.ResolveLocale(c), "error.too_many_requests", wait)
		response.ErrorWithKey(c, response.CodeTooManyRequests, "error.too_many_requests", msg)
		c.Abort()
	}
}

// retryAfterSeconds TTL 缺失（-1/-2）时按整个窗口计
func retryAfterSeconds(ttl int64, window int) int {
	if ttl > 0 {
		return int(ttl)
	}
	if window > 0 {
		return window
	}
	return 1
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByPrincipal 按登录用户 UID 限流，未登录回退到 IP
func KeyByPrincipal(c *gin.Context) string {
	if principal, ok := c.Get(handlershared.PrincipalContextKey); ok {
		if p, ok := principal.(*service.Principal); ok && p != nil && p.UID != "" {
			return "uid:" + p.UID
		}
	}
	return c.ClientIP()
}

// KeyBySession 按请求体里的会话字段 + IP 限流，缺失时回退到 IP
func KeyBySession(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		session := strings.ToLower(peekJSONString(c, field))
		if session == "" {
			return c.ClientIP()
		}
		return session + "|" + c.ClientIP()
	}
}

// peekJSONString 读取 JSON 请求体中的字符串字段，读取后还原请求体供后续绑定
func peekJSONString(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	var value string
	if raw, ok := payload[field]; !ok || json.Unmarshal(raw, &value) != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

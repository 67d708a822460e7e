package shared

import (
	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// PrincipalContextKey 认证中间件写入调用方的上下文键
const PrincipalContextKey = "principal"

// SetPrincipal 写入当前调用方
func SetPrincipal(c *gin.Context, principal *service.Principal) {
	c.Set(PrincipalContextKey, principal)
	c.Set("user_id", principal.ID)
	c.Set("user_uid", principal.UID)
	c.Set("role", principal.Role)
}

// GetPrincipal 读取当前调用方，缺失时直接返回 401。
func GetPrincipal(c *gin.Context) (*service.Principal, bool) {
	value, exists := c.Get(PrincipalContextKey)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return nil, false
	}
	principal, ok := value.(*service.Principal)
	if !ok || principal == nil {
		RespondError(c, response.CodeInternal, "error.internal", nil)
		return nil, false
	}
	return principal, true
}

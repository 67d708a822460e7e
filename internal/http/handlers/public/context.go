package public

import (
	handlershared "github.com/buyv-ledger/internal/http/handlers/shared"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

func getPrincipal(c *gin.Context) (*service.Principal, bool) {
	return handlershared.GetPrincipal(c)
}

// optionalPrincipal 公开接口上可选的登录态
func optionalPrincipal(c *gin.Context) *service.Principal {
	value, exists := c.Get(handlershared.PrincipalContextKey)
	if !exists {
		return nil
	}
	principal, _ := value.(*service.Principal)
	return principal
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondServiceError(c *gin.Context, err error) {
	handlershared.RespondServiceError(c, err)
}

func parsePagination(c *gin.Context) (int, int) {
	return handlershared.ParsePagination(c)
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	return handlershared.ParseUintParam(c, name)
}

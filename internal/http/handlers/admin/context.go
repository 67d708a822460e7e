package admin

import (
	"strings"
	"time"

	handlershared "github.com/buyv-ledger/internal/http/handlers/shared"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

func getPrincipal(c *gin.Context) (*service.Principal, bool) {
	return handlershared.GetPrincipal(c)
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

func parsePathUint(c *gin.Context, key string) (uint, bool) {
	return handlershared.ParseUintParam(c, key)
}

func parseTimeNullable(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

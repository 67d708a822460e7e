package shared

import (
	"github.com/buyv-ledger/internal/http/response"
	"github.com/buyv-ledger/internal/i18n"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	appErr := response.WrapError(code, key, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"key", appErr.Key,
			"error", appErr,
		)
	}
	response.ErrorWithKey(c, appErr.Code, appErr.Key, appErr.Message)
}

// StatusForKind 业务错误分类到响应码
func StatusForKind(kind service.ErrorKind) int {
	switch kind {
	case service.KindNotFound:
		return response.CodeNotFound
	case service.KindInvalidStateTransition:
		return response.CodeConflict
	case service.KindInsufficientBalance, service.KindValidation:
		return response.CodeBadRequest
	case service.KindForbidden:
		return response.CodeForbidden
	default:
		return response.CodeInternal
	}
}

// RespondServiceError 按业务错误分类返回响应，非业务错误记录日志并返回 500。
func RespondServiceError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	if kind == "" || kind == service.KindConfig {
		RespondError(c, response.CodeInternal, service.KeyOf(err), err)
		return
	}
	RespondError(c, StatusForKind(kind), service.KeyOf(err), nil)
}

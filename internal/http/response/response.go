package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	StatusCode int         `json:"status_code"` // 业务状态码
	Msg        string      `json:"msg"`         // 提示消息
	Data       interface{} `json:"data"`        // 数据内容
}

// PageResponse 分页响应结构
type PageResponse struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
	HasMore   bool  `json:"has_more"`
}

// ErrorData 错误响应附带的数据，error_key 不随语言变化
type ErrorData struct {
	RequestID string `json:"request_id,omitempty"`
	ErrorKey  string `json:"error_key,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	write(c, Response{StatusCode: CodeOK, Msg: "success", Data: data})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	write(c, PageResponse{StatusCode: CodeOK, Msg: "success", Data: data, Pagination: pagination})
}

// Error 错误响应
func Error(c *gin.Context, statusCode int, msg string) {
	ErrorWithKey(c, statusCode, "", msg)
}

// ErrorWithKey 错误响应，data 中附带文案键与请求ID
func ErrorWithKey(c *gin.Context, statusCode int, key, msg string) {
	write(c, Response{StatusCode: statusCode, Msg: msg, Data: errorData(c, key)})
}

// write HTTP 状态恒为 200，业务结果以 status_code 区分
func write(c *gin.Context, body interface{}) {
	c.JSON(http.StatusOK, body)
}

// Unauthorized 401响应
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}

func errorData(c *gin.Context, key string) interface{} {
	data := ErrorData{ErrorKey: key}
	if c != nil {
		if value, ok := c.Get("request_id"); ok {
			if id, ok := value.(string); ok {
				data.RequestID = id
			}
		}
	}
	if data.RequestID == "" && data.ErrorKey == "" {
		return nil
	}
	return data
}

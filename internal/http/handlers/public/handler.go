package public

import "github.com/buyv-ledger/internal/provider"

// Handler 前台接口处理器入口
// 说明：该处理器用于匿名追踪与登录用户（买家/推广者）侧 API。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

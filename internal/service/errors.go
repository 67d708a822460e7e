package service

import "errors"

// ErrorKind 账本错误分类
type ErrorKind string

const (
	KindNotFound               ErrorKind = "not_found"
	KindInvalidStateTransition ErrorKind = "invalid_state_transition"
	KindInsufficientBalance    ErrorKind = "insufficient_balance"
	KindValidation             ErrorKind = "validation"
	KindForbidden              ErrorKind = "forbidden"
	KindConfig                 ErrorKind = "config"
)

// LedgerError 带分类的业务错误，Key 同时作为多语言文案键
type LedgerError struct {
	Kind    ErrorKind
	Key     string
	Message string
}

func (e *LedgerError) Error() string {
	return e.Message
}

// Is 具体错误可以匹配到同分类的分类哨兵
func (e *LedgerError) Is(target error) bool {
	var t *LedgerError
	if !errors.As(target, &t) {
		return false
	}
	if t.Key == "" {
		return t.Kind == e.Kind
	}
	return t == e
}

func newKind(kind ErrorKind, message string) *LedgerError {
	return &LedgerError{Kind: kind, Message: message}
}

func newLedgerError(kind ErrorKind, key, message string) *LedgerError {
	return &LedgerError{Kind: kind, Key: key, Message: message}
}

// KindOf 返回错误分类，非业务错误返回空
func KindOf(err error) ErrorKind {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

// KeyOf 返回错误文案键
func KeyOf(err error) string {
	var le *LedgerError
	if errors.As(err, &le) {
		if le.Key != "" {
			return "error." + le.Key
		}
		return "error." + string(le.Kind)
	}
	return "error.internal"
}

// 分类哨兵
var (
	ErrNotFound               = newKind(KindNotFound, "资源不存在")
	ErrInvalidStateTransition = newKind(KindInvalidStateTransition, "状态流转不合法")
	ErrValidation             = newKind(KindValidation, "参数校验失败")
	ErrForbidden              = newKind(KindForbidden, "无权操作")
	ErrConfig                 = newKind(KindConfig, "配置错误")
)

// 资源不存在
var (
	ErrOrderNotFound      = newLedgerError(KindNotFound, "order_not_found", "订单不存在")
	ErrCommissionNotFound = newLedgerError(KindNotFound, "commission_not_found", "佣金记录不存在")
	ErrWithdrawalNotFound = newLedgerError(KindNotFound, "withdrawal_not_found", "提现申请不存在")
	ErrWalletNotFound     = newLedgerError(KindNotFound, "wallet_not_found", "钱包不存在")
	ErrProductNotFound    = newLedgerError(KindNotFound, "product_not_found", "商品不存在")
	ErrUserNotFound       = newLedgerError(KindNotFound, "user_not_found", "用户不存在")
)

// 状态流转
var (
	ErrOrderStatusInvalid      = newLedgerError(KindInvalidStateTransition, "order_status_invalid", "订单当前状态不允许该操作")
	ErrCommissionStatusInvalid = newLedgerError(KindInvalidStateTransition, "commission_status_invalid", "佣金状态不合法")
	ErrWithdrawalStatusInvalid = newLedgerError(KindInvalidStateTransition, "withdrawal_status_invalid", "提现申请当前状态不允许该操作")
)

// 余额不足
var ErrInsufficientBalance = newLedgerError(KindInsufficientBalance, "insufficient_balance", "可提现余额不足")

// 参数校验
var (
	ErrOrderItemsEmpty         = newLedgerError(KindValidation, "order_items_empty", "订单至少包含一个商品")
	ErrOrderItemInvalid        = newLedgerError(KindValidation, "order_item_invalid", "订单商品价格或数量不合法")
	ErrPromoterRequired        = newLedgerError(KindValidation, "promoter_required", "推广商品缺少推广者")
	ErrWithdrawAmountInvalid   = newLedgerError(KindValidation, "withdraw_amount_invalid", "提现金额超出允许范围")
	ErrWithdrawMethodInvalid   = newLedgerError(KindValidation, "withdraw_method_invalid", "不支持的提现方式")
	ErrWithdrawDetailsInvalid  = newLedgerError(KindValidation, "withdraw_details_invalid", "收款信息不完整")
	ErrWithdrawalPendingExists = newLedgerError(KindValidation, "withdrawal_pending_exists", "已有待处理的提现申请")
	ErrRejectReasonInvalid     = newLedgerError(KindValidation, "reject_reason_invalid", "驳回原因至少 10 个字符")
	ErrTransactionIDInvalid    = newLedgerError(KindValidation, "transaction_id_invalid", "打款流水号至少 5 个字符")
	ErrCommissionRateInvalid   = newLedgerError(KindValidation, "commission_rate_invalid", "佣金比例需在 0 到 100 之间")
	ErrTrackingInputInvalid    = newLedgerError(KindValidation, "tracking_input_invalid", "追踪参数不完整")
	ErrAnalyticsDaysInvalid    = newLedgerError(KindValidation, "analytics_days_invalid", "统计天数不合法")
	ErrProductInvalid          = newLedgerError(KindValidation, "product_invalid", "商品信息不完整")
	ErrInvalidToken            = newLedgerError(KindValidation, "invalid_token", "无效的 token")
	ErrOrderStatusUnknown      = newLedgerError(KindValidation, "order_status_unknown", "未知的订单状态")
	ErrCommissionStatusUnknown = newLedgerError(KindValidation, "commission_status_unknown", "未知的佣金状态")
)

// 权限
var (
	ErrPrincipalRequired = newLedgerError(KindForbidden, "principal_required", "需要登录")
	ErrAdminRequired     = newLedgerError(KindForbidden, "admin_required", "需要管理员权限")
	ErrAnalyticsDenied   = newLedgerError(KindForbidden, "analytics_denied", "只能查看自己的推广数据")
)

// 配置
var ErrCommissionRateUnavailable = newLedgerError(KindConfig, "commission_rate_unavailable", "商品佣金比例未配置")

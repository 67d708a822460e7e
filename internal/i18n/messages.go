package i18n

var messages = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":                 "请求参数错误",
		"error.unauthorized":                "未登录或登录已失效",
		"error.forbidden":                   "无权访问",
		"error.internal":                    "服务器内部错误",
		"error.too_many_requests":           "操作过于频繁，请 %d 秒后再试",
		"error.auth_header_missing":         "缺少 Authorization 请求头",
		"error.auth_header_invalid":         "Authorization 格式错误",
		"error.token_invalid":               "无效的 token",
		"error.jwt_secret_missing":          "服务未配置 JWT 密钥",
		"error.not_found":                   "资源不存在",
		"error.invalid_state_transition":    "状态流转不合法",
		"error.validation":                  "参数校验失败",
		"error.config":                      "服务配置错误",
		"error.order_not_found":             "订单不存在",
		"error.commission_not_found":        "佣金记录不存在",
		"error.withdrawal_not_found":        "提现申请不存在",
		"error.wallet_not_found":            "钱包不存在",
		"error.product_not_found":           "商品不存在",
		"error.user_not_found":              "用户不存在",
		"error.order_status_invalid":        "订单当前状态不允许该操作",
		"error.commission_status_invalid":   "佣金状态不合法",
		"error.withdrawal_status_invalid":   "提现申请当前状态不允许该操作",
		"error.insufficient_balance":        "可提现余额不足",
		"error.order_items_empty":           "订单至少包含一个商品",
		"error.order_item_invalid":          "订单商品价格或数量不合法",
		"error.promoter_required":           "推广商品缺少推广者",
		"error.withdraw_amount_invalid":     "提现金额超出允许范围",
		"error.withdraw_method_invalid":     "不支持的提现方式",
		"error.withdraw_details_invalid":    "收款信息不完整",
		"error.withdrawal_pending_exists":   "已有待处理的提现申请",
		"error.reject_reason_invalid":       "驳回原因至少 10 个字符",
		"error.transaction_id_invalid":      "打款流水号至少 5 个字符",
		"error.commission_rate_invalid":     "佣金比例需在 0 到 100 之间",
		"error.tracking_input_invalid":      "追踪参数不完整",
		"error.analytics_days_invalid":      "统计天数不合法",
		"error.product_invalid":             "商品信息不完整",
		"error.invalid_token":               "无效的 token",
		"error.order_status_unknown":        "未知的订单状态",
		"error.commission_status_unknown":   "未知的佣金状态",
		"error.principal_required":          "需要登录",
		"error.admin_required":              "需要管理员权限",
		"error.analytics_denied":            "只能查看自己的推广数据",
		"error.commission_rate_unavailable": "商品佣金比例未配置",
	},
	LocaleTW: {
		"error.bad_request":                 "請求參數錯誤",
		"error.unauthorized":                "未登入或登入已失效",
		"error.forbidden":                   "無權存取",
		"error.internal":                    "伺服器內部錯誤",
		"error.too_many_requests":           "操作過於頻繁，請 %d 秒後再試",
		"error.auth_header_missing":         "缺少 Authorization 請求標頭",
		"error.auth_header_invalid":         "Authorization 格式錯誤",
		"error.token_invalid":               "無效的 token",
		"error.jwt_secret_missing":          "服務未設定 JWT 金鑰",
		"error.not_found":                   "資源不存在",
		"error.invalid_state_transition":    "狀態流轉不合法",
		"error.validation":                  "參數校驗失敗",
		"error.config":                      "服務設定錯誤",
		"error.order_not_found":             "訂單不存在",
		"error.commission_not_found":        "佣金紀錄不存在",
		"error.withdrawal_not_found":        "提領申請不存在",
		"error.wallet_not_found":            "錢包不存在",
		"error.product_not_found":           "商品不存在",
		"error.user_not_found":              "使用者不存在",
		"error.order_status_invalid":        "訂單目前狀態不允許此操作",
		"error.commission_status_invalid":   "佣金狀態不合法",
		"error.withdrawal_status_invalid":   "提領申請目前狀態不允許此操作",
		"error.insufficient_balance":        "可提領餘額不足",
		"error.order_items_empty":           "訂單至少包含一個商品",
		"error.order_item_invalid":          "訂單商品價格或數量不合法",
		"error.promoter_required":           "推廣商品缺少推廣者",
		"error.withdraw_amount_invalid":     "提領金額超出允許範圍",
		"error.withdraw_method_invalid":     "不支援的提領方式",
		"error.withdraw_details_invalid":    "收款資訊不完整",
		"error.withdrawal_pending_exists":   "已有待處理的提領申請",
		"error.reject_reason_invalid":       "駁回原因至少 10 個字元",
		"error.transaction_id_invalid":      "撥款流水號至少 5 個字元",
		"error.commission_rate_invalid":     "佣金比例需介於 0 到 100",
		"error.tracking_input_invalid":      "追蹤參數不完整",
		"error.analytics_days_invalid":      "統計天數不合法",
		"error.product_invalid":             "商品資訊不完整",
		"error.invalid_token":               "無效的 token",
		"error.order_status_unknown":        "未知的訂單狀態",
		"error.commission_status_unknown":   "未知的佣金狀態",
		"error.principal_required":          "需要登入",
		"error.admin_required":              "需要管理員權限",
		"error.analytics_denied":            "只能查看自己的推廣資料",
		"error.commission_rate_unavailable": "商品佣金比例未設定",
	},
	LocaleEN: {
		"error.bad_request":                 "Invalid request parameters",
		"error.unauthorized":                "Not signed in or session expired",
		"error.forbidden":                   "Access denied",
		"error.internal":                    "Internal server error",
		"error.too_many_requests":           "Too many requests, please retry in %d seconds",
		"error.auth_header_missing":         "Missing Authorization header",
		"error.auth_header_invalid":         "Malformed Authorization header",
		"error.token_invalid":               "Invalid token",
		"error.jwt_secret_missing":          "JWT secret is not configured",
		"error.not_found":                   "Resource not found",
		"error.invalid_state_transition":    "Invalid state transition",
		"error.validation":                  "Validation failed",
		"error.config":                      "Service misconfigured",
		"error.order_not_found":             "Order not found",
		"error.commission_not_found":        "Commission not found",
		"error.withdrawal_not_found":        "Withdrawal request not found",
		"error.wallet_not_found":            "Wallet not found",
		"error.product_not_found":           "Product not found",
		"error.user_not_found":              "User not found",
		"error.order_status_invalid":        "Order status does not allow this operation",
		"error.commission_status_invalid":   "Invalid commission status",
		"error.withdrawal_status_invalid":   "Withdrawal status does not allow this operation",
		"error.insufficient_balance":        "Insufficient available balance",
		"error.order_items_empty":           "Order must contain at least one item",
		"error.order_item_invalid":          "Invalid item price or quantity",
		"error.promoter_required":           "Promoted item has no promoter",
		"error.withdraw_amount_invalid":     "Withdrawal amount is out of range",
		"error.withdraw_method_invalid":     "Unsupported payment method",
		"error.withdraw_details_invalid":    "Incomplete payment details",
		"error.withdrawal_pending_exists":   "A pending withdrawal request already exists",
		"error.reject_reason_invalid":       "Rejection reason must be at least 10 characters",
		"error.transaction_id_invalid":      "Transaction ID must be at least 5 characters",
		"error.commission_rate_invalid":     "Commission rate must be between 0 and 100",
		"error.tracking_input_invalid":      "Missing tracking parameters",
		"error.analytics_days_invalid":      "Invalid analytics period",
		"error.product_invalid":             "Incomplete product data",
		"error.invalid_token":               "Invalid token",
		"error.order_status_unknown":        "Unknown order status",
		"error.commission_status_unknown":   "Unknown commission status",
		"error.principal_required":          "Sign-in required",
		"error.admin_required":              "Admin privileges required",
		"error.analytics_denied":            "You can only view your own analytics",
		"error.commission_rate_unavailable": "Commission rate is not configured for this product",
	},
}

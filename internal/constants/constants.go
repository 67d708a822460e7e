package constants

// 订单状态常量
const (
	OrderStatusPending        = "pending"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusProcessing     = "processing"
	OrderStatusShipped        = "shipped"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCanceled       = "canceled"
	OrderStatusReturned       = "returned"
	OrderStatusRefunded       = "refunded"
)

// 佣金状态常量
const (
	CommissionStatusPending  = "pending"
	CommissionStatusApproved = "approved"
	CommissionStatusPaid     = "paid"
	CommissionStatusCanceled = "canceled"
)

// 提现申请状态常量
const (
	WithdrawalStatusPending   = "pending"
	WithdrawalStatusApproved  = "approved"
	WithdrawalStatusRejected  = "rejected"
	WithdrawalStatusCompleted = "completed"
)

// 提现方式常量
const (
	WithdrawalMethodPaypal       = "paypal"
	WithdrawalMethodBankTransfer = "bank_transfer"
)

// 钱包流水类型常量
const (
	WalletTxnTypeCommissionPending  = "commission_pending"
	WalletTxnTypeCommissionSettle   = "commission_settle"
	WalletTxnTypeCommissionCancel   = "commission_cancel"
	WalletTxnTypeCommissionOverride = "commission_override"
	WalletTxnTypeWithdrawalHold     = "withdrawal_hold"
	WalletTxnTypeWithdrawalRelease  = "withdrawal_release"
	WalletTxnTypeWithdrawalComplete = "withdrawal_complete"
)

// 钱包流水方向常量
const (
	WalletTxnDirectionIn   = "in"
	WalletTxnDirectionOut  = "out"
	WalletTxnDirectionMove = "move"
)

// 用户角色常量
const (
	RoleUser     = "user"
	RolePromoter = "promoter"
	RoleAdmin    = "admin"
	RoleFinance  = "finance"
	RoleSupport  = "support"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 商品状态常量
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// 推广统计类型常量
const (
	TallyKindView       = "view"
	TallyKindClick      = "click"
	TallyKindConversion = "conversion"
)

// 账本事件类型常量
const (
	LedgerEventOrderCreated            = "order.created"
	LedgerEventOrderStatusChanged      = "order.status_changed"
	LedgerEventCommissionCreated       = "commission.created"
	LedgerEventCommissionStatusChanged = "commission.status_changed"
	LedgerEventWithdrawalCreated       = "withdrawal.created"
	LedgerEventWithdrawalApproved      = "withdrawal.approved"
	LedgerEventWithdrawalRejected      = "withdrawal.rejected"
	LedgerEventWithdrawalCompleted     = "withdrawal.completed"
)

// 队列与任务常量
const (
	QueueDefault           = "default"
	QueueCritical          = "critical"
	TaskPromoterTally      = "tracking:promoter_tally"
	TaskLedgerEventPublish = "ledger:event_publish"
)

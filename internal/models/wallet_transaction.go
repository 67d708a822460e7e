package models

import "time"

// WalletTransaction 钱包流水（账本），Reference 唯一保证幂等
type WalletTransaction struct {
	ID                     uint      `gorm:"primarykey" json:"id"`                                                  // 主键
	WalletID               uint      `gorm:"index;not null" json:"wallet_id"`                                       // 钱包ID
	UserUID                string    `gorm:"type:varchar(36);index;not null" json:"user_uid"`                       // 推广者UID
	Type                   string    `gorm:"type:varchar(32);index;not null" json:"type"`                           // 流水类型
	Direction              string    `gorm:"type:varchar(8);not null" json:"direction"`                             // 方向
	Amount                 Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`                   // 金额
	AvailableAfter         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"available_after"`          // 变动后可提现
	PendingCommissionAfter Money     `gorm:"type:decimal(20,2);not null;default:0" json:"pending_commission_after"` // 变动后待结算佣金
	PendingWithdrawalAfter Money     `gorm:"type:decimal(20,2);not null;default:0" json:"pending_withdrawal_after"` // 变动后提现冻结
	Reference              string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"reference"`               // 幂等参考号
	CommissionID           *uint     `gorm:"index" json:"commission_id,omitempty"`                                  // 关联佣金
	WithdrawalID           *uint     `gorm:"index" json:"withdrawal_id,omitempty"`                                  // 关联提现
	OrderID                *uint     `gorm:"index" json:"order_id,omitempty"`                                       // 关联订单
	Remark                 string    `gorm:"type:varchar(255)" json:"remark"`                                       // 备注
	CreatedAt              time.Time `gorm:"index" json:"created_at"`                                               // 创建时间
}

// TableName 指定表名
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

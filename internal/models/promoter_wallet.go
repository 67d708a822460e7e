package models

import "time"

// PromoterWallet 推广者钱包
// 佣金待结算与提现冻结分两个桶记录，所有余额写入前归零截断
type PromoterWallet struct {
	ID                      uint      `gorm:"primarykey" json:"id"`                                                   // 主键
	UserUID                 string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_uid"`                  // 推广者UID
	PendingCommissionAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"pending_commission_amount"` // 待结算佣金
	PendingWithdrawalAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"pending_withdrawal_amount"` // 提现冻结中
	AvailableAmount         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"available_amount"`          // 可提现
	WithdrawnAmount         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"withdrawn_amount"`          // 已提现
	TotalEarned             Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_earned"`              // 累计已结算收益
	TotalSalesCount         int       `gorm:"not null;default:0" json:"total_sales_count"`                            // 推广成交数
	BankName                string    `gorm:"type:varchar(100)" json:"bank_name,omitempty"`                           // 开户行
	BankAccountHolder       string    `gorm:"type:varchar(100)" json:"bank_account_holder,omitempty"`                 // 户名
	BankAccountNumber       string    `gorm:"type:varchar(100)" json:"-"`                                             // 账号（不返回）
	BankSwiftCode           string    `gorm:"type:varchar(50)" json:"bank_swift_code,omitempty"`                      // SWIFT
	CreatedAt               time.Time `gorm:"index" json:"created_at"`                                                // 创建时间
	UpdatedAt               time.Time `gorm:"index" json:"updated_at"`                                                // 更新时间
}

// TableName 指定表名
func (PromoterWallet) TableName() string {
	return "promoter_wallets"
}

package models

import "time"

// WithdrawalRequest 提现申请
type WithdrawalRequest struct {
	ID              uint       `gorm:"primarykey" json:"id"`                                            // 主键
	WalletID        uint       `gorm:"index;not null" json:"wallet_id"`                                 // 钱包ID
	UserUID         string     `gorm:"type:varchar(36);index;not null" json:"user_uid"`                 // 推广者UID
	Amount          Money      `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`             // 提现金额
	PaymentMethod   string     `gorm:"type:varchar(50);not null" json:"payment_method"`                 // 收款方式
	PaymentDetails  string     `gorm:"type:text;not null" json:"payment_details"`                       // 收款信息（JSON）
	Status          string     `gorm:"type:varchar(32);index;not null;default:'pending'" json:"status"` // 申请状态
	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`                     // 驳回原因
	AdminNotes      string     `gorm:"type:text" json:"admin_notes,omitempty"`                          // 管理备注
	TransactionID   string     `gorm:"type:varchar(128)" json:"transaction_id,omitempty"`               // 外部打款流水号
	ProcessedBy     string     `gorm:"type:varchar(100)" json:"processed_by,omitempty"`                 // 处理人UID
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`                                          // 处理时间
	WeekStartDate   *time.Time `json:"week_start_date,omitempty"`                                       // 申请所在周起
	WeekEndDate     *time.Time `json:"week_end_date,omitempty"`                                         // 申请所在周止
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt       time.Time  `gorm:"index" json:"updated_at"`                                         // 更新时间
}

// TableName 指定表名
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}

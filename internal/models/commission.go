package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commission 推广佣金记录
// 金额与比例在创建后不再变化，只有状态会流转
type Commission struct {
	ID               uint            `gorm:"primarykey" json:"id"`                                            // 主键
	UserID           *uint           `gorm:"index" json:"user_id,omitempty"`                                  // 推广者用户ID
	UserUID          string          `gorm:"type:varchar(36);index;not null" json:"user_uid"`                 // 推广者UID
	OrderID          uint            `gorm:"index;not null" json:"order_id"`                                  // 订单ID
	OrderItemID      uint            `gorm:"uniqueIndex;not null" json:"order_item_id"`                       // 订单项ID（每项仅一条佣金）
	ProductID        string          `gorm:"type:varchar(100);index" json:"product_id"`                       // 商品ID快照
	ProductName      string          `gorm:"type:varchar(255)" json:"product_name"`                           // 商品名称快照
	ProductPrice     Money           `gorm:"type:decimal(20,2);not null;default:0" json:"product_price"`      // 商品单价快照
	Quantity         int             `gorm:"not null;default:1" json:"quantity"`                              // 数量快照
	CommissionRate   decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0" json:"commission_rate"`     // 佣金比例（小数）
	CommissionAmount Money           `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"`  // 佣金金额
	Status           string          `gorm:"type:varchar(32);index;not null;default:'pending'" json:"status"` // 佣金状态
	PaidAt           *time.Time      `json:"paid_at,omitempty"`                                               // 结算时间
	MetadataJSON     string          `gorm:"type:text" json:"metadata_json,omitempty"`                        // 订单快照元数据
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt        time.Time       `gorm:"index" json:"updated_at"`                                         // 更新时间
}

// TableName 指定表名
func (Commission) TableName() string {
	return "commissions"
}

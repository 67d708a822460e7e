package models

import (
	"time"
)

// Order 订单表
type Order struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                            // 主键
	OrderNumber       string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"order_number"`       // 订单号
	UserID            uint       `gorm:"index;not null" json:"user_id"`                                   // 买家ID
	Status            string     `gorm:"type:varchar(32);index;not null;default:'pending'" json:"status"` // 订单状态
	Subtotal          Money      `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`           // 商品小计
	Shipping          Money      `gorm:"type:decimal(20,2);not null;default:0" json:"shipping"`           // 运费
	Tax               Money      `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`                // 税费
	Total             Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total"`              // 订单总额
	ShippingAddress   string     `gorm:"type:text" json:"shipping_address,omitempty"`                     // 收货地址（JSON）
	PaymentMethod     string     `gorm:"type:varchar(100)" json:"payment_method"`                         // 支付方式
	PaymentIntentID   string     `gorm:"type:varchar(200)" json:"payment_intent_id,omitempty"`            // 外部支付单号
	PromoterUID       *string    `gorm:"type:varchar(36);index" json:"promoter_uid,omitempty"`            // 订单级推广者
	TrackingNumber    string     `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`              // 物流单号
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`                                    // 预计送达时间
	Notes             string     `gorm:"type:text" json:"notes,omitempty"`                                // 备注
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt         time.Time  `gorm:"index" json:"updated_at"`                                         // 更新时间

	Items       []OrderItem  `gorm:"foreignKey:OrderID" json:"items,omitempty"`       // 订单项
	Commissions []Commission `gorm:"foreignKey:OrderID" json:"commissions,omitempty"` // 关联佣金
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

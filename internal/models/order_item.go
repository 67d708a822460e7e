package models

import "time"

// OrderItem 订单项表（创建后不可修改）
type OrderItem struct {
	ID                uint      `gorm:"primarykey" json:"id"`                                 // 主键
	OrderID           uint      `gorm:"index;not null" json:"order_id"`                       // 订单ID
	ProductID         string    `gorm:"type:varchar(100);index;not null" json:"product_id"`   // 推广商品ID（不做外键约束）
	ProductName       string    `gorm:"type:varchar(255)" json:"product_name"`                // 商品名称快照
	ProductImage      string    `gorm:"type:varchar(512)" json:"product_image,omitempty"`     // 商品图片快照
	Price             Money     `gorm:"type:decimal(20,2);not null;default:0" json:"price"`   // 单价
	Quantity          int       `gorm:"not null" json:"quantity"`                             // 数量
	Size              string    `gorm:"type:varchar(50)" json:"size,omitempty"`               // 尺码
	Color             string    `gorm:"type:varchar(50)" json:"color,omitempty"`              // 颜色
	Attributes        string    `gorm:"type:text" json:"attributes,omitempty"`                // 其它属性（JSON）
	IsPromotedProduct bool      `gorm:"not null;default:false" json:"is_promoted_product"`    // 是否推广商品
	PromoterUID       *string   `gorm:"type:varchar(36);index" json:"promoter_uid,omitempty"` // 应计佣金的推广者
	CreatedAt         time.Time `json:"created_at"`                                           // 创建时间
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

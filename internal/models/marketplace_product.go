package models

import (
	"time"

	"gorm.io/gorm"
)

// MarketplaceProduct 推广商品目录（佣金比例来源）
type MarketplaceProduct struct {
	ID             string         `gorm:"type:varchar(100);primaryKey" json:"id"`                      // 商品ID
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`                      // 商品名称
	Price          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`          // 售价
	CommissionRate Money          `gorm:"type:decimal(5,2);not null;default:0" json:"commission_rate"` // 佣金比例（百分比）
	Status         string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (MarketplaceProduct) TableName() string {
	return "marketplace_products"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表（买家、推广者与后台人员共用）
type User struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                     // 主键
	UID         string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"uid"`         // 对外唯一标识
	Email       string         `gorm:"uniqueIndex;not null" json:"email"`                        // 邮箱
	DisplayName string         `gorm:"default:''" json:"display_name"`                           // 昵称
	Role        string         `gorm:"type:varchar(20);not null;default:'user'" json:"role"`     // 角色
	Status      string         `gorm:"type:varchar(20);not null;default:'active'" json:"status"` // 账号状态
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

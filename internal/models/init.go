package models

import (
	"strings"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/logger"

	"github.com/google/uuid"
)

// InitDefaultAdmin 确保存在一个后台管理员账号
func InitDefaultAdmin(email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = "admin@buyv.local"
	}

	var existing User
	err := DB.Where("role = ?", constants.RoleAdmin).Order("id asc").Limit(1).Find(&existing).Error
	if err != nil {
		return nil, err
	}
	if existing.ID != 0 {
		return &existing, nil
	}

	admin := User{
		UID:         uuid.NewString(),
		Email:       email,
		DisplayName: "Administrator",
		Role:        constants.RoleAdmin,
		Status:      constants.UserStatusActive,
	}
	if err := DB.Create(&admin).Error; err != nil {
		return nil, err
	}
	logger.Warnw("default_admin_created", "email", email, "uid", admin.UID)
	return &admin, nil
}

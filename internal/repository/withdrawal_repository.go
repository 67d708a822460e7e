package repository

import (
	"strings"

	"github.com/buyv-ledger/internal/models"

	"gorm.io/gorm"
)

// WithdrawalRepository 提现申请数据访问接口
type WithdrawalRepository interface {
	Create(request *models.WithdrawalRequest) error
	GetByID(id uint) (*models.WithdrawalRequest, error)
	GetByIDForUpdate(id uint) (*models.WithdrawalRequest, error)
	HasStatusByUser(userUID string, status string) (bool, error)
	List(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	CountByUserAndStatuses(userUID string, statuses []string) (int64, error)
	SumAmountByUserAndStatuses(userUID string, statuses []string) (models.Money, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormWithdrawalRepository
}

// GormWithdrawalRepository GORM 实现
type GormWithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository 创建提现仓库
func NewWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWithdrawalRepository) WithTx(tx *gorm.DB) *GormWithdrawalRepository {
	if tx == nil {
		return r
	}
	return &GormWithdrawalRepository{db: tx}
}

// Transaction 执行事务
func (r *GormWithdrawalRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create 创建提现申请
func (r *GormWithdrawalRepository) Create(request *models.WithdrawalRequest) error {
	return r.db.Create(request).Error
}

// GetByID 根据 ID 获取提现申请
func (r *GormWithdrawalRepository) GetByID(id uint) (*models.WithdrawalRequest, error) {
	return firstOrNil[models.WithdrawalRequest](r.db, id)
}

// GetByIDForUpdate 加锁获取提现申请
func (r *GormWithdrawalRepository) GetByIDForUpdate(id uint) (*models.WithdrawalRequest, error) {
	return firstOrNil[models.WithdrawalRequest](lockForUpdate(r.db), id)
}

// HasStatusByUser 判断推广者是否存在指定状态的申请
func (r *GormWithdrawalRepository) HasStatusByUser(userUID string, status string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.WithdrawalRequest{}).
		Where("user_uid = ? AND status = ?", userUID, status).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List 分页查询提现申请
func (r *GormWithdrawalRepository) List(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	query := r.db.Model(&models.WithdrawalRequest{})
	if uid := strings.TrimSpace(filter.UserUID); uid != "" {
		query = query.Where("user_uid = ?", uid)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if method := strings.TrimSpace(filter.PaymentMethod); method != "" {
		query = query.Where("payment_method = ?", method)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.WithdrawalRequest
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateFields 更新提现申请字段
func (r *GormWithdrawalRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.WithdrawalRequest{}).Where("id = ?", id).Updates(updates).Error
}

// CountByUserAndStatuses 统计推广者指定状态的申请数
func (r *GormWithdrawalRepository) CountByUserAndStatuses(userUID string, statuses []string) (int64, error) {
	query := r.db.Model(&models.WithdrawalRequest{}).Where("user_uid = ?", userUID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumAmountByUserAndStatuses 汇总推广者指定状态的申请金额
func (r *GormWithdrawalRepository) SumAmountByUserAndStatuses(userUID string, statuses []string) (models.Money, error) {
	var result struct {
		Total models.Money
	}
	if strings.TrimSpace(userUID) == "" || len(statuses) == 0 {
		return models.Money{}, nil
	}
	if err := r.db.Model(&models.WithdrawalRequest{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_uid = ? AND status IN ?", userUID, statuses).
		Scan(&result).Error; err != nil {
		return models.Money{}, err
	}
	return result.Total, nil
}

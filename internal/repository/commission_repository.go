package repository

import (
	"strings"

	"github.com/buyv-ledger/internal/models"

	"gorm.io/gorm"
)

// CommissionRepository 佣金数据访问接口
type CommissionRepository interface {
	Create(commission *models.Commission) error
	GetByID(id uint) (*models.Commission, error)
	GetByIDForUpdate(id uint) (*models.Commission, error)
	GetByOrderItemID(orderItemID uint) (*models.Commission, error)
	ListByOrderForUpdate(orderID uint, status string) ([]models.Commission, error)
	ListByOrder(orderID uint) ([]models.Commission, error)
	List(filter CommissionListFilter) ([]models.Commission, int64, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	SumAmountByUserAndStatuses(userUID string, statuses []string) (models.Money, error)
	CountByUserAndStatuses(userUID string, statuses []string) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormCommissionRepository
}

// GormCommissionRepository GORM 实现
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金仓库
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) *GormCommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCommissionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create 创建佣金记录
func (r *GormCommissionRepository) Create(commission *models.Commission) error {
	return r.db.Create(commission).Error
}

// GetByID 根据 ID 获取佣金
func (r *GormCommissionRepository) GetByID(id uint) (*models.Commission, error) {
	return firstOrNil[models.Commission](r.db, id)
}

// GetByIDForUpdate 加锁获取佣金
func (r *GormCommissionRepository) GetByIDForUpdate(id uint) (*models.Commission, error) {
	return firstOrNil[models.Commission](lockForUpdate(r.db), id)
}

// GetByOrderItemID 按订单项获取佣金
func (r *GormCommissionRepository) GetByOrderItemID(orderItemID uint) (*models.Commission, error) {
	if orderItemID == 0 {
		return nil, nil
	}
	return firstOrNil[models.Commission](r.db.Where("order_item_id = ?", orderItemID))
}

// ListByOrderForUpdate 加锁获取订单下指定状态的佣金
func (r *GormCommissionRepository) ListByOrderForUpdate(orderID uint, status string) ([]models.Commission, error) {
	query := lockForUpdate(r.db).Where("order_id = ?", orderID)
	if status = strings.TrimSpace(status); status != "" {
		query = query.Where("status = ?", status)
	}
	var rows []models.Commission
	if err := query.Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByOrder 获取订单下全部佣金
func (r *GormCommissionRepository) ListByOrder(orderID uint) ([]models.Commission, error) {
	var rows []models.Commission
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// List 分页查询佣金
func (r *GormCommissionRepository) List(filter CommissionListFilter) ([]models.Commission, int64, error) {
	query := r.db.Model(&models.Commission{})
	if uid := strings.TrimSpace(filter.UserUID); uid != "" {
		query = query.Where("user_uid = ?", uid)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if orderNumber := strings.TrimSpace(filter.OrderNumber); orderNumber != "" {
		query = query.Where(dialectOf(r.db).jsonText("metadata_json", "orderNumber")+" = ?", orderNumber)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Commission
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UpdateStatus 更新佣金状态
func (r *GormCommissionRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Commission{}).Where("id = ?", id).Updates(updates).Error
}

// SumAmountByUserAndStatuses 汇总推广者指定状态的佣金金额
func (r *GormCommissionRepository) SumAmountByUserAndStatuses(userUID string, statuses []string) (models.Money, error) {
	var result struct {
		Total models.Money
	}
	if strings.TrimSpace(userUID) == "" || len(statuses) == 0 {
		return models.Money{}, nil
	}
	if err := r.db.Model(&models.Commission{}).
		Select("COALESCE(SUM(commission_amount), 0) AS total").
		Where("user_uid = ? AND status IN ?", userUID, statuses).
		Scan(&result).Error; err != nil {
		return models.Money{}, err
	}
	return result.Total, nil
}

// CountByUserAndStatuses 统计推广者指定状态的佣金数量
func (r *GormCommissionRepository) CountByUserAndStatuses(userUID string, statuses []string) (int64, error) {
	if strings.TrimSpace(userUID) == "" || len(statuses) == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.Commission{}).
		Where("user_uid = ? AND status IN ?", userUID, statuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

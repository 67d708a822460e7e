package repository

import (
	"strings"

	"github.com/buyv-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository 推广商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.MarketplaceProduct, int64, error)
	GetByID(id string) (*models.MarketplaceProduct, error)
	Upsert(product *models.MarketplaceProduct) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// List 商品列表
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.MarketplaceProduct, int64, error) {
	query := r.db.Model(&models.MarketplaceProduct{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, args := keywordSearch(r.db, search, "id", "name")
		query = query.Where(condition, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var products []models.MarketplaceProduct
	if err := query.Order("created_at desc").Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id string) (*models.MarketplaceProduct, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	return firstOrNil[models.MarketplaceProduct](r.db.Where("id = ?", id))
}

// Upsert 按 ID 新增或更新商品
func (r *GormProductRepository) Upsert(product *models.MarketplaceProduct) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "price", "commission_rate", "status", "updated_at"}),
	}).Create(product).Error
}

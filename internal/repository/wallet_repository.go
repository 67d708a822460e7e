package repository

import (
	"strings"

	"github.com/buyv-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository 推广者钱包数据访问接口
type WalletRepository interface {
	GetByUserUID(userUID string) (*models.PromoterWallet, error)
	GetByUserUIDForUpdate(userUID string) (*models.PromoterWallet, error)
	Create(wallet *models.PromoterWallet) error
	CreateIfAbsent(userUID string) error
	Update(wallet *models.PromoterWallet) error
	List(filter WalletListFilter) ([]models.PromoterWallet, int64, error)
	CreateTransaction(txn *models.WalletTransaction) error
	GetTransactionByReference(reference string) (*models.WalletTransaction, error)
	ListTransactions(filter WalletTransactionListFilter) ([]models.WalletTransaction, int64, error)
	CountTransactionsByCommission(commissionID uint) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormWalletRepository
}

// GormWalletRepository GORM 钱包仓储实现
type GormWalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository 创建钱包仓储
func NewWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWalletRepository) WithTx(tx *gorm.DB) *GormWalletRepository {
	if tx == nil {
		return r
	}
	return &GormWalletRepository{db: tx}
}

// Transaction 执行事务
func (r *GormWalletRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByUserUID 按推广者UID获取钱包
func (r *GormWalletRepository) GetByUserUID(userUID string) (*models.PromoterWallet, error) {
	userUID = strings.TrimSpace(userUID)
	if userUID == "" {
		return nil, nil
	}
	return firstOrNil[models.PromoterWallet](r.db.Where("user_uid = ?", userUID))
}

// GetByUserUIDForUpdate 按推广者UID加锁获取钱包
func (r *GormWalletRepository) GetByUserUIDForUpdate(userUID string) (*models.PromoterWallet, error) {
	userUID = strings.TrimSpace(userUID)
	if userUID == "" {
		return nil, nil
	}
	return firstOrNil[models.PromoterWallet](lockForUpdate(r.db).
		Where("user_uid = ?", userUID))
}

// Create 创建钱包
func (r *GormWalletRepository) Create(wallet *models.PromoterWallet) error {
	return r.db.Create(wallet).Error
}

// CreateIfAbsent 钱包不存在时创建，并发创建时忽略唯一冲突
func (r *GormWalletRepository) CreateIfAbsent(userUID string) error {
	userUID = strings.TrimSpace(userUID)
	if userUID == "" {
		return nil
	}
	wallet := models.PromoterWallet{UserUID: userUID}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_uid"}},
		DoNothing: true,
	}).Create(&wallet).Error
}

// Update 更新钱包
func (r *GormWalletRepository) Update(wallet *models.PromoterWallet) error {
	return r.db.Save(wallet).Error
}

// List 分页查询钱包
func (r *GormWalletRepository) List(filter WalletListFilter) ([]models.PromoterWallet, int64, error) {
	query := r.db.Model(&models.PromoterWallet{})
	if uid := strings.TrimSpace(filter.UserUID); uid != "" {
		query = query.Where("user_uid = ?", uid)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var wallets []models.PromoterWallet
	if err := query.Order("id asc").Find(&wallets).Error; err != nil {
		return nil, 0, err
	}
	return wallets, total, nil
}

// CreateTransaction 创建钱包流水
func (r *GormWalletRepository) CreateTransaction(txn *models.WalletTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference 按参考号获取流水
func (r *GormWalletRepository) GetTransactionByReference(reference string) (*models.WalletTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	return firstOrNil[models.WalletTransaction](r.db.Where("reference = ?", reference))
}

// ListTransactions 分页查询钱包流水
func (r *GormWalletRepository) ListTransactions(filter WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	query := r.db.Model(&models.WalletTransaction{})
	if uid := strings.TrimSpace(filter.UserUID); uid != "" {
		query = query.Where("user_uid = ?", uid)
	}
	if txnType := strings.TrimSpace(filter.Type); txnType != "" {
		query = query.Where("type = ?", txnType)
	}
	if filter.CommissionID != 0 {
		query = query.Where("commission_id = ?", filter.CommissionID)
	}
	if filter.WithdrawalID != 0 {
		query = query.Where("withdrawal_id = ?", filter.WithdrawalID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.WalletTransaction
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// CountTransactionsByCommission 统计佣金关联的流水条数
func (r *GormWalletRepository) CountTransactionsByCommission(commissionID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.WalletTransaction{}).
		Where("commission_id = ?", commissionID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

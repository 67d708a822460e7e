package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrackingRepository 推广追踪数据访问接口
type TrackingRepository interface {
	CreateView(view *models.ReelView) error
	FindView(reelID, viewerUID, sessionID string) (*models.ReelView, error)
	CreateClick(click *models.AffiliateClick) error
	GetUnconvertedClickBySessionForUpdate(sessionID string) (*models.AffiliateClick, error)
	MarkClickConverted(id uint, orderID uint, at time.Time) error
	CountViews(promoterUID string, since time.Time) (int64, error)
	CountClicks(promoterUID string, since time.Time) (int64, error)
	CountConversions(promoterUID string, since time.Time) (int64, error)
	IncrementStat(promoterUID, kind string, at time.Time) error
	GetStat(promoterUID string) (*models.PromoterStat, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormTrackingRepository
}

// GormTrackingRepository GORM 实现
type GormTrackingRepository struct {
	db *gorm.DB
}

// NewTrackingRepository 创建推广追踪仓库
func NewTrackingRepository(db *gorm.DB) *GormTrackingRepository {
	return &GormTrackingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormTrackingRepository) WithTx(tx *gorm.DB) *GormTrackingRepository {
	if tx == nil {
		return r
	}
	return &GormTrackingRepository{db: tx}
}

// Transaction 执行事务
func (r *GormTrackingRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// CreateView 写入曝光记录
func (r *GormTrackingRepository) CreateView(view *models.ReelView) error {
	return r.db.Create(view).Error
}

// FindView 查找同一观看者同一会话的曝光
func (r *GormTrackingRepository) FindView(reelID, viewerUID, sessionID string) (*models.ReelView, error) {
	return firstOrNil[models.ReelView](r.db.Where("reel_id = ? AND viewer_uid = ? AND session_id = ?", reelID, viewerUID, sessionID))
}

// CreateClick 写入点击记录
func (r *GormTrackingRepository) CreateClick(click *models.AffiliateClick) error {
	return r.db.Create(click).Error
}

// GetUnconvertedClickBySessionForUpdate 加锁获取会话内最早一条未转化点击
func (r *GormTrackingRepository) GetUnconvertedClickBySessionForUpdate(sessionID string) (*models.AffiliateClick, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}
	return firstOrNil[models.AffiliateClick](lockForUpdate(r.db).
		Where("session_id = ? AND converted = ?", sessionID, false).
		Order("id asc"))
}

// MarkClickConverted 标记点击已转化
func (r *GormTrackingRepository) MarkClickConverted(id uint, orderID uint, at time.Time) error {
	return r.db.Model(&models.AffiliateClick{}).
		Where("id = ? AND converted = ?", id, false).
		Updates(map[string]interface{}{
			"converted":    true,
			"converted_at": at,
			"order_id":     orderID,
		}).Error
}

// CountViews 统计时间窗口内的曝光数
func (r *GormTrackingRepository) CountViews(promoterUID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.ReelView{}).
		Where("promoter_uid = ? AND created_at >= ?", promoterUID, since).
		Count(&count).Error
	return count, err
}

// CountClicks 统计时间窗口内的点击数
func (r *GormTrackingRepository) CountClicks(promoterUID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.AffiliateClick{}).
		Where("promoter_uid = ? AND created_at >= ?", promoterUID, since).
		Count(&count).Error
	return count, err
}

// CountConversions 统计时间窗口内的转化数
func (r *GormTrackingRepository) CountConversions(promoterUID string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.AffiliateClick{}).
		Where("promoter_uid = ? AND converted = ? AND converted_at >= ?", promoterUID, true, since).
		Count(&count).Error
	return count, err
}

// IncrementStat 累加推广者统计
func (r *GormTrackingRepository) IncrementStat(promoterUID, kind string, at time.Time) error {
	column, err := statColumn(kind)
	if err != nil {
		return err
	}
	promoterUID = strings.TrimSpace(promoterUID)
	if promoterUID == "" {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		seed := models.PromoterStat{PromoterUID: promoterUID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "promoter_uid"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}
		return tx.Model(&models.PromoterStat{}).
			Where("promoter_uid = ?", promoterUID).
			Updates(map[string]interface{}{
				column:             gorm.Expr(column+" + ?", 1),
				"last_activity_at": at,
			}).Error
	})
}

// GetStat 获取推广者统计
func (r *GormTrackingRepository) GetStat(promoterUID string) (*models.PromoterStat, error) {
	return firstOrNil[models.PromoterStat](r.db.Where("promoter_uid = ?", promoterUID))
}

func statColumn(kind string) (string, error) {
	switch kind {
	case constants.TallyKindView:
		return "view_count", nil
	case constants.TallyKindClick:
		return "click_count", nil
	case constants.TallyKindConversion:
		return "conversion_count", nil
	default:
		return "", fmt.Errorf("unknown tally kind: %s", kind)
	}
}

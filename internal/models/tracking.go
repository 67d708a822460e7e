package models

import "time"

// ReelView 视频曝光记录，同一观看者同一会话只记一次
type ReelView struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	ReelID         string    `gorm:"type:varchar(100);not null;index;uniqueIndex:uq_reel_view" json:"reel_id"`
	PromoterUID    string    `gorm:"type:varchar(36);not null;index" json:"promoter_uid"`
	ProductID      *string   `gorm:"type:varchar(100);index" json:"product_id,omitempty"`
	ViewerUID      *string   `gorm:"type:varchar(36);index;uniqueIndex:uq_reel_view" json:"viewer_uid,omitempty"`
	SessionID      *string   `gorm:"type:varchar(100);uniqueIndex:uq_reel_view" json:"session_id,omitempty"`
	WatchDuration  *int      `json:"watch_duration,omitempty"`  // 观看秒数
	CompletionRate *float64  `json:"completion_rate,omitempty"` // 完播率 0-1
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (ReelView) TableName() string {
	return "reel_views"
}

// AffiliateClick 推广商品点击记录
type AffiliateClick struct {
	ID          uint       `gorm:"primarykey" json:"id"`
	ViewerUID   *string    `gorm:"type:varchar(36);index" json:"viewer_uid,omitempty"`
	ReelID      string     `gorm:"type:varchar(100);not null;index" json:"reel_id"`
	ProductID   string     `gorm:"type:varchar(100);not null;index" json:"product_id"`
	PromoterUID string     `gorm:"type:varchar(36);not null;index" json:"promoter_uid"`
	SessionID   *string    `gorm:"type:varchar(100);index" json:"session_id,omitempty"`
	DeviceInfo  string     `gorm:"type:text" json:"device_info,omitempty"` // 设备信息（JSON）
	Converted   bool       `gorm:"not null;default:false;index" json:"converted"`
	ConvertedAt *time.Time `json:"converted_at,omitempty"`
	OrderID     *uint      `gorm:"index" json:"order_id,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AffiliateClick) TableName() string {
	return "affiliate_clicks"
}

// PromoterStat 推广者累计统计（异步任务维护）
type PromoterStat struct {
	ID              uint       `gorm:"primarykey" json:"id"`
	PromoterUID     string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"promoter_uid"`
	ViewCount       int64      `gorm:"not null;default:0" json:"view_count"`
	ClickCount      int64      `gorm:"not null;default:0" json:"click_count"`
	ConversionCount int64      `gorm:"not null;default:0" json:"conversion_count"`
	LastActivityAt  *time.Time `json:"last_activity_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (PromoterStat) TableName() string {
	return "promoter_stats"
}

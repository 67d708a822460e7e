package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CommissionRateEntry 商品佣金比例快照（百分比）
type CommissionRateEntry struct {
	ProductID   string `json:"product_id"`
	RatePercent string `json:"rate_percent"`
	Found       bool   `json:"found"`
	CachedAt    int64  `json:"cached_at"`
}

func commissionRateKey(productID string) string {
	return fmt.Sprintf("ledger:rate:%s", strings.TrimSpace(productID))
}

func clickDedupeKey(sessionID, productID, promoterUID string) string {
	return fmt.Sprintf("tracking:click:%s:%s:%s",
		strings.TrimSpace(sessionID),
		strings.TrimSpace(productID),
		strings.TrimSpace(promoterUID),
	)
}

// GetCommissionRate 读取商品佣金比例缓存
func GetCommissionRate(ctx context.Context, productID string) (*CommissionRateEntry, bool, error) {
	var entry CommissionRateEntry
	hit, err := GetJSON(ctx, commissionRateKey(productID), &entry)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &entry, true, nil
}

// SetCommissionRate 写入商品佣金比例缓存
func SetCommissionRate(ctx context.Context, entry *CommissionRateEntry, ttl time.Duration) error {
	if entry == nil || strings.TrimSpace(entry.ProductID) == "" {
		return nil
	}
	if entry.CachedAt == 0 {
		entry.CachedAt = time.Now().Unix()
	}
	return SetJSON(ctx, commissionRateKey(entry.ProductID), entry, ttl)
}

// InvalidateCommissionRate 删除商品佣金比例缓存
func InvalidateCommissionRate(ctx context.Context, productID string) error {
	return Del(ctx, commissionRateKey(productID))
}

// MarkClick 标记会话内的点击，窗口期内重复点击返回 false
func MarkClick(ctx context.Context, sessionID, productID, promoterUID string, window time.Duration) (bool, error) {
	if strings.TrimSpace(sessionID) == "" || window <= 0 {
		return true, nil
	}
	return SetNX(ctx, clickDedupeKey(sessionID, productID, promoterUID), window)
}

package service

import (
	"context"
	"time"

	"github.com/buyv-ledger/internal/cache"
	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/repository"

	"github.com/shopspring/decimal"
)

const defaultRateCacheTTL = 5 * time.Minute

var hundred = decimal.NewFromInt(100)

// CommissionRateResolver 解析商品佣金比例（小数形式）
type CommissionRateResolver struct {
	productRepo        repository.ProductRepository
	defaultRatePercent decimal.Decimal
	cacheTTL           time.Duration
}

// NewCommissionRateResolver 创建佣金比例解析器
func NewCommissionRateResolver(productRepo repository.ProductRepository, cfg config.CommissionConfig) *CommissionRateResolver {
	ttl := time.Duration(cfg.RateCacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultRateCacheTTL
	}
	return &CommissionRateResolver{
		productRepo:        productRepo,
		defaultRatePercent: decimal.NewFromFloat(cfg.DefaultRatePercent),
		cacheTTL:           ttl,
	}
}

// Resolve 返回商品佣金比例，商品缺失或比例为 0 时使用已配置的默认比例，否则报配置错误
func (r *CommissionRateResolver) Resolve(ctx context.Context, productID string) (decimal.Decimal, error) {
	percent, found, err := r.lookupPercent(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if found && percent.GreaterThan(decimal.Zero) {
		return percent.Div(hundred), nil
	}
	if r.defaultRatePercent.GreaterThan(decimal.Zero) {
		logger.Warnw("commission_rate_default_applied",
			"product_id", productID,
			"default_rate_percent", r.defaultRatePercent.String(),
		)
		return r.defaultRatePercent.Div(hundred), nil
	}
	logger.Errorw("commission_rate_unavailable", "product_id", productID)
	return decimal.Zero, ErrCommissionRateUnavailable
}

// Invalidate 清除商品佣金比例缓存
func (r *CommissionRateResolver) Invalidate(ctx context.Context, productID string) {
	if err := cache.InvalidateCommissionRate(ctx, productID); err != nil {
		logger.Warnw("commission_rate_cache_invalidate_failed", "product_id", productID, "error", err)
	}
}

func (r *CommissionRateResolver) lookupPercent(ctx context.Context, productID string) (decimal.Decimal, bool, error) {
	if entry, hit, err := cache.GetCommissionRate(ctx, productID); err != nil {
		logger.Warnw("commission_rate_cache_read_failed", "product_id", productID, "error", err)
	} else if hit && entry != nil {
		if !entry.Found {
			return decimal.Zero, false, nil
		}
		if percent, err := decimal.NewFromString(entry.RatePercent); err == nil {
			return percent, true, nil
		}
	}

	if r.productRepo == nil {
		return decimal.Zero, false, nil
	}
	product, err := r.productRepo.GetByID(productID)
	if err != nil {
		return decimal.Zero, false, err
	}
	entry := &cache.CommissionRateEntry{ProductID: productID}
	var percent decimal.Decimal
	if product != nil {
		percent = product.CommissionRate.Decimal
		entry.Found = true
		entry.RatePercent = percent.String()
	}
	if err := cache.SetCommissionRate(ctx, entry, r.cacheTTL); err != nil {
		logger.Warnw("commission_rate_cache_write_failed", "product_id", productID, "error", err)
	}
	return percent, product != nil, nil
}

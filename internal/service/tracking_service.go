package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/buyv-ledger/internal/cache"
	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/metrics"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/queue"
	"github.com/buyv-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultClickDedupeWindow = 30 * time.Second
	defaultAnalyticsDays     = 30
	defaultAnalyticsMaxDays  = 365
)

// TrackViewInput 视频曝光输入
type TrackViewInput struct {
	ReelID         string
	PromoterUID    string
	ProductID      string
	ViewerUID      string
	SessionID      string
	WatchDuration  *int
	CompletionRate *float64
}

// TrackClickInput 推广商品点击输入
type TrackClickInput struct {
	ReelID      string
	ProductID   string
	PromoterUID string
	ViewerUID   string
	SessionID   string
	DeviceInfo  map[string]interface{}
}

// TrackResult 追踪结果，Recorded 为 false 表示被去重或无匹配记录
type TrackResult struct {
	Recorded   bool   `json:"recorded"`
	TrackingID uint   `json:"tracking_id,omitempty"`
	Message    string `json:"message"`
}

// PromoterAnalytics 推广者数据概览
type PromoterAnalytics struct {
	PromoterUID string               `json:"promoter_uid"`
	PeriodDays  int                  `json:"period_days"`
	Metrics     AnalyticsMetrics     `json:"metrics"`
	Earnings    AnalyticsEarnings    `json:"earnings"`
	Stats       AnalyticsSalesStats  `json:"stats"`
	Lifetime    *models.PromoterStat `json:"lifetime,omitempty"`
}

// AnalyticsMetrics 曝光、点击与转化
type AnalyticsMetrics struct {
	Views          int64   `json:"views"`
	Clicks         int64   `json:"clicks"`
	Conversions    int64   `json:"conversions"`
	CTR            float64 `json:"ctr"`
	ConversionRate float64 `json:"conversion_rate"`
}

// AnalyticsEarnings 收益概览
type AnalyticsEarnings struct {
	TotalEarned         models.Money `json:"total_earned"`
	PendingCommission   models.Money `json:"pending_commission_amount"`
	PendingWithdrawal   models.Money `json:"pending_withdrawal_amount"`
	AvailableBalance    models.Money `json:"available_balance"`
	WithdrawnTotal      models.Money `json:"withdrawn_total"`
	PendingCommissions  models.Money `json:"pending_commissions"`
	ApprovedCommissions models.Money `json:"approved_commissions"`
}

// AnalyticsSalesStats 成交统计
type AnalyticsSalesStats struct {
	TotalSales           int     `json:"total_sales"`
	AvgCommissionPerSale float64 `json:"avg_commission_per_sale"`
}

// TrackingService 推广追踪与数据分析
type TrackingService struct {
	trackingRepo     repository.TrackingRepository
	orderRepo        repository.OrderRepository
	commissionRepo   repository.CommissionRepository
	walletRepo       repository.WalletRepository
	engine           *CommissionEngine
	queueClient      *queue.Client
	sink             EventSink
	clickDedupe      time.Duration
	analyticsMaxDays int
}

// NewTrackingService 创建追踪服务
func NewTrackingService(
	trackingRepo repository.TrackingRepository,
	orderRepo repository.OrderRepository,
	commissionRepo repository.CommissionRepository,
	walletRepo repository.WalletRepository,
	engine *CommissionEngine,
	queueClient *queue.Client,
	cfg config.TrackingConfig,
	sink EventSink,
) *TrackingService {
	window := time.Duration(cfg.ClickDedupeSeconds) * time.Second
	if window <= 0 {
		window = defaultClickDedupeWindow
	}
	maxDays := cfg.AnalyticsMaxDays
	if maxDays <= 0 {
		maxDays = defaultAnalyticsMaxDays
	}
	return &TrackingService{
		trackingRepo:     trackingRepo,
		orderRepo:        orderRepo,
		commissionRepo:   commissionRepo,
		walletRepo:       walletRepo,
		engine:           engine,
		queueClient:      queueClient,
		sink:             sink,
		clickDedupe:      window,
		analyticsMaxDays: maxDays,
	}
}

// TrackView 记录视频曝光，同一观看者同一会话只记一次
func (s *TrackingService) TrackView(ctx context.Context, input TrackViewInput) (*TrackResult, error) {
	reelID := strings.TrimSpace(input.ReelID)
	promoterUID := strings.TrimSpace(input.PromoterUID)
	if reelID == "" || promoterUID == "" {
		return nil, ErrTrackingInputInvalid
	}
	viewerUID := strings.TrimSpace(input.ViewerUID)
	sessionID := strings.TrimSpace(input.SessionID)

	if viewerUID != "" && sessionID != "" {
		existing, err := s.trackingRepo.FindView(reelID, viewerUID, sessionID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			metrics.TrackingEventsTotal.WithLabelValues(constants.TallyKindView, "duplicate").Inc()
			return &TrackResult{TrackingID: existing.ID, Message: "view already tracked"}, nil
		}
	}

	view := &models.ReelView{
		ReelID:         reelID,
		PromoterUID:    promoterUID,
		ProductID:      optionalString(input.ProductID),
		ViewerUID:      optionalString(viewerUID),
		SessionID:      optionalString(sessionID),
		WatchDuration:  input.WatchDuration,
		CompletionRate: input.CompletionRate,
	}
	if err := s.trackingRepo.CreateView(view); err != nil {
		if isUniqueViolation(err) {
			metrics.TrackingEventsTotal.WithLabelValues(constants.TallyKindView, "duplicate").Inc()
			return &TrackResult{Message: "view already tracked"}, nil
		}
		return nil, err
	}
	metrics.TrackingEventsTotal.WithLabelValues(constants.TallyKindView, "recorded").Inc()
	s.tally(ctx, constants.TallyKindView, promoterUID)
	return &TrackResult{Recorded: true, TrackingID: view.ID, Message: "view tracked"}, nil
}

// TrackClick 记录推广商品点击，同一会话短时间内重复点击只记一次
func (s *TrackingService) TrackClick(ctx context.Context, input TrackClickInput) (*TrackResult, error) {
	reelID := strings.TrimSpace(input.ReelID)
	productID := strings.TrimSpace(input.ProductID)
	promoterUID := strings.TrimSpace(input.PromoterUID)
	if reelID == "" || productID == "" || promoterUID == "" {
		return nil, ErrTrackingInputInvalid
	}
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID != "" {
		first, err := cache.MarkClick(ctx, sessionID, productID, promoterUID, s.clickDedupe)
		if err != nil {
			logger.Warnw("tracking_click_dedupe_failed", "session_id", sessionID, "error", err)
		} else if !first {
			metrics.TrackingEventsTotal.WithLabelValues(constants.TallyKindClick, "duplicate").Inc()
			return &TrackResult{Message: "click already tracked"}, nil
		}
	}

	click := &models.AffiliateClick{
		ViewerUID:   optionalString(input.ViewerUID),
		ReelID:      reelID,
		ProductID:   productID,
		PromoterUID: promoterUID,
		SessionID:   optionalString(sessionID),
	}
	if len(input.DeviceInfo) > 0 {
		if raw, err := json.Marshal(input.DeviceInfo); err == nil {
			click.DeviceInfo = string(raw)
		}
	}
	if err := s.trackingRepo.CreateClick(click); err != nil {
		return nil, err
	}
	metrics.TrackingEventsTotal.WithLabelValues(constants.TallyKindClick, "recorded").Inc()
	s.tally(ctx, constants.TallyKindClick, promoterUID)
	return &TrackResult{Recorded: true, TrackingID: click.ID, Message: "click tracked"}, nil
}

// TrackConversion 将会话内首个未转化点击标记为转化，订单仍未结束时为点击商品补计缺失的佣金
func (s *TrackingService) TrackConversion(ctx context.Context, principal *Principal, orderID uint, clickSessionID string) (*TrackResult, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	clickSessionID = strings.TrimSpace(clickSessionID)
	if orderID == 0 || clickSessionID == "" {
		return nil, ErrTrackingInputInvalid
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || (!principal.IsStaff() && order.UserID != principal.ID) {
		return nil, ErrOrderNotFound
	}

	preview, err := s.trackingRepo.GetUnconvertedClickBySessionForUpdate(clickSessionID)
	if err != nil {
		return nil, err
	}
	if preview == nil {
		metrics.TrackingEventsTotal.WithLabelValues(constants.TallyKindConversion, "unmatched").Inc()
		return &TrackResult{Message: "no matching click found or already converted"}, nil
	}

	candidate, err := s.unaccruedItem(order, preview)
	if err != nil {
		return nil, err
	}
	var rate decimal.Decimal
	if candidate != nil {
		rate, err = s.engine.rates.Resolve(ctx, candidate.ProductID)
		switch {
		case errors.Is(err, ErrCommissionRateUnavailable):
			// 无佣金比例时只记录转化
			metrics.CommissionRateErrorsTotal.Inc()
			logger.Warnw("tracking_conversion_rate_unavailable", "order_id", order.ID, "product_id", candidate.ProductID)
			candidate = nil
		case err != nil:
			metrics.CommissionRateErrorsTotal.Inc()
			return nil, err
		}
	}

	var (
		click   *models.AffiliateClick
		accrued *models.Commission
	)
	err = s.trackingRepo.Transaction(func(tx *gorm.DB) error {
		trackingRepo := s.trackingRepo.WithTx(tx)
		locked, err := trackingRepo.GetUnconvertedClickBySessionForUpdate(clickSessionID)
		if err != nil {
			return err
		}
		if locked == nil {
			return nil
		}
		if err := trackingRepo.MarkClickConverted(locked.ID, order.ID, time.Now()); err != nil {
			return err
		}
		click = locked
		if candidate == nil || candidate.ProductID != locked.ProductID {
			return nil
		}
		// 加锁复查订单状态
		current, err := s.orderRepo.WithTx(tx).GetByIDForUpdate(order.ID)
		if err != nil {
			return err
		}
		if current == nil || !orderAcceptsAccrual(current.Status) {
			return nil
		}
		commission, created, err := s.engine.AccrueTx(tx, current, candidate, rate)
		if err != nil {
			return err
		}
		if created {
			accrued = commission
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if click == nil {
		metrics.TrackingEventsTotal.WithLabelValues(constants.TallyKindConversion, "unmatched").Inc()
		return &TrackResult{Message: "no matching click found or already converted"}, nil
	}

	metrics.TrackingEventsTotal.WithLabelValues(constants.TallyKindConversion, "recorded").Inc()
	if accrued != nil {
		metrics.CommissionsAccruedTotal.Inc()
		metrics.AddAmount(metrics.CommissionAmountTotal, constants.CommissionStatusPending, accrued.CommissionAmount.InexactFloat64())
		emitEvents(ctx, s.sink, commissionCreatedEvent(accrued))
	}
	s.tally(ctx, constants.TallyKindConversion, click.PromoterUID)
	logger.Infow("tracking_conversion_recorded",
		"click_id", click.ID,
		"order_id", order.ID,
		"promoter_uid", click.PromoterUID,
		"commission_accrued", accrued != nil,
	)
	return &TrackResult{Recorded: true, TrackingID: click.ID, Message: "conversion tracked"}, nil
}

// unaccruedItem 找出点击商品对应、尚未计佣的订单项；未标记推广的订单项按点击归因给点击的推广者
func (s *TrackingService) unaccruedItem(order *models.Order, click *models.AffiliateClick) (*models.OrderItem, error) {
	if !orderAcceptsAccrual(order.Status) {
		return nil, nil
	}
	for i := range order.Items {
		item := order.Items[i]
		if item.ProductID != click.ProductID {
			continue
		}
		existing, err := s.commissionRepo.GetByOrderItemID(item.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}
		if !item.IsPromotedProduct || promoterOf(order, &item) == "" {
			promoter := click.PromoterUID
			item.IsPromotedProduct = true
			item.PromoterUID = &promoter
		}
		return &item, nil
	}
	return nil, nil
}

// orderAcceptsAccrual 已结算、作废或退货退款的订单不再补计佣金
func orderAcceptsAccrual(status string) bool {
	switch status {
	case constants.OrderStatusDelivered,
		constants.OrderStatusCanceled,
		constants.OrderStatusReturned,
		constants.OrderStatusRefunded:
		return false
	default:
		return true
	}
}

// ApplyTally 累加推广者统计，由异步任务调用
func (s *TrackingService) ApplyTally(kind, promoterUID string, at time.Time) error {
	promoterUID = strings.TrimSpace(promoterUID)
	if promoterUID == "" {
		return ErrTrackingInputInvalid
	}
	if at.IsZero() {
		at = time.Now()
	}
	return s.trackingRepo.IncrementStat(promoterUID, kind, at)
}

func (s *TrackingService) tally(ctx context.Context, kind, promoterUID string) {
	now := time.Now()
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueuePromoterTally(queue.PromoterTallyPayload{
			Kind:        kind,
			PromoterUID: promoterUID,
			OccurredAt:  now.Unix(),
		})
		if err == nil {
			return
		}
		logger.Warnw("tracking_tally_enqueue_failed", "kind", kind, "promoter_uid", promoterUID, "error", err)
	}
	if err := s.ApplyTally(kind, promoterUID, now); err != nil {
		logger.Warnw("tracking_tally_apply_failed", "kind", kind, "promoter_uid", promoterUID, "error", err)
	}
}

// PromoterAnalytics 推广者数据概览，仅本人或管理员可查看
func (s *TrackingService) PromoterAnalytics(principal *Principal, promoterUID string, days int) (*PromoterAnalytics, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	promoterUID = strings.TrimSpace(promoterUID)
	if promoterUID == "" {
		return nil, ErrTrackingInputInvalid
	}
	if principal.UID != promoterUID && !principal.IsStaff() {
		return nil, ErrAnalyticsDenied
	}
	if days == 0 {
		days = defaultAnalyticsDays
	}
	if days < 0 || days > s.analyticsMaxDays {
		return nil, ErrAnalyticsDaysInvalid
	}
	since := time.Now().AddDate(0, 0, -days)

	result := &PromoterAnalytics{PromoterUID: promoterUID, PeriodDays: days}
	var err error
	if result.Metrics.Views, err = s.trackingRepo.CountViews(promoterUID, since); err != nil {
		return nil, err
	}
	if result.Metrics.Clicks, err = s.trackingRepo.CountClicks(promoterUID, since); err != nil {
		return nil, err
	}
	if result.Metrics.Conversions, err = s.trackingRepo.CountConversions(promoterUID, since); err != nil {
		return nil, err
	}
	result.Metrics.CTR = percentOf(result.Metrics.Clicks, result.Metrics.Views)
	result.Metrics.ConversionRate = percentOf(result.Metrics.Conversions, result.Metrics.Clicks)

	wallet, err := s.walletRepo.GetByUserUID(promoterUID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		result.Earnings.TotalEarned = wallet.TotalEarned
		result.Earnings.PendingCommission = wallet.PendingCommissionAmount
		result.Earnings.PendingWithdrawal = wallet.PendingWithdrawalAmount
		result.Earnings.AvailableBalance = wallet.AvailableAmount
		result.Earnings.WithdrawnTotal = wallet.WithdrawnAmount
		result.Stats.TotalSales = wallet.TotalSalesCount
		if wallet.TotalSalesCount > 0 {
			avg := wallet.TotalEarned.Decimal.Div(decimal.NewFromInt(int64(wallet.TotalSalesCount))).Round(2)
			result.Stats.AvgCommissionPerSale = avg.InexactFloat64()
		}
	}
	if result.Earnings.PendingCommissions, err = s.commissionRepo.SumAmountByUserAndStatuses(promoterUID, []string{constants.CommissionStatusPending}); err != nil {
		return nil, err
	}
	if result.Earnings.ApprovedCommissions, err = s.commissionRepo.SumAmountByUserAndStatuses(promoterUID, []string{constants.CommissionStatusApproved}); err != nil {
		return nil, err
	}
	if result.Lifetime, err = s.trackingRepo.GetStat(promoterUID); err != nil {
		return nil, err
	}
	return result, nil
}

// percentOf 百分比，保留两位小数
func percentOf(part, whole int64) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	value := (float64(part) / float64(whole)) * 100
	return math.Round(value*100) / 100
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/events"
	"github.com/buyv-ledger/internal/logger"
	"github.com/buyv-ledger/internal/metrics"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/repository"
	"github.com/buyv-ledger/internal/tracing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const orderNumberAttempts = 3

// OrderService 订单服务，负责下单计佣与订单状态驱动的佣金流转
type OrderService struct {
	orderRepo      repository.OrderRepository
	commissionRepo repository.CommissionRepository
	engine         *CommissionEngine
	ledger         *walletLedger
	sink           EventSink
}

// CreateOrderItemInput 下单商品输入
type CreateOrderItemInput struct {
	ProductID         string
	ProductName       string
	ProductImage      string
	Price             models.Money
	Quantity          int
	Size              string
	Color             string
	Attributes        map[string]interface{}
	IsPromotedProduct bool
	PromoterUID       string
}

// CreateOrderInput 下单输入
type CreateOrderInput struct {
	OrderNumber     string
	Items           []CreateOrderItemInput
	Shipping        models.Money
	Tax             models.Money
	ShippingAddress map[string]interface{}
	PaymentMethod   string
	PaymentIntentID string
	PromoterUID     string
	Notes           string
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	commissionRepo repository.CommissionRepository,
	walletRepo repository.WalletRepository,
	engine *CommissionEngine,
	sink EventSink,
) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		commissionRepo: commissionRepo,
		engine:         engine,
		ledger:         newWalletLedger(walletRepo),
		sink:           sink,
	}
}

// CreateOrder 创建订单，推广商品在同一事务内计提佣金
func (s *OrderService) CreateOrder(ctx context.Context, principal *Principal, input CreateOrderInput) (*models.Order, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	ctx, span := tracing.StartSpan(ctx, "order.create")
	defer span.End()

	order, items, err := buildOrder(principal, input)
	if err != nil {
		return nil, err
	}
	if order.OrderNumber == "" {
		if order.OrderNumber, err = s.nextOrderNumber(); err != nil {
			return nil, err
		}
	}

	rates, err := s.engine.ResolveRates(ctx, order, items)
	if err != nil {
		if errors.Is(err, ErrCommissionRateUnavailable) {
			metrics.CommissionRateErrorsTotal.Inc()
		}
		return nil, err
	}

	var accrued []models.Commission
	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.WithTx(tx).Create(order, items); err != nil {
			return err
		}
		for i := range items {
			item := &items[i]
			commission, created, err := s.engine.AccrueTx(tx, order, item, rates[strings.TrimSpace(item.ProductID)])
			if err != nil {
				return err
			}
			if created {
				accrued = append(accrued, *commission)
			}
		}
		return nil
	})
	if err != nil {
		logger.Warnw("order_create_failed", "user_id", principal.ID, "order_number", order.OrderNumber, "error", err)
		return nil, err
	}

	metrics.OrdersCreatedTotal.Inc()
	evs := []events.Event{orderCreatedEvent(order)}
	for i := range accrued {
		metrics.CommissionsAccruedTotal.Inc()
		metrics.AddAmount(metrics.CommissionAmountTotal, constants.CommissionStatusPending, accrued[i].CommissionAmount.InexactFloat64())
		evs = append(evs, commissionCreatedEvent(&accrued[i]))
	}
	emitEvents(ctx, s.sink, evs...)
	logger.Infow("order_created",
		"order_id", order.ID,
		"order_number", order.OrderNumber,
		"user_id", order.UserID,
		"total", order.Total.String(),
		"commissions", len(accrued),
	)

	full, err := s.orderRepo.GetByID(order.ID)
	if err == nil && full != nil {
		return full, nil
	}
	return order, nil
}

// UpdateOrderStatus 管理员设置订单状态（任意已知状态间可互转），仅 delivered 结算、canceled 作废待结算佣金
func (s *OrderService) UpdateOrderStatus(ctx context.Context, principal *Principal, orderID uint, status string) (*models.Order, error) {
	if err := requireSupport(principal); err != nil {
		return nil, err
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !isKnownOrderStatus(status) {
		return nil, ErrOrderStatusUnknown
	}
	ctx, span := tracing.StartSpan(ctx, "order.update_status")
	defer span.End()
	return s.transition(ctx, principal, orderID, status, func(order *models.Order) error {
		return nil
	})
}

// CancelOrder 买家取消订单，仅 pending/processing 可取消
func (s *OrderService) CancelOrder(ctx context.Context, principal *Principal, orderID uint) (*models.Order, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	return s.transition(ctx, principal, orderID, constants.OrderStatusCanceled, func(order *models.Order) error {
		if order.UserID != principal.ID {
			return ErrOrderNotFound
		}
		switch order.Status {
		case constants.OrderStatusPending, constants.OrderStatusProcessing:
			return nil
		default:
			return ErrOrderStatusInvalid
		}
	})
}

func (s *OrderService) transition(ctx context.Context, principal *Principal, orderID uint, status string, guard func(order *models.Order) error) (*models.Order, error) {
	var (
		fromStatus string
		changed    []commissionChange
	)
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if err := guard(order); err != nil {
			return err
		}
		fromStatus = order.Status
		if fromStatus != status {
			if err := orderRepo.UpdateStatus(order.ID, status, map[string]interface{}{"updated_at": time.Now()}); err != nil {
				return err
			}
		}
		changed, err = s.applyLifecycleTx(tx, order.ID, status)
		return err
	})
	if err != nil {
		return nil, err
	}

	evs := make([]events.Event, 0, len(changed)+1)
	if fromStatus != status {
		metrics.OrderStatusChangesTotal.WithLabelValues(status).Inc()
		evs = append(evs, events.New(constants.LedgerEventOrderStatusChanged, fmt.Sprintf("order-%d", orderID), map[string]interface{}{
			"order_id": orderID,
			"from":     fromStatus,
			"to":       status,
			"actor":    principal.Actor(),
		}))
		logger.Infow("order_status_changed",
			"order_id", orderID,
			"from", fromStatus,
			"to", status,
			"actor", principal.Actor(),
			"commissions", len(changed),
		)
	}
	for i := range changed {
		c := &changed[i]
		metrics.CommissionTransitionsTotal.WithLabelValues(c.from, c.commission.Status).Inc()
		metrics.AddAmount(metrics.CommissionAmountTotal, c.commission.Status, c.commission.CommissionAmount.InexactFloat64())
		evs = append(evs, commissionStatusEvent(&c.commission, c.from))
	}
	emitEvents(ctx, s.sink, evs...)

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

type commissionChange struct {
	commission models.Commission
	from       string
}

// applyLifecycleTx 订单状态对佣金的影响，只处理仍为 pending 的佣金
func (s *OrderService) applyLifecycleTx(tx *gorm.DB, orderID uint, status string) ([]commissionChange, error) {
	var (
		target  string
		move    walletMove
		txnType string
		remark  string
	)
	switch status {
	case constants.OrderStatusDelivered:
		target, move, txnType, remark = constants.CommissionStatusPaid, moveSettle, constants.WalletTxnTypeCommissionSettle, "订单送达，佣金结算"
	case constants.OrderStatusCanceled:
		target, move, txnType, remark = constants.CommissionStatusCanceled, moveVoid, constants.WalletTxnTypeCommissionCancel, "订单取消，佣金作废"
	default:
		return nil, nil
	}

	commissionRepo := s.commissionRepo.WithTx(tx)
	pending, err := commissionRepo.ListByOrderForUpdate(orderID, constants.CommissionStatusPending)
	if err != nil {
		return nil, err
	}
	// 按推广者排序加锁钱包，避免多推广者订单之间互相等待
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].UserUID != pending[j].UserUID {
			return pending[i].UserUID < pending[j].UserUID
		}
		return pending[i].ID < pending[j].ID
	})

	now := time.Now()
	changes := make([]commissionChange, 0, len(pending))
	for i := range pending {
		commission := pending[i]
		updates := map[string]interface{}{"updated_at": now}
		if target == constants.CommissionStatusPaid {
			updates["paid_at"] = now
			commission.PaidAt = &now
		}
		if err := commissionRepo.UpdateStatus(commission.ID, target, updates); err != nil {
			return nil, err
		}
		if _, err := s.ledger.applyCommission(tx, &commission, move, txnType, remark); err != nil {
			return nil, err
		}
		commission.Status = target
		changes = append(changes, commissionChange{commission: commission, from: constants.CommissionStatusPending})
	}
	return changes, nil
}

// UpdateTracking 更新物流信息，不影响佣金
func (s *OrderService) UpdateTracking(principal *Principal, orderID uint, trackingNumber string, estimatedDelivery *time.Time) (*models.Order, error) {
	if err := requireSupport(principal); err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	updates := map[string]interface{}{
		"tracking_number": strings.TrimSpace(trackingNumber),
		"updated_at":      time.Now(),
	}
	if estimatedDelivery != nil {
		updates["estimated_delivery"] = *estimatedDelivery
	}
	if err := s.orderRepo.UpdateFields(orderID, updates); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(orderID)
}

// GetOrder 获取订单详情，非管理员只能查看自己的订单
func (s *OrderService) GetOrder(principal *Principal, orderID uint) (*models.Order, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, err
	}
	var (
		order *models.Order
		err   error
	)
	if principal.IsStaff() {
		order, err = s.orderRepo.GetByID(orderID)
	} else {
		order, err = s.orderRepo.GetByIDAndUser(orderID, principal.ID)
	}
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListMyOrders 当前用户订单列表
func (s *OrderService) ListMyOrders(principal *Principal, status string, page, pageSize int) ([]models.Order, int64, error) {
	if err := requirePrincipal(principal); err != nil {
		return nil, 0, err
	}
	return s.orderRepo.ListByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   principal.ID,
		Status:   status,
	})
}

// ListOrdersAdmin 管理端订单列表
func (s *OrderService) ListOrdersAdmin(principal *Principal, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if err := requireStaff(principal); err != nil {
		return nil, 0, err
	}
	return s.orderRepo.ListAdmin(filter)
}

func buildOrder(principal *Principal, input CreateOrderInput) (*models.Order, []models.OrderItem, error) {
	if len(input.Items) == 0 {
		return nil, nil, ErrOrderItemsEmpty
	}
	if input.Shipping.Decimal.IsNegative() || input.Tax.Decimal.IsNegative() {
		return nil, nil, ErrOrderItemInvalid
	}
	orderPromoter := strings.TrimSpace(input.PromoterUID)

	subtotal := decimal.Zero
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, raw := range input.Items {
		productID := strings.TrimSpace(raw.ProductID)
		if productID == "" || raw.Quantity < 1 || raw.Price.Decimal.IsNegative() {
			return nil, nil, ErrOrderItemInvalid
		}
		item := models.OrderItem{
			ProductID:         productID,
			ProductName:       strings.TrimSpace(raw.ProductName),
			ProductImage:      strings.TrimSpace(raw.ProductImage),
			Price:             models.NewMoneyFromDecimal(raw.Price.Decimal),
			Quantity:          raw.Quantity,
			Size:              strings.TrimSpace(raw.Size),
			Color:             strings.TrimSpace(raw.Color),
			IsPromotedProduct: raw.IsPromotedProduct,
		}
		if len(raw.Attributes) > 0 {
			attrs, err := json.Marshal(raw.Attributes)
			if err != nil {
				return nil, nil, ErrOrderItemInvalid
			}
			item.Attributes = string(attrs)
		}
		if raw.IsPromotedProduct {
			promoter := strings.TrimSpace(raw.PromoterUID)
			if promoter == "" {
				promoter = orderPromoter
			}
			if promoter == "" {
				return nil, nil, ErrPromoterRequired
			}
			item.PromoterUID = &promoter
		}
		subtotal = subtotal.Add(item.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
		items = append(items, item)
	}

	order := &models.Order{
		OrderNumber:     strings.TrimSpace(input.OrderNumber),
		UserID:          principal.ID,
		Status:          constants.OrderStatusPending,
		Subtotal:        models.NewMoneyFromDecimal(subtotal),
		Shipping:        models.NewMoneyFromDecimal(input.Shipping.Decimal),
		Tax:             models.NewMoneyFromDecimal(input.Tax.Decimal),
		Total:           models.NewMoneyFromDecimal(subtotal.Add(input.Shipping.Decimal).Add(input.Tax.Decimal)),
		PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
		PaymentIntentID: strings.TrimSpace(input.PaymentIntentID),
		Notes:           strings.TrimSpace(input.Notes),
	}
	if orderPromoter != "" {
		order.PromoterUID = &orderPromoter
	}
	if len(input.ShippingAddress) > 0 {
		address, err := json.Marshal(input.ShippingAddress)
		if err != nil {
			return nil, nil, ErrOrderItemInvalid
		}
		order.ShippingAddress = string(address)
	}
	return order, items, nil
}

func (s *OrderService) nextOrderNumber() (string, error) {
	for i := 0; i < orderNumberAttempts; i++ {
		candidate := generateOrderNumber()
		exists, err := s.orderRepo.ExistsByOrderNumber(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("generate order number: %d attempts collided", orderNumberAttempts)
}

func generateOrderNumber() string {
	return fmt.Sprintf("ORD%d%s", time.Now().UnixMilli(), randNumeric(4))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}

func isKnownOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPending,
		constants.OrderStatusConfirmed,
		constants.OrderStatusProcessing,
		constants.OrderStatusShipped,
		constants.OrderStatusOutForDelivery,
		constants.OrderStatusDelivered,
		constants.OrderStatusCanceled,
		constants.OrderStatusReturned,
		constants.OrderStatusRefunded:
		return true
	default:
		return false
	}
}

func orderCreatedEvent(order *models.Order) events.Event {
	return events.New(constants.LedgerEventOrderCreated, fmt.Sprintf("order-%d", order.ID), map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"user_id":      order.UserID,
		"total":        order.Total.String(),
		"items":        len(order.Items),
	})
}

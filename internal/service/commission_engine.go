package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/events"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionEngine 推广商品下单时计算佣金并计入推广者钱包
type CommissionEngine struct {
	commissionRepo repository.CommissionRepository
	userRepo       repository.UserRepository
	rates          *CommissionRateResolver
	ledger         *walletLedger
}

// NewCommissionEngine 创建佣金引擎
func NewCommissionEngine(
	commissionRepo repository.CommissionRepository,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	rates *CommissionRateResolver,
) *CommissionEngine {
	return &CommissionEngine{
		commissionRepo: commissionRepo,
		userRepo:       userRepo,
		rates:          rates,
		ledger:         newWalletLedger(walletRepo),
	}
}

// commissionMetadata 佣金关联的订单快照
type commissionMetadata struct {
	OrderID     uint   `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
	OrderItemID uint   `json:"orderItemId"`
}

// promoterOf 返回订单项应计佣金的推广者，未标记推广时返回空
func promoterOf(order *models.Order, item *models.OrderItem) string {
	if item == nil || !item.IsPromotedProduct {
		return ""
	}
	if item.PromoterUID != nil {
		if uid := strings.TrimSpace(*item.PromoterUID); uid != "" {
			return uid
		}
	}
	if order != nil && order.PromoterUID != nil {
		return strings.TrimSpace(*order.PromoterUID)
	}
	return ""
}

// ResolveRates 在事务外预先解析推广商品的佣金比例
func (e *CommissionEngine) ResolveRates(ctx context.Context, order *models.Order, items []models.OrderItem) (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	for i := range items {
		if promoterOf(order, &items[i]) == "" {
			continue
		}
		productID := strings.TrimSpace(items[i].ProductID)
		if _, ok := rates[productID]; ok {
			continue
		}
		rate, err := e.rates.Resolve(ctx, productID)
		if err != nil {
			return nil, err
		}
		rates[productID] = rate
	}
	return rates, nil
}

// AccrueTx 为一个推广订单项创建待结算佣金，订单项已有佣金时直接返回已有记录
func (e *CommissionEngine) AccrueTx(tx *gorm.DB, order *models.Order, item *models.OrderItem, rate decimal.Decimal) (*models.Commission, bool, error) {
	promoterUID := promoterOf(order, item)
	if promoterUID == "" {
		return nil, false, nil
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return nil, false, ErrCommissionRateUnavailable
	}
	commissionRepo := e.commissionRepo.WithTx(tx)
	existing, err := commissionRepo.GetByOrderItemID(item.ID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	var userID *uint
	if e.userRepo != nil {
		user, err := e.userRepo.WithTx(tx).GetByUID(promoterUID)
		if err != nil {
			return nil, false, err
		}
		if user != nil {
			id := user.ID
			userID = &id
		}
	}

	meta, err := json.Marshal(commissionMetadata{
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OrderItemID: item.ID,
	})
	if err != nil {
		return nil, false, err
	}

	amount := item.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))).Mul(rate).Round(2)
	commission := &models.Commission{
		UserID:           userID,
		UserUID:          promoterUID,
		OrderID:          order.ID,
		OrderItemID:      item.ID,
		ProductID:        item.ProductID,
		ProductName:      item.ProductName,
		ProductPrice:     item.Price,
		Quantity:         item.Quantity,
		CommissionRate:   rate,
		CommissionAmount: models.NewMoneyFromDecimal(amount),
		Status:           constants.CommissionStatusPending,
		MetadataJSON:     string(meta),
	}
	if err := commissionRepo.Create(commission); err != nil {
		return nil, false, err
	}
	if _, err := e.ledger.applyCommission(tx, commission, moveAccrue, constants.WalletTxnTypeCommissionPending, "推广佣金待结算"); err != nil {
		return nil, false, err
	}
	return commission, true, nil
}

func commissionCreatedEvent(c *models.Commission) events.Event {
	return events.New(constants.LedgerEventCommissionCreated, c.UserUID, map[string]interface{}{
		"commission_id":     c.ID,
		"order_id":          c.OrderID,
		"order_item_id":     c.OrderItemID,
		"product_id":        c.ProductID,
		"commission_rate":   c.CommissionRate.String(),
		"commission_amount": c.CommissionAmount.String(),
		"status":            c.Status,
	})
}

func commissionStatusEvent(c *models.Commission, from string) events.Event {
	return events.New(constants.LedgerEventCommissionStatusChanged, c.UserUID, map[string]interface{}{
		"commission_id":     c.ID,
		"order_id":          c.OrderID,
		"from":              from,
		"to":                c.Status,
		"commission_amount": c.CommissionAmount.String(),
	})
}

package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/buyv-ledger/internal/config"
	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/events"
	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	testBuyerUID    = "buyer-0001"
	testPromoterUID = "promoter-0001"
	testAdminUID    = "admin-0001"
)

var (
	testBuyer    = &Principal{ID: 1, UID: testBuyerUID, Role: constants.RoleUser}
	testPromoter = &Principal{ID: 2, UID: testPromoterUID, Role: constants.RolePromoter}
	testAdmin    = &Principal{ID: 3, UID: testAdminUID, Role: constants.RoleAdmin}
)

type recordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (s *recordingSink) Emit(_ context.Context, event events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		result = append(result, ev.Type)
	}
	return result
}

func (s *recordingSink) count(eventType string) int {
	n := 0
	for _, t := range s.types() {
		if t == eventType {
			n++
		}
	}
	return n
}

type ledgerHarness struct {
	db          *gorm.DB
	sink        *recordingSink
	walletRepo  *repository.GormWalletRepository
	orders      *OrderService
	commissions *CommissionService
	withdrawals *WithdrawalService
	wallets     *WalletService
	tracking    *TrackingService
	reconcile   *ReconcileService
	products    *ProductService
	auth        *AuthService
}

func setupLedgerServiceTest(t *testing.T, defaultRatePercent float64) *ledgerHarness {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.LedgerModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	for _, p := range []*Principal{testBuyer, testPromoter, testAdmin} {
		user := models.User{
			ID:     p.ID,
			UID:    p.UID,
			Email:  p.UID + "@example.com",
			Role:   p.Role,
			Status: constants.UserStatusActive,
		}
		if err := db.Create(&user).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}

	orderRepo := repository.NewOrderRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	productRepo := repository.NewProductRepository(db)
	userRepo := repository.NewUserRepository(db)
	trackingRepo := repository.NewTrackingRepository(db)

	sink := &recordingSink{}
	rates := NewCommissionRateResolver(productRepo, config.CommissionConfig{DefaultRatePercent: defaultRatePercent})
	engine := NewCommissionEngine(commissionRepo, userRepo, walletRepo, rates)

	return &ledgerHarness{
		db:          db,
		sink:        sink,
		walletRepo:  walletRepo,
		orders:      NewOrderService(orderRepo, commissionRepo, walletRepo, engine, sink),
		commissions: NewCommissionService(commissionRepo, walletRepo, sink),
		withdrawals: NewWithdrawalService(withdrawalRepo, walletRepo, config.WithdrawalConfig{}, sink),
		wallets:     NewWalletService(walletRepo),
		tracking:    NewTrackingService(trackingRepo, orderRepo, commissionRepo, walletRepo, engine, nil, config.TrackingConfig{}, sink),
		reconcile:   NewReconcileService(walletRepo, commissionRepo, withdrawalRepo),
		products:    NewProductService(productRepo, rates),
		auth:        NewAuthService(config.JWTConfig{SecretKey: "test-secret", ExpireHours: 1}, userRepo),
	}
}

func money(raw string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(raw))
}

func (h *ledgerHarness) createProduct(t *testing.T, id, ratePercent string) {
	t.Helper()
	product := models.MarketplaceProduct{
		ID:             id,
		Name:           "product " + id,
		Price:          money("100"),
		CommissionRate: money(ratePercent),
		Status:         constants.ProductStatusActive,
	}
	if err := h.db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
}

// promotedOrder 创建一单推广订单：单个推广商品，按 price 计佣
func (h *ledgerHarness) promotedOrder(t *testing.T, productID, price string, qty int) *models.Order {
	t.Helper()
	order, err := h.orders.CreateOrder(context.Background(), testBuyer, CreateOrderInput{
		Items: []CreateOrderItemInput{{
			ProductID:         productID,
			ProductName:       "promoted",
			Price:             money(price),
			Quantity:          qty,
			IsPromotedProduct: true,
			PromoterUID:       testPromoterUID,
		}},
		PaymentMethod: "card",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

// earn 通过下单并送达为推广者积累可提现余额
func (h *ledgerHarness) earn(t *testing.T, productID, price string) {
	t.Helper()
	order := h.promotedOrder(t, productID, price, 1)
	if _, err := h.orders.UpdateOrderStatus(context.Background(), testAdmin, order.ID, constants.OrderStatusDelivered); err != nil {
		t.Fatalf("deliver order failed: %v", err)
	}
}

func (h *ledgerHarness) wallet(t *testing.T, uid string) *models.PromoterWallet {
	t.Helper()
	wallet, err := h.walletRepo.GetByUserUID(uid)
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	if wallet == nil {
		t.Fatalf("wallet %s not found", uid)
	}
	return wallet
}

func (h *ledgerHarness) assertBalanced(t *testing.T, uid string) {
	t.Helper()
	report, err := h.reconcile.ReconcileWallet(testAdmin, uid)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if !report.Balanced {
		t.Fatalf("wallet %s not balanced: %+v", uid, report.Mismatches)
	}
}

func assertMoney(t *testing.T, label string, got models.Money, want string) {
	t.Helper()
	if got.String() != want {
		t.Fatalf("%s: want %s got %s", label, want, got.String())
	}
}

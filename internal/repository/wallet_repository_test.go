package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupLedgerRepositoryTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(models.LedgerModels()...); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func money(raw string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(raw))
}

func TestWalletRepositoryGetByUserUIDMissing(t *testing.T) {
	db := setupLedgerRepositoryTest(t)
	repo := NewWalletRepository(db)

	wallet, err := repo.GetByUserUID("missing")
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	if wallet != nil {
		t.Fatalf("expected nil wallet, got %+v", wallet)
	}
	wallet, err = repo.GetByUserUID("  ")
	if err != nil || wallet != nil {
		t.Fatalf("blank uid should return nil, nil; got %+v %v", wallet, err)
	}
}

func TestWalletRepositoryTransactionReferenceUnique(t *testing.T) {
	db := setupLedgerRepositoryTest(t)
	repo := NewWalletRepository(db)

	wallet := &models.PromoterWallet{UserUID: "promoter-1", AvailableAmount: money("10.00")}
	if err := repo.Create(wallet); err != nil {
		t.Fatalf("create wallet failed: %v", err)
	}
	txn := &models.WalletTransaction{
		WalletID:  wallet.ID,
		UserUID:   wallet.UserUID,
		Type:      constants.WalletTxnTypeCommissionPending,
		Direction: constants.WalletTxnDirectionIn,
		Amount:    money("10.00"),
		Reference: "commission:1:pending",
	}
	if err := repo.CreateTransaction(txn); err != nil {
		t.Fatalf("create txn failed: %v", err)
	}
	dup := *txn
	dup.ID = 0
	if err := repo.CreateTransaction(&dup); err == nil {
		t.Fatalf("duplicate reference should fail")
	}

	found, err := repo.GetTransactionByReference("commission:1:pending")
	if err != nil {
		t.Fatalf("get by reference failed: %v", err)
	}
	if found == nil || found.ID != txn.ID {
		t.Fatalf("unexpected txn: %+v", found)
	}

	rows, total, err := repo.ListTransactions(WalletTransactionListFilter{UserUID: "promoter-1", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list txns failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("expected 1 txn, got total=%d len=%d", total, len(rows))
	}
}

func TestCommissionRepositorySumAndOrderNumberFilter(t *testing.T) {
	db := setupLedgerRepositoryTest(t)
	repo := NewCommissionRepository(db)

	rows := []models.Commission{
		{UserUID: "p1", OrderID: 1, OrderItemID: 1, CommissionAmount: money("1.50"), Status: constants.CommissionStatusPending, MetadataJSON: `{"orderNumber":"ORD-1"}`},
		{UserUID: "p1", OrderID: 1, OrderItemID: 2, CommissionAmount: money("2.25"), Status: constants.CommissionStatusPending, MetadataJSON: `{"orderNumber":"ORD-1"}`},
		{UserUID: "p1", OrderID: 2, OrderItemID: 3, CommissionAmount: money("4.00"), Status: constants.CommissionStatusPaid, MetadataJSON: `{"orderNumber":"ORD-2"}`},
		{UserUID: "p2", OrderID: 3, OrderItemID: 4, CommissionAmount: money("9.00"), Status: constants.CommissionStatusPending, MetadataJSON: `{"orderNumber":"ORD-3"}`},
	}
	for i := range rows {
		if err := repo.Create(&rows[i]); err != nil {
			t.Fatalf("create commission %d failed: %v", i, err)
		}
	}

	sum, err := repo.SumAmountByUserAndStatuses("p1", []string{constants.CommissionStatusPending})
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !sum.Decimal.Equal(decimal.RequireFromString("3.75")) {
		t.Fatalf("pending sum want 3.75 got %s", sum.String())
	}

	empty, err := repo.SumAmountByUserAndStatuses("nobody", []string{constants.CommissionStatusPending})
	if err != nil {
		t.Fatalf("empty sum failed: %v", err)
	}
	if !empty.Decimal.IsZero() {
		t.Fatalf("empty sum want 0 got %s", empty.String())
	}

	list, total, err := repo.List(CommissionListFilter{OrderNumber: "ORD-1", Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list by order number failed: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 commissions for ORD-1, got total=%d len=%d", total, len(list))
	}

	dup := models.Commission{UserUID: "p1", OrderID: 1, OrderItemID: 1, CommissionAmount: money("1.00")}
	if err := repo.Create(&dup); err == nil {
		t.Fatalf("duplicate order_item_id should fail")
	}
}

func TestTrackingRepositoryIncrementStat(t *testing.T) {
	db := setupLedgerRepositoryTest(t)
	repo := NewTrackingRepository(db)
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		if err := repo.IncrementStat("p1", constants.TallyKindView, now); err != nil {
			t.Fatalf("increment view failed: %v", err)
		}
	}
	if err := repo.IncrementStat("p1", constants.TallyKindClick, now); err != nil {
		t.Fatalf("increment click failed: %v", err)
	}
	if err := repo.IncrementStat("p1", "bogus", now); err == nil {
		t.Fatalf("unknown kind should fail")
	}

	stat, err := repo.GetStat("p1")
	if err != nil {
		t.Fatalf("get stat failed: %v", err)
	}
	if stat == nil || stat.ViewCount != 3 || stat.ClickCount != 1 || stat.ConversionCount != 0 {
		t.Fatalf("unexpected stat: %+v", stat)
	}
}

func TestWithdrawalRepositoryHasStatusByUser(t *testing.T) {
	db := setupLedgerRepositoryTest(t)
	repo := NewWithdrawalRepository(db)

	req := &models.WithdrawalRequest{
		WalletID:       1,
		UserUID:        "p1",
		Amount:         money("60.00"),
		PaymentMethod:  constants.WithdrawalMethodPaypal,
		PaymentDetails: `{"email":"p1@example.com"}`,
		Status:         constants.WithdrawalStatusPending,
	}
	if err := repo.Create(req); err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	has, err := repo.HasStatusByUser("p1", constants.WithdrawalStatusPending)
	if err != nil || !has {
		t.Fatalf("expected pending request, got %v %v", has, err)
	}
	has, err = repo.HasStatusByUser("p2", constants.WithdrawalStatusPending)
	if err != nil || has {
		t.Fatalf("expected none for p2, got %v %v", has, err)
	}

	sum, err := repo.SumAmountByUserAndStatuses("p1", []string{constants.WithdrawalStatusPending, constants.WithdrawalStatusApproved})
	if err != nil {
		t.Fatalf("sum failed: %v", err)
	}
	if !sum.Decimal.Equal(decimal.RequireFromString("60")) {
		t.Fatalf("sum want 60 got %s", sum.String())
	}
}

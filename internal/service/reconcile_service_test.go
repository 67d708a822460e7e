package service

import (
	"context"
	"errors"
	"testing"

	"github.com/buyv-ledger/internal/constants"
	"github.com/buyv-ledger/internal/models"
)

func TestReconcileBalancedAfterMixedOperations(t *testing.T) {
	h := setupLedgerServiceTest(t, 0)
	h.createProduct(t, "prod-1", "10")
	ctx := context.Background()

	h.earn(t, "prod-1", "1500")
	pending := h.promotedOrder(t, "prod-1", "300", 1)
	canceled := h.promotedOrder(t, "prod-1", "100", 2)
	if _, err := h.orders.CancelOrder(ctx, testBuyer, canceled.ID); err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	req, err := h.withdrawals.Create(ctx, testPromoter, paypalWithdrawal("80"))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	if _, err := h.withdrawals.Approve(ctx, testAdmin, req.ID, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	report, err := h.reconcile.ReconcileWallet(testAdmin, testPromoterUID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if !report.Balanced || len(report.Mismatches) != 0 {
		t.Fatalf("expected balanced wallet: %+v", report)
	}
	wallet := h.wallet(t, testPromoterUID)
	assertMoney(t, "pending commission", wallet.PendingCommissionAmount, "30.00")
	assertMoney(t, "pending withdrawal", wallet.PendingWithdrawalAmount, "80.00")
	assertMoney(t, "available", wallet.AvailableAmount, "70.00")
	if pending.Commissions[0].Status != constants.CommissionStatusPending {
		t.Fatalf("open order commission should stay pending")
	}
}

func TestReconcileDetectsDrift(t *testing.T) {
	h := setupLedgerServiceTest(t, 0)
	h.createProduct(t, "prod-1", "10")
	h.promotedOrder(t, "prod-1", "100", 1)

	if err := h.db.Model(&models.PromoterWallet{}).
		Where("user_uid = ?", testPromoterUID).
		Update("pending_commission_amount", "99.00").Error; err != nil {
		t.Fatalf("corrupt wallet failed: %v", err)
	}

	report, err := h.reconcile.ReconcileWallet(testAdmin, testPromoterUID)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if report.Balanced || len(report.Mismatches) != 1 {
		t.Fatalf("expected one mismatch: %+v", report)
	}
	diff := report.Mismatches[0]
	if diff.Bucket != BucketPendingCommission {
		t.Fatalf("unexpected bucket %s", diff.Bucket)
	}
	assertMoney(t, "wallet side", diff.Wallet, "99.00")
	assertMoney(t, "expected side", diff.Expected, "10.00")

	summary, err := h.reconcile.ReconcileAll(context.Background())
	if err != nil {
		t.Fatalf("reconcile all failed: %v", err)
	}
	if summary.Checked != 1 || summary.Mismatched != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// 对账只读，不修正钱包
	wallet := h.wallet(t, testPromoterUID)
	assertMoney(t, "untouched", wallet.PendingCommissionAmount, "99.00")
}

func TestReconcileRequiresAdmin(t *testing.T) {
	h := setupLedgerServiceTest(t, 0)
	if _, err := h.reconcile.ReconcileWallet(testPromoter, testPromoterUID); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("want ErrAdminRequired got %v", err)
	}
	if _, err := h.reconcile.ReconcileWallet(testAdmin, "nobody"); !errors.Is(err, ErrWalletNotFound) {
		t.Fatalf("want ErrWalletNotFound got %v", err)
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/buyv-ledger/internal/constants"
)

func paypalWithdrawal(amount string) CreateWithdrawalInput {
	return CreateWithdrawalInput{
		Amount:         money(amount),
		PaymentMethod:  constants.WithdrawalMethodPaypal,
		PaymentDetails: map[string]string{"email": "promoter@example.com"},
	}
}

func TestWithdrawalRoundTrip(t *testing.T) {
	h := setupLedgerServiceTest(t, 0)
	h.createProduct(t, "prod-1", "10")
	h.earn(t, "prod-1", "2000")
	ctx := context.Background()

	req, err := h.withdrawals.Create(ctx, testPromoter, paypalWithdrawal("150"))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	if req.Status != constants.WithdrawalStatusPending || req.WeekStartDate == nil || req.WeekEndDate == nil {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.WeekStartDate.Weekday() != time.Monday {
		t.Fatalf("week start should be monday, got %s", req.WeekStartDate.Weekday())
	}
	wallet := h.wallet(t, testPromoterUID)
	assertMoney(t, "available after hold", wallet.AvailableAmount, "50.00")
	assertMoney(t, "pending withdrawal after hold", wallet.PendingWithdrawalAmount, "150.00")
	h.assertBalanced(t, testPromoterUID)

	approved, err := h.withdrawals.Approve(ctx, testAdmin, req.ID, "checked")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.ProcessedBy != testAdminUID || approved.ProcessedAt == nil {
		t.Fatalf("processed fields missing: %+v", approved)
	}
	h.assertBalanced(t, testPromoterUID)

	completed, err := h.withdrawals.Complete(ctx, testAdmin, req.ID, "PAYPAL-TX-1", "")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != constants.WithdrawalStatusCompleted || completed.TransactionID != "PAYPAL-TX-1" {
		t.Fatalf("unexpected completed request: %+v", completed)
	}
	wallet = h.wallet(t, testPromoterUID)
	assertMoney(t, "available", wallet.AvailableAmount, "50.00")
	assertMoney(t, "pending withdrawal", wallet.PendingWithdrawalAmount, "0.00")
	assertMoney(t, "withdrawn", wallet.WithdrawnAmount, "150.00")
	h.assertBalanced(t, testPromoterUID)

	if _, err := h.withdrawals.Reject(ctx, testAdmin, req.ID, "changed my mind about it"); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("reject after complete want invalid transition got %v", err)
	}
	if _, err := h.withdrawals.Complete(ctx, testAdmin, req.ID, "PAYPAL-TX-2", ""); !errors.Is(err, ErrWithdrawalStatusInvalid) {
		t.Fatalf("second complete want invalid transition got %v", err)
	}
	wallet = h.wallet(t, testPromoterUID)
	assertMoney(t, "withdrawn after retries", wallet.WithdrawnAmount, "150.00")
}

func TestWithdrawalRejectReleasesFunds(t *testing.T) {
	h := setupLedgerServiceTest(t, 0)
	h.createProduct(t, "prod-1", "10")
	h.earn(t, "prod-1", "1000")
	ctx := context.Background()

	req, err := h.withdrawals.Create(ctx, testPromoter, paypalWithdrawal("100"))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	if _, err := h.withdrawals.Reject(ctx, testAdmin, req.ID, "too short"); !errors.Is(err, ErrRejectReasonInvalid) {
		t.Fatalf("short reason want ErrRejectReasonInvalid got %v", err)
	}
	rejected, err := h.withdrawals.Reject(ctx, testAdmin, req.ID, "payout account could not be verified")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.WithdrawalStatusRejected || rejected.RejectionReason == "" {
		t.Fatalf("unexpected rejected request: %+v", rejected)
	}
	wallet := h.wallet(t, testPromoterUID)
	assertMoney(t, "available", wallet.AvailableAmount, "100.00")
	assertMoney(t, "pending withdrawal", wallet.PendingWithdrawalAmount, "0.00")
	h.assertBalanced(t, testPromoterUID)

	if _, err := h.withdrawals.Complete(ctx, testAdmin, req.ID, "TX-12345", ""); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("complete rejected want invalid transition got %v", err)
	}
	if _, err := h.withdrawals.Approve(ctx, testAdmin, req.ID, ""); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("approve rejected want invalid transition got %v", err)
	}
}

func TestWithdrawalCompleteFromPending(t *testing.T) {
	h := setupLedgerServiceTest(t, 0)
	h.createProduct(t, "prod-1", "10")
	h.earn(t, "prod-1", "1000")
	ctx := context.Background()

	req, err := h.withdrawals.Create(ctx, testPromoter, paypalWithdrawal("60"))
	if err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	if _, err := h.withdrawals.Complete(ctx, testAdmin, req.ID, "TX1", ""); !errors.Is(err, ErrTransactionIDInvalid) {
		t.Fatalf("short transaction id want ErrTransactionIDInvalid got %v", err)
	}
	if _, err := h.withdrawals.Complete(ctx, testAdmin, req.ID, "TX-00001", "wire sent"); err != nil {
		t.Fatalf("complete from pending failed: %v", err)
	}
	wallet := h.wallet(t, testPromoterUID)
	assertMoney(t, "available", wallet.AvailableAmount, "40.00")
	assertMoney(t, "withdrawn", wallet.WithdrawnAmount, "60.00")
	h.assertBalanced(t, testPromoterUID)
}

func TestWithdrawalCreateGuards(t *testing.T) {
	h := setupLedgerServiceTest(t, 0)
	h.createProduct(t, "prod-1", "10")
	h.earn(t, "prod-1", "1000")
	ctx := context.Background()

	if _, err := h.withdrawals.Create(ctx, testPromoter, paypalWithdrawal("49.99")); !errors.Is(err, ErrWithdrawAmountInvalid) {
		t.Fatalf("below minimum want ErrWithdrawAmountInvalid got %v", err)
	}
	if _, err := h.withdrawals.Create(ctx, testPromoter, paypalWithdrawal("10000.01")); !errors.Is(err, ErrValidation) {
		t.Fatalf("above maximum want validation got %v", err)
	}
	bad := paypalWithdrawal("60")
	bad.PaymentDetails = map[string]string{"email": "not-an-email"}
	if _, err := h.withdrawals.Create(ctx, testPromoter, bad); !errors.Is(err, ErrWithdrawDetailsInvalid) {
		t.Fatalf("bad paypal email want ErrWithdrawDetailsInvalid got %v", err)
	}
	bank := CreateWithdrawalInput{
		Amount:        money("60"),
		PaymentMethod: constants.WithdrawalMethodBankTransfer,
		PaymentDetails: map[string]string{
			"account_holder_name": "Promoter",
			"bank_name":           "Bank",
			"account_number":      "123",
		},
	}
	if _, err := h.withdrawals.Create(ctx, testPromoter, bank); !errors.Is(err, ErrWithdrawDetailsInvalid) {
		t.Fatalf("missing routing number want ErrWithdrawDetailsInvalid got %v", err)
	}
	unknown := paypalWithdrawal("60")
	unknown.PaymentMethod = "crypto"
	if _, err := h.withdrawals.Create(ctx, testPromoter, unknown); !errors.Is(err, ErrWithdrawMethodInvalid) {
		t.Fatalf("unknown method want ErrWithdrawMethodInvalid got %v", err)
	}

	if _, err := h.withdrawals.Create(ctx, testPromoter, paypalWithdrawal("150")); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("over available want ErrInsufficientBalance got %v", err)
	}
	wallet := h.wallet(t, testPromoterUID)
	assertMoney(t, "available untouched", wallet.AvailableAmount, "100.00")
	assertMoney(t, "pending withdrawal untouched", wallet.PendingWithdrawalAmount, "0.00")

	bank.PaymentDetails["routing_number"] = "021000021"
	first, err := h.withdrawals.Create(ctx, testPromoter, bank)
	if err != nil {
		t.Fatalf("bank withdrawal failed: %v", err)
	}
	if !strings.Contains(first.PaymentDetails, "routing_number") {
		t.Fatalf("payment details not stored: %s", first.PaymentDetails)
	}
	if _, err := h.withdrawals.Create(ctx, testPromoter, paypalWithdrawal("50")); !errors.Is(err, ErrWithdrawalPendingExists) {
		t.Fatalf("second pending want ErrWithdrawalPendingExists got %v", err)
	}
}

func TestWithdrawalStats(t *testing.T) {
	h := setupLedgerServiceTest(t, 0)
	h.createProduct(t, "prod-1", "10")
	h.earn(t, "prod-1", "3000")
	ctx := context.Background()

	first, err := h.withdrawals.Create(ctx, testPromoter, paypalWithdrawal("100"))
	if err != nil {
		t.Fatalf("create first failed: %v", err)
	}
	if _, err := h.withdrawals.Complete(ctx, testAdmin, first.ID, "TX-00001", ""); err != nil {
		t.Fatalf("complete first failed: %v", err)
	}
	if _, err := h.withdrawals.Create(ctx, testPromoter, paypalWithdrawal("50")); err != nil {
		t.Fatalf("create second failed: %v", err)
	}

	stats, err := h.withdrawals.Stats(testPromoter)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	assertMoney(t, "available", stats.AvailableAmount, "150.00")
	assertMoney(t, "pending withdrawal", stats.PendingWithdrawalAmount, "50.00")
	assertMoney(t, "withdrawn", stats.WithdrawnAmount, "100.00")
	if stats.PendingCount != 1 || stats.ProcessedCount != 1 || stats.TotalCount != 2 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
}

func TestISOWeekBounds(t *testing.T) {
	sunday := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	start, end := isoWeekBounds(sunday)
	if start.Format("2006-01-02") != "2024-03-04" || end.Format("2006-01-02 15:04:05") != "2024-03-10 23:59:59" {
		t.Fatalf("unexpected bounds %s - %s", start, end)
	}
}

package service

import (
	"errors"
	"testing"

	"github.com/buyv-ledger/internal/models"
	"github.com/buyv-ledger/internal/repository"
)

func TestGetWalletCreatesEmptyWallet(t *testing.T) {
	h := setupLedgerServiceTest(t, 0)

	wallet, err := h.wallets.GetWallet(testBuyer)
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	if wallet.UserUID != testBuyerUID {
		t.Fatalf("unexpected wallet owner %s", wallet.UserUID)
	}
	assertMoney(t, "available", wallet.AvailableAmount, "0.00")

	again, err := h.wallets.GetWallet(testBuyer)
	if err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if again.ID != wallet.ID {
		t.Fatalf("wallet recreated: %d != %d", again.ID, wallet.ID)
	}
	var count int64
	h.db.Model(&models.PromoterWallet{}).Where("user_uid = ?", testBuyerUID).Count(&count)
	if count != 1 {
		t.Fatalf("want one wallet got %d", count)
	}

	if _, err := h.wallets.GetWallet(nil); !errors.Is(err, ErrPrincipalRequired) {
		t.Fatalf("anonymous want ErrPrincipalRequired got %v", err)
	}
}

func TestUpdateBankDetails(t *testing.T) {
	h := setupLedgerServiceTest(t, 0)
	h.createProduct(t, "prod-1", "10")
	h.earn(t, "prod-1", "500")

	if _, err := h.wallets.UpdateBankDetails(testPromoter, UpdateBankDetailsInput{BankName: "Bank"}); !errors.Is(err, ErrWithdrawDetailsInvalid) {
		t.Fatalf("missing holder want ErrWithdrawDetailsInvalid got %v", err)
	}
	wallet, err := h.wallets.UpdateBankDetails(testPromoter, UpdateBankDetailsInput{
		BankName:          " First Bank ",
		BankAccountHolder: "Promoter One",
		BankAccountNumber: "000123",
		BankSwiftCode:     "fbnkus33",
	})
	if err != nil {
		t.Fatalf("update bank details failed: %v", err)
	}
	if wallet.BankName != "First Bank" || wallet.BankSwiftCode != "FBNKUS33" {
		t.Fatalf("unexpected bank details: %+v", wallet)
	}
	assertMoney(t, "available untouched", h.wallet(t, testPromoterUID).AvailableAmount, "50.00")
}

func TestWalletTransactionsScopedToCaller(t *testing.T) {
	h := setupLedgerServiceTest(t, 0)
	h.createProduct(t, "prod-1", "10")
	h.earn(t, "prod-1", "500")

	rows, total, err := h.wallets.ListTransactions(testPromoter, repository.WalletTransactionListFilter{UserUID: testBuyerUID, Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("want accrue+settle rows got total=%d len=%d", total, len(rows))
	}
	for _, row := range rows {
		if row.UserUID != testPromoterUID {
			t.Fatalf("leaked row for %s", row.UserUID)
		}
	}

	if _, err := h.wallets.AdminGetWallet(testPromoter, testPromoterUID); !errors.Is(err, ErrAdminRequired) {
		t.Fatalf("want ErrAdminRequired got %v", err)
	}
}

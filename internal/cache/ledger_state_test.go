package cache

import (
	"context"
	"testing"
	"time"
)

func TestLedgerStateKeys(t *testing.T) {
	if got := commissionRateKey(" p-1 "); got != "ledger:rate:p-1" {
		t.Fatalf("unexpected rate key: %s", got)
	}
	if got := clickDedupeKey("s1", "p-1", "u1"); got != "tracking:click:s1:p-1:u1" {
		t.Fatalf("unexpected click key: %s", got)
	}
}

func TestLedgerStateDisabledCache(t *testing.T) {
	ctx := context.Background()
	redisEnabled = false

	entry, hit, err := GetCommissionRate(ctx, "p-1")
	if err != nil || hit || entry != nil {
		t.Fatalf("disabled cache should miss, got %+v %v %v", entry, hit, err)
	}
	if err := SetCommissionRate(ctx, &CommissionRateEntry{ProductID: "p-1", RatePercent: "10"}, time.Minute); err != nil {
		t.Fatalf("disabled set should be no-op: %v", err)
	}
	ok, err := MarkClick(ctx, "s1", "p-1", "u1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("disabled click mark should pass, got %v %v", ok, err)
	}
	ok, err = MarkClick(ctx, "", "p-1", "u1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("blank session should pass, got %v %v", ok, err)
	}
}

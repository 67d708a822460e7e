package cache

import (
	"testing"

	"github.com/buyv-ledger/internal/config"
)

func TestInitRedisDisabled(t *testing.T) {
	if err := InitRedis(nil); err != nil {
		t.Fatalf("nil config should be no-op: %v", err)
	}
	if err := InitRedis(&config.RedisConfig{Enabled: false}); err != nil {
		t.Fatalf("disabled config should be no-op: %v", err)
	}
	if Enabled() || Client() != nil {
		t.Fatalf("cache should stay disabled")
	}
	if err := Close(); err != nil {
		t.Fatalf("close disabled cache failed: %v", err)
	}
}

func TestInitRedisUnreachableStaysDisabled(t *testing.T) {
	err := InitRedis(&config.RedisConfig{
		Enabled:            true,
		RedisEndpoint:      config.RedisEndpoint{Host: "127.0.0.1", Port: 1},
		Prefix:             "ledger-test",
		DialTimeoutSeconds: 1,
	})
	if err == nil {
		t.Fatalf("expected ping failure for unreachable redis")
	}
	if Enabled() {
		t.Fatalf("cache should be disabled after failed ping")
	}
	if got := buildKey("rate:p-1"); got != "ledger-test:rate:p-1" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := buildKey(" "); got != "ledger-test" {
		t.Fatalf("blank key want prefix got %s", got)
	}
}

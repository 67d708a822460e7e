package main

import (
	"errors"
	"testing"

	"github.com/buyv-ledger/internal/config"
)

func TestIsWeakSecret(t *testing.T) {
	cases := map[string]bool{
		"":                                    true,
		"short":                               true,
		"change-me-in-production-00000000":    true,
		"YOUR-SECRET-KEY-padding-padding-123": true,
		"3f9c1b7e5a2d4c8e9f0a1b2c3d4e5f6a":    false,
	}
	for secret, want := range cases {
		if got := isWeakSecret(secret); got != want {
			t.Fatalf("isWeakSecret(%q) want %v got %v", secret, want, got)
		}
	}
}

func TestCheckSecret(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{SecretKey: "change-me"}}
	if err := checkSecret(cfg); !errors.Is(err, errWeakSecret) {
		t.Fatalf("want errWeakSecret got %v", err)
	}
	cfg.JWT.SecretKey = "3f9c1b7e5a2d4c8e9f0a1b2c3d4e5f6a"
	if err := checkSecret(cfg); err != nil {
		t.Fatalf("strong secret should pass: %v", err)
	}
}

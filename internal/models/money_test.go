package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyJSON(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`"12.345"`, "12.35"},
		{`12.5`, "12.50"},
		{`"0"`, "0.00"},
		{`null`, "0.00"},
	}
	for _, tc := range cases {
		var m Money
		if err := json.Unmarshal([]byte(tc.in), &m); err != nil {
			t.Fatalf("unmarshal %s failed: %v", tc.in, err)
		}
		if m.String() != tc.want {
			t.Fatalf("unmarshal %s want %s got %s", tc.in, tc.want, m.String())
		}
	}

	var bad Money
	if err := json.Unmarshal([]byte(`"abc"`), &bad); err == nil {
		t.Fatalf("expected error for non numeric amount")
	}

	out, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Amount: NewMoneyFromFloat(3.1)})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `{"amount":"3.10"}` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestMoneyScanAndClamp(t *testing.T) {
	var m Money
	if err := m.Scan("7.005"); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if m.String() != "7.01" {
		t.Fatalf("scan want 7.01 got %s", m.String())
	}
	if got := ClampedMoney(decimal.NewFromInt(-3)); !got.IsZero() {
		t.Fatalf("negative amount should clamp to zero, got %s", got)
	}
	if got := ClampedMoney(decimal.RequireFromString("4.444")); got.String() != "4.44" {
		t.Fatalf("clamp want 4.44 got %s", got)
	}
}

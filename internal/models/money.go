package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// moneyPlaces 金额统一保留的小数位
const moneyPlaces = 2

// Money 钱包与佣金金额，读写时均按 2 位小数四舍五入
type Money struct {
	decimal.Decimal
}

func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: roundMoney(amount)}
}

// NewMoneyFromFloat 仅用于配置项与测试
func NewMoneyFromFloat(amount float64) Money {
	return NewMoneyFromDecimal(decimal.NewFromFloat(amount))
}

// ClampedMoney 负数归零
func ClampedMoney(amount decimal.Decimal) Money {
	if amount.IsNegative() {
		return Money{Decimal: decimal.Zero}
	}
	return NewMoneyFromDecimal(amount)
}

// String 固定两位小数
func (m Money) String() string {
	return roundMoney(m.Decimal).StringFixed(moneyPlaces)
}

// MarshalJSON 金额以字符串输出，避免客户端浮点误差
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON 接受 "12.5" 与 12.5 两种写法，null 保持零值
func (m *Money) UnmarshalJSON(b []byte) error {
	raw := bytes.TrimSpace(b)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(s)
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return err
	}
	m.Decimal = roundMoney(d)
	return nil
}

// Value 实现 driver.Valuer
func (m Money) Value() (driver.Value, error) {
	return roundMoney(m.Decimal).Value()
}

// Scan 实现 sql.Scanner
func (m *Money) Scan(value interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(value); err != nil {
		return err
	}
	m.Decimal = roundMoney(d)
	return nil
}

package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a decimal amount with two fractional digits on the wire,
// e.g. "1500.00". Payments are never floats.
type Money struct {
	decimal.Decimal
}

// MoneyFromString parses an amount, accepting plain decimal notation.
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q", s)
	}
	return Money{d}, nil
}

// MoneyFromFloat is a test convenience; production paths parse strings.
func MoneyFromFloat(f float64) Money {
	return Money{decimal.NewFromFloat(f)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid decimal %q", s)
	}
	m.Decimal = d
	return nil
}

// Text returns the canonical two-digit rendering used by the
// substring-on-number list filters.
func (m Money) Text() string {
	return m.StringFixed(2)
}

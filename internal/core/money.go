// Package core holds the DeltaFin domain model: money, dates and the three
// persisted entities (categories, transactions, savings goals).
//
// Money is stored as integer centavos to keep arithmetic exact; decimal
// parsing and the wire representation go through shopspring/decimal.
package core

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in centavos (BRL cents).
type Money struct {
	Cents int64
}

var centsFactor = decimal.NewFromInt(100)

// ParseMoney converts a decimal string to Money with half-up rounding on the
// third decimal place. Both dot (12.34) and comma (12,34) separators are
// accepted. Negative and zero amounts are rejected: the sign of a transaction
// is carried by its type, never by the numeric value.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Mul(centsFactor).Round(0).IntPart()
	if cents <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents}, nil
}

// MoneyFromDecimal converts a decimal amount in reais to Money.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Mul(centsFactor).Round(0).IntPart()}
}

// Decimal returns the amount in reais.
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.Cents).Div(centsFactor)
}

// Reais returns the amount as a float64, for spreadsheet cells and charts.
// Use Cents for arithmetic.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// FormatBRL renders the amount in Brazilian currency format, e.g.
// "R$ 5.200,00" or "-R$ 350,00".
func (m Money) FormatBRL() string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	reais := cents / 100
	rem := cents % 100

	var buf bytes.Buffer
	digits := strconv.FormatInt(reais, 10)
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			buf.WriteByte('.')
		}
		buf.WriteRune(r)
	}
	s := fmt.Sprintf("R$ %s,%02d", buf.String(), rem)
	if neg {
		return "-" + s
	}
	return s
}

// MarshalJSON emits the amount as a decimal number of reais, matching the
// remote store's numeric column.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts both JSON numbers and numeric strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		m.Cents = 0
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parse money %q: %w", s, err)
	}
	m.Cents = d.Mul(centsFactor).Round(0).IntPart()
	return nil
}

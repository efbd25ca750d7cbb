// Package shared holds value objects used by more than one aggregate.
package shared

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is the ISO 4217 code used when none is given.
const DefaultCurrency = "INR"

// Money is an amount in minor units (paise for INR).
type Money struct {
	minor    int64
	currency string
}

func NewMoney(minor int64, cur string) Money {
	if cur == "" {
		cur = DefaultCurrency
	}
	return Money{minor: minor, currency: cur}
}

// Rupees builds an INR amount from whole rupees; used by fixtures.
func Rupees(r int64) Money {
	return NewMoney(r*100, DefaultCurrency)
}

func Zero(cur string) Money {
	return NewMoney(0, cur)
}

func (m Money) Minor() int64     { return m.minor }
func (m Money) Currency() string { return m.currency }
func (m Money) IsPositive() bool { return m.minor > 0 }
func (m Money) IsZero() bool     { return m.minor == 0 }
func (m Money) IsNegative() bool { return m.minor < 0 }

func (m Money) Add(o Money) Money {
	return NewMoney(m.minor+o.minor, m.currency)
}

func (m Money) Sub(o Money) Money {
	return NewMoney(m.minor-o.minor, m.currency)
}

func (m Money) Mul(n int) Money {
	return NewMoney(m.minor*int64(n), m.currency)
}

// ClampZero returns m, or zero if m is negative.
func (m Money) ClampZero() Money {
	if m.minor < 0 {
		return Zero(m.currency)
	}
	return m
}

func (m Money) Equals(o Money) bool {
	return m.minor == o.minor && m.currency == o.currency
}

func (m Money) LessThan(o Money) bool {
	return m.minor < o.minor
}

// Min returns the smaller of a and b.
func Min(a, b Money) Money {
	if b.minor < a.minor {
		return b
	}
	return a
}

// Format renders the amount for humans, e.g. "₹ 1,250.00".
func (m Money) Format() string {
	unit, err := currency.ParseISO(m.currency)
	if err != nil {
		return m.String()
	}
	p := message.NewPrinter(language.English)
	scale, _ := currency.Standard.Rounding(unit)
	return p.Sprintf("%v", currency.Symbol(unit.Amount(float64(m.minor)/pow10(scale))))
}

func (m Money) String() string {
	return fmt.Sprintf("%d.%02d %s", m.minor/100, abs(m.minor%100), m.currency)
}

func pow10(n int) float64 {
	f := 1.0
	for i := 0; i < n; i++ {
		f *= 10
	}
	return f
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

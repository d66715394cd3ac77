package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is an exact amount in minor currency units (cents).
// All arithmetic stays in int64; decimals appear only at the edges
// (quantities and FX rates) and are rounded back to cents immediately.
type Money struct {
	Amount   int64
	Currency string
}

// New returns a Money value in the given currency.
func New(amount int64, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Zero returns a zero amount in the given currency.
func Zero(currency string) Money {
	return Money{Currency: currency}
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.Amount == 0 }

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool { return m.Amount < 0 }

// Add returns m + other. Mixing currencies is a programming error.
func (m Money) Add(other Money) Money {
	m.assertSameCurrency(other)
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}
}

// Sub returns m - other. Mixing currencies is a programming error.
func (m Money) Sub(other Money) Money {
	m.assertSameCurrency(other)
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}
}

// Neg returns the amount with its sign flipped.
func (m Money) Neg() Money {
	return Money{Amount: -m.Amount, Currency: m.Currency}
}

// Abs returns the absolute amount.
func (m Money) Abs() Money {
	if m.Amount < 0 {
		return m.Neg()
	}
	return m
}

// MulQuantity multiplies the amount by a decimal quantity and rounds
// half away from zero to whole cents.
func (m Money) MulQuantity(qty decimal.Decimal) Money {
	product := decimal.NewFromInt(m.Amount).Mul(qty).Round(0)
	return Money{Amount: product.IntPart(), Currency: m.Currency}
}

// Convert translates the amount into another currency at the supplied
// rate, rounding half away from zero to whole cents. A rate of zero or
// below is rejected: exchange rates come from external data and a bad
// one must not silently zero a ledger amount.
func (m Money) Convert(toCurrency string, rate decimal.Decimal) (Money, error) {
	if m.Currency == toCurrency {
		return m, nil
	}
	if rate.Sign() <= 0 {
		return Money{}, fmt.Errorf("money: non-positive exchange rate %s for %s->%s", rate, m.Currency, toCurrency)
	}
	converted := decimal.NewFromInt(m.Amount).Mul(rate).Round(0)
	return Money{Amount: converted.IntPart(), Currency: toCurrency}, nil
}

func (m Money) assertSameCurrency(other Money) {
	if m.Currency != other.Currency {
		panic(fmt.Sprintf("money: currency mismatch %s vs %s", m.Currency, other.Currency))
	}
}

// String renders the amount as "CUR -12.34" without going through floats.
func (m Money) String() string {
	sign := ""
	a := m.Amount
	if a < 0 {
		sign = "-"
		a = -a
	}
	return fmt.Sprintf("%s %s%d.%02d", m.Currency, sign, a/100, a%100)
}

// RoundHalfAway divides num by den rounding half away from zero.
// A zero denominator is a misconfigured scale factor and panics.
func RoundHalfAway(num, den int64) int64 {
	if den == 0 {
		panic("money: zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	if num >= 0 {
		return (num + den/2) / den
	}
	return -((-num + den/2) / den)
}

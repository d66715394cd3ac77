package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAddSub(t *testing.T) {
	a := New(10050, "USD")
	b := New(275, "USD")
	require.Equal(t, int64(10325), a.Add(b).Amount)
	require.Equal(t, int64(9775), a.Sub(b).Amount)
	require.Panics(t, func() { a.Add(New(1, "EUR")) })
}

func TestMulQuantity(t *testing.T) {
	unit := New(333, "USD") // $3.33
	qty := decimal.RequireFromString("2.5")
	require.Equal(t, int64(833), unit.MulQuantity(qty).Amount) // 832.5 rounds away from zero
}

func TestConvert(t *testing.T) {
	m := New(10000, "EUR")
	rate := decimal.RequireFromString("1.0852")
	out, err := m.Convert("USD", rate)
	require.NoError(t, err)
	require.Equal(t, int64(10852), out.Amount)
	require.Equal(t, "USD", out.Currency)

	same, err := m.Convert("EUR", rate)
	require.NoError(t, err)
	require.Equal(t, m, same)

	_, err = m.Convert("USD", decimal.Zero)
	require.Error(t, err)
}

func TestPercentage(t *testing.T) {
	// 7.25% of $100.00
	require.Equal(t, int64(725), Percentage(10000, Rate(725)))
	// 10% of 5 cents = 0.5 -> rounds away from zero to 1
	require.Equal(t, int64(1), Percentage(5, Rate(1000)))
	// negative base rounds away from zero too
	require.Equal(t, int64(-1), Percentage(-5, Rate(1000)))
}

func TestRoundHalfAway(t *testing.T) {
	require.Equal(t, int64(4), RoundHalfAway(7*6000, 10000))
	require.Equal(t, int64(1), RoundHalfAway(1, 2))
	require.Equal(t, int64(-1), RoundHalfAway(-1, 2))
	require.Equal(t, int64(0), RoundHalfAway(0, 7))
	require.Panics(t, func() { RoundHalfAway(1, 0) })
}

func TestFormat(t *testing.T) {
	require.Equal(t, "USD 1,234.56", Format(New(123456, "USD")))
	require.Equal(t, "USD -0.07", Format(New(-7, "USD")))
	require.True(t, ValidCurrency("USD"))
	require.False(t, ValidCurrency("??"))
}

package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewLineItem(t *testing.T) {
	t.Run("computes amount", func(t *testing.T) {
		item, err := NewLineItem(LineInput{Description: "Design work", Quantity: dec("3"), UnitPrice: dec("49.99")})
		require.NoError(t, err)
		assert.True(t, item.Amount.Equal(dec("149.97")))
	})

	t.Run("rounds amount half up to cents", func(t *testing.T) {
		item, err := NewLineItem(LineInput{Description: "Hours", Quantity: dec("1.5"), UnitPrice: dec("10.005")})
		require.NoError(t, err)
		// 1.5 * 10.005 = 15.0075
		assert.Equal(t, "15.01", item.Amount.StringFixed(2))
	})

	t.Run("rejects quantity below one", func(t *testing.T) {
		_, err := NewLineItem(LineInput{Description: "x", Quantity: dec("0.5"), UnitPrice: dec("1")})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("rejects negative price", func(t *testing.T) {
		_, err := NewLineItem(LineInput{Description: "x", Quantity: dec("1"), UnitPrice: dec("-1")})
		assert.ErrorIs(t, err, ErrInvalidUnitPrice)
	})

	t.Run("rejects inputs beyond four decimal places", func(t *testing.T) {
		_, err := NewLineItem(LineInput{Description: "x", Quantity: dec("1000"), UnitPrice: dec("0.123449")})
		assert.ErrorIs(t, err, ErrTooPrecise)

		_, err = NewLineItem(LineInput{Description: "x", Quantity: dec("1.00001"), UnitPrice: dec("1")})
		assert.ErrorIs(t, err, ErrTooPrecise)
	})

	t.Run("accepts four decimal places with trailing zeros", func(t *testing.T) {
		item, err := NewLineItem(LineInput{Description: "x", Quantity: dec("1000"), UnitPrice: dec("0.123400")})
		require.NoError(t, err)
		assert.Equal(t, "123.40", item.Amount.StringFixed(2))
	})

	t.Run("allows zero price", func(t *testing.T) {
		item, err := NewLineItem(LineInput{Description: "Free setup", Quantity: dec("1"), UnitPrice: decimal.Zero})
		require.NoError(t, err)
		assert.True(t, item.Amount.IsZero())
	})

	t.Run("rejects blank description", func(t *testing.T) {
		_, err := NewLineItem(LineInput{Description: "  ", Quantity: dec("1"), UnitPrice: dec("1")})
		require.Error(t, err)
	})
}

func TestComputeTotals(t *testing.T) {
	lines, err := BuildLines([]LineInput{
		{Description: "A", Quantity: dec("2"), UnitPrice: dec("50")},
		{Description: "B", Quantity: dec("1"), UnitPrice: dec("33.33")},
	})
	require.NoError(t, err)

	totals, err := ComputeTotals(lines, dec("7.5"))
	require.NoError(t, err)

	assert.Equal(t, "133.33", totals.Subtotal.StringFixed(2))
	// 133.33 * 7.5% = 9.99975
	assert.Equal(t, "10.00", totals.TaxAmount.StringFixed(2))
	assert.Equal(t, "143.33", totals.Total.StringFixed(2))
	assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.TaxAmount)))
}

func TestComputeTotals_RecomputesStaleAmounts(t *testing.T) {
	lines, err := BuildLines([]LineInput{{Description: "A", Quantity: dec("2"), UnitPrice: dec("10")}})
	require.NoError(t, err)

	lines[0].Quantity = dec("5")
	lines[0].Amount = dec("999")

	totals, err := ComputeTotals(lines, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, lines[0].Amount.Equal(dec("50")))
	assert.True(t, totals.Total.Equal(dec("50")))
}

func TestComputeTotals_TotalWithinTolerance(t *testing.T) {
	cases := []struct {
		qty, price, rate string
	}{
		{"1", "0.01", "33.333"},
		{"7", "13.37", "19"},
		{"3", "99.995", "0"},
		{"12", "1234.56", "100"},
	}
	tolerance := dec("0.01")
	for _, tc := range cases {
		lines, err := BuildLines([]LineInput{{Description: "line", Quantity: dec(tc.qty), UnitPrice: dec(tc.price)}})
		require.NoError(t, err)
		totals, err := ComputeTotals(lines, dec(tc.rate))
		require.NoError(t, err)

		expected := totals.Subtotal.Add(totals.Subtotal.Mul(dec(tc.rate)).Div(decimal.NewFromInt(100)))
		assert.True(t, totals.Total.Sub(expected).Abs().LessThanOrEqual(tolerance),
			"total %s vs expected %s", totals.Total, expected)
	}
}

func TestComputeTotals_Errors(t *testing.T) {
	_, err := ComputeTotals(nil, decimal.Zero)
	assert.ErrorIs(t, err, ErrNoLines)

	lines, _ := BuildLines([]LineInput{{Description: "A", Quantity: dec("1"), UnitPrice: dec("1")}})
	_, err = ComputeTotals(lines, dec("100.01"))
	assert.ErrorIs(t, err, ErrInvalidTaxRate)
	_, err = ComputeTotals(lines, dec("-1"))
	assert.ErrorIs(t, err, ErrInvalidTaxRate)
}

func TestBuildLines_Positions(t *testing.T) {
	lines, err := BuildLines([]LineInput{
		{Description: "first", Quantity: dec("1"), UnitPrice: dec("1")},
		{Description: "second", Quantity: dec("1"), UnitPrice: dec("1")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, lines[0].Position)
	assert.Equal(t, 2, lines[1].Position)
}

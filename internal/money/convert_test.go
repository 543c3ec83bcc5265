package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestConvert(t *testing.T) {
	third := decimal.NewFromInt(1).Div(decimal.NewFromInt(3))

	tests := []struct {
		name     string
		amount   decimal.Decimal
		costRate decimal.Decimal
		sellRate decimal.Decimal
		want     string
	}{
		{name: "identity", amount: d("100"), costRate: d("1"), sellRate: d("1"), want: "100.00"},
		{name: "rates cancel out", amount: d("100"), costRate: d("2"), sellRate: d("0.5"), want: "100.00"},
		{name: "rounds down", amount: d("10"), costRate: d("1"), sellRate: third, want: "3.33"},
		{name: "rounds half up", amount: d("1.005"), costRate: d("1"), sellRate: d("1"), want: "1.01"},
		{name: "usd to aed", amount: d("250"), costRate: d("3.6725"), sellRate: d("1"), want: "918.13"},
		{name: "negative amount", amount: d("-20"), costRate: d("1.5"), sellRate: d("1"), want: "-30.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.amount, tt.costRate, tt.sellRate)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestConvertRoundsOnceAfterConversion(t *testing.T) {
	// 0.335 * 3 = 1.005 → 1.01; rounding the input first would give 1.02
	got := Convert(d("0.335"), d("3"), d("1"))
	assert.True(t, got.Equal(d("1.01")), "got %s", got)
}

func TestConvertIfForeign(t *testing.T) {
	amount := d("123.456")

	same := ConvertIfForeign(amount, "aed", "AED", d("3.67"), d("1"))
	assert.True(t, same.Equal(amount), "ledger currency must pass through unchanged")

	foreign := ConvertIfForeign(amount, "USD", "AED", d("2"), d("1"))
	assert.Equal(t, "246.91", foreign.StringFixed(2))
}

func TestTaxCode(t *testing.T) {
	assert.Equal(t, TaxCodeVAT, TaxCode(d("0.01")))
	assert.Equal(t, TaxCodeExempt, TaxCode(decimal.Zero))
	assert.Equal(t, TaxCodeExempt, TaxCode(d("-5")))
}

func TestRateOr(t *testing.T) {
	one := decimal.NewFromInt(1)
	assert.True(t, RateOr(decimal.Zero, one).Equal(one))
	assert.True(t, RateOr(d("3.67"), one).Equal(d("3.67")))
}

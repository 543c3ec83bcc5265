// Package money holds the currency arithmetic shared by the invoice, bill and
// VAT pipelines. All amounts are decimals; rounding happens once, at the end
// of a conversion.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tax codes written to the accounting exports.
const (
	TaxCodeVAT    = "5% VAT"
	TaxCodeExempt = "EX Exempt"
)

var hundred = decimal.NewFromInt(100)

// Convert applies the cost rate and then the sell rate to amount and rounds
// the result to two places, half away from zero.
func Convert(amount, costRate, sellRate decimal.Decimal) decimal.Decimal {
	return amount.Mul(costRate).Mul(sellRate).Round(2)
}

// ConvertIfForeign converts amount unless it is already expressed in the
// ledger currency, in which case it is returned unchanged.
func ConvertIfForeign(amount decimal.Decimal, currency, ledgerCurrency string, costRate, sellRate decimal.Decimal) decimal.Decimal {
	if strings.EqualFold(strings.TrimSpace(currency), ledgerCurrency) {
		return amount
	}
	return Convert(amount, costRate, sellRate)
}

// TaxCode returns the export tax code for a tax amount.
func TaxCode(tax decimal.Decimal) string {
	if tax.IsPositive() {
		return TaxCodeVAT
	}
	return TaxCodeExempt
}

// Percent turns a percentage such as 5 into the rate 0.05.
func Percent(pct decimal.Decimal) decimal.Decimal {
	return pct.Div(hundred)
}

// RateOr returns rate, or fallback when rate is zero. Exchange rates missing
// from a payload parse as zero and mean "no conversion".
func RateOr(rate, fallback decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return fallback
	}
	return rate
}

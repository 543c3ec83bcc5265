// Package vat computes the VAT columns of the report sections and routes
// enriched records into them.
//
// Percentages come from the VAT setup as written (5 means 5%). Values keep
// full precision; rounding is left to the presentation layer.
package vat

import (
	"github.com/shopspring/decimal"
	"travelvat/internal/money"
	"travelvat/internal/rules"
)

var hundred = decimal.NewFromInt(100)

// Hotel holds the computed columns of a taxed hotel reservation.
type Hotel struct {
	Basic              decimal.Decimal
	ServiceCharge      decimal.Decimal
	MunicipalityFee    decimal.Decimal
	VATPaid            decimal.Decimal
	TaxableValueInput  decimal.Decimal
	TaxableValueOutput decimal.Decimal
	TotalVAT           decimal.Decimal
	NetVATPayable      decimal.Decimal
}

// ComputeHotel derives the hotel columns from the sale and cost of a booking.
// When the supplier's taxes are included in the cost, the input side is zero.
func ComputeHotel(sale, cost decimal.Decimal, taxesIncluded bool, rule rules.VATRule) Hotel {
	rate := money.Percent(rule.VATPercentage)

	var h Hotel
	if !taxesIncluded {
		h.Basic = safeDiv(cost, rule.BasicDivision)
		h.ServiceCharge = h.Basic.Mul(money.Percent(rule.ServiceCharge))
		h.MunicipalityFee = h.Basic.Mul(money.Percent(rule.MunicipalityFee))
		h.VATPaid = h.Basic.Add(h.ServiceCharge).Mul(rate)
		h.TaxableValueInput = safeDiv(h.VATPaid, rate)
	}

	h.TotalVAT = vatInclusive(sale, rule.VATPercentage)
	h.TaxableValueOutput = safeDiv(h.TotalVAT, rate)
	h.NetVATPayable = h.TotalVAT.Sub(h.VATPaid)
	return h
}

// Values returns the columns in report order.
func (h Hotel) Values() []decimal.Decimal {
	return []decimal.Decimal{
		h.Basic,
		h.ServiceCharge,
		h.MunicipalityFee,
		h.VATPaid,
		h.TaxableValueInput,
		h.TaxableValueOutput,
		h.TotalVAT,
		h.NetVATPayable,
	}
}

// Excursion holds the computed columns of a taxed excursion.
type Excursion struct {
	Profit             decimal.Decimal
	VATPaid            decimal.Decimal
	TaxableValueInput  decimal.Decimal
	VATOutput          decimal.Decimal
	TaxableValueOutput decimal.Decimal
	NetVATPayable      decimal.Decimal
}

// ComputeExcursion derives the excursion columns. Cost and sale are VAT
// inclusive.
func ComputeExcursion(sale, cost decimal.Decimal, taxesIncluded bool, vatPercentage decimal.Decimal) Excursion {
	rate := money.Percent(vatPercentage)

	var e Excursion
	if !taxesIncluded {
		e.VATPaid = vatInclusive(cost, vatPercentage)
		e.TaxableValueInput = safeDiv(e.VATPaid, rate)
	}

	e.Profit = sale.Sub(cost)
	e.VATOutput = vatInclusive(sale, vatPercentage)
	e.TaxableValueOutput = safeDiv(e.VATOutput, rate)
	e.NetVATPayable = e.VATOutput.Sub(e.VATPaid)
	return e
}

// Values returns the columns in report order.
func (e Excursion) Values() []decimal.Decimal {
	return []decimal.Decimal{
		e.Profit,
		e.VATPaid,
		e.TaxableValueInput,
		e.VATOutput,
		e.TaxableValueOutput,
		e.NetVATPayable,
	}
}

// Visa holds the visa columns. Visa charges are not modelled yet and every
// input column is zero, so VATPayable is zero as well.
type Visa struct {
	BasicCharges       decimal.Decimal
	ServiceCharges     decimal.Decimal
	NaqoodiCharges     decimal.Decimal
	VATPaid            decimal.Decimal
	Reconciled         decimal.Decimal
	TaxableValueInput  decimal.Decimal
	VATOutput          decimal.Decimal
	TaxableValueOutput decimal.Decimal
	VATPayable         decimal.Decimal
}

// ComputeVisa returns the visa placeholder columns.
func ComputeVisa() Visa {
	v := Visa{
		BasicCharges:       decimal.Zero,
		ServiceCharges:     decimal.Zero,
		NaqoodiCharges:     decimal.Zero,
		VATPaid:            decimal.Zero,
		Reconciled:         decimal.Zero,
		TaxableValueInput:  decimal.Zero,
		VATOutput:          decimal.Zero,
		TaxableValueOutput: decimal.Zero,
	}
	v.VATPayable = v.VATOutput.Sub(v.VATPaid)
	return v
}

// Values returns the columns in report order.
func (v Visa) Values() []decimal.Decimal {
	return []decimal.Decimal{
		v.BasicCharges,
		v.ServiceCharges,
		v.NaqoodiCharges,
		v.VATPaid,
		v.Reconciled,
		v.TaxableValueInput,
		v.VATOutput,
		v.TaxableValueOutput,
		v.VATPayable,
	}
}

// vatInclusive extracts the VAT part of a VAT inclusive amount.
func vatInclusive(amount, pct decimal.Decimal) decimal.Decimal {
	return safeDiv(amount, hundred.Add(pct)).Mul(pct)
}

// safeDiv returns zero instead of dividing by zero.
func safeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

package vat

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"travelvat/internal/rules"
	"travelvat/pkg/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func round(v decimal.Decimal) string {
	return v.StringFixed(2)
}

var dubai = rules.VATRule{
	Emirate:         "Dubai",
	BasicDivision:   d("1.05"),
	ServiceCharge:   d("10"),
	MunicipalityFee: d("7"),
	VATPercentage:   d("5"),
}

type setup map[string]rules.VATRule

func (s setup) VAT(emirate string) (rules.VATRule, bool) {
	r, ok := s[emirate]
	return r, ok
}

func TestComputeHotel(t *testing.T) {
	h := ComputeHotel(d("1050"), d("1000"), false, dubai)

	assert.Equal(t, "952.38", round(h.Basic))
	assert.Equal(t, "95.24", round(h.ServiceCharge))
	assert.Equal(t, "66.67", round(h.MunicipalityFee))
	assert.Equal(t, "52.38", round(h.VATPaid))
	assert.Equal(t, "1047.62", round(h.TaxableValueInput))
	assert.Equal(t, "50.00", round(h.TotalVAT))
	assert.Equal(t, "1000.00", round(h.TaxableValueOutput))
	assert.Equal(t, "-2.38", round(h.NetVATPayable))
	assert.True(t, h.NetVATPayable.Equal(h.TotalVAT.Sub(h.VATPaid)))
}

func TestComputeHotelTaxesIncluded(t *testing.T) {
	h := ComputeHotel(d("1050"), d("1000"), true, dubai)

	for i, v := range h.Values()[:5] {
		assert.True(t, v.IsZero(), "column %d", i)
	}
	assert.Equal(t, "50.00", round(h.TotalVAT))
	assert.True(t, h.NetVATPayable.Equal(h.TotalVAT))
}

func TestComputeExcursion(t *testing.T) {
	e := ComputeExcursion(d("210"), d("105"), false, d("5"))

	assert.Equal(t, "105.00", round(e.Profit))
	assert.Equal(t, "5.00", round(e.VATPaid))
	assert.Equal(t, "100.00", round(e.TaxableValueInput))
	assert.Equal(t, "10.00", round(e.VATOutput))
	assert.Equal(t, "200.00", round(e.TaxableValueOutput))
	assert.Equal(t, "5.00", round(e.NetVATPayable))

	included := ComputeExcursion(d("210"), d("105"), true, d("5"))
	assert.True(t, included.VATPaid.IsZero())
	assert.True(t, included.TaxableValueInput.IsZero())
	assert.True(t, included.NetVATPayable.Equal(included.VATOutput))
}

func TestZeroVATPercentage(t *testing.T) {
	e := ComputeExcursion(d("210"), d("105"), false, decimal.Zero)
	assert.True(t, e.VATPaid.IsZero())
	assert.True(t, e.TaxableValueInput.IsZero())
	assert.True(t, e.TaxableValueOutput.IsZero())

	rule := dubai
	rule.VATPercentage = decimal.Zero
	h := ComputeHotel(d("1050"), d("1000"), false, rule)
	assert.True(t, h.TaxableValueInput.IsZero())
	assert.True(t, h.TaxableValueOutput.IsZero())
	assert.Equal(t, "952.38", round(h.Basic))
}

func TestComputeVisa(t *testing.T) {
	v := ComputeVisa()
	values := v.Values()
	assert.Len(t, values, len(KindVisa.Columns()))
	for _, x := range values {
		assert.True(t, x.IsZero())
	}
}

func TestKindColumnsMatchValues(t *testing.T) {
	assert.Len(t, Hotel{}.Values(), len(KindHotel.Columns()))
	assert.Len(t, Excursion{}.Values(), len(KindExcursion.Columns()))
	assert.Empty(t, KindPlain.Columns())
}

func TestRouteIsExclusive(t *testing.T) {
	countries := []string{models.CountryUAE, models.CountryROW}
	services := []string{
		models.ServiceHotel, models.ServiceExcursion, models.ServiceAirTicket,
		models.ServiceVisa, models.ServiceOther, "Transfer",
	}
	productTypes := []string{"Room", models.ProductTypeAdjustment}

	for _, c := range countries {
		for _, s := range services {
			for _, p := range productTypes {
				rec := models.VATRecord{Country: c, ServiceType: s, VATInput: models.VATInput{ProductType: p}}
				matches := 0
				for _, sec := range Sections {
					if sec.Match(rec) {
						matches++
					}
				}
				assert.LessOrEqual(t, matches, 1, fmt.Sprintf("%s/%s/%s", c, s, p))
			}
		}
	}

	cases := []struct {
		country, service, productType string
		want                          string
	}{
		{models.CountryUAE, models.ServiceHotel, "Room", SectionHRTax},
		{models.CountryROW, models.ServiceHotel, "Room", SectionHRZero},
		{models.CountryUAE, models.ServiceExcursion, "", SectionEXTax},
		{models.CountryROW, models.ServiceExcursion, "", SectionEXZero},
		{models.CountryROW, models.ServiceAirTicket, models.ProductTypeAdjustment, SectionAirTicket},
		{models.CountryUAE, models.ServiceVisa, "", SectionVisa},
		{models.CountryUAE, models.ServiceOther, models.ProductTypeAdjustment, SectionOther},
		{models.CountryUAE, models.ServiceHotel, models.ProductTypeAdjustment, ""},
		{models.CountryROW, models.ServiceVisa, "", ""},
	}
	for _, tc := range cases {
		rec := models.VATRecord{Country: tc.country, ServiceType: tc.service, VATInput: models.VATInput{ProductType: tc.productType}}
		s, ok := Route(rec)
		assert.Equal(t, tc.want != "", ok)
		assert.Equal(t, tc.want, s.Name)
	}
}

func record(supplier, emirate, country, service string, sale, cost string) models.VATRecord {
	return models.VATRecord{
		VATInput:    models.VATInput{SupplierName: supplier, Sale: d(sale), Cost: d(cost)},
		Emirate:     emirate,
		Country:     country,
		ServiceType: service,
	}
}

func TestCompute(t *testing.T) {
	records := []models.VATRecord{
		record("Zeta Hotel", "Dubai", models.CountryUAE, models.ServiceHotel, "1050", "1000"),
		record("Atlantis", "Dubai", models.CountryUAE, models.ServiceHotel, "2100", "2000"),
		record("Beach Resort", "Abu Dhabi", models.CountryUAE, models.ServiceHotel, "105", "100"),
		record("Desert Co", "Dubai", models.CountryUAE, models.ServiceExcursion, "210", "105"),
		record("Paris Inn", models.EmirateUnmatched, models.CountryROW, models.ServiceHotel, "10", "5"),
		record("Visa Desk", "Dubai", models.CountryUAE, models.ServiceVisa, "300", "250"),
		record("Visa Desk", models.EmirateUnmatched, models.CountryROW, models.ServiceVisa, "300", "250"),
	}
	abuDhabi := dubai
	abuDhabi.Emirate = "Abu Dhabi"

	sections, err := Compute(records, setup{"Dubai": dubai, "Abu Dhabi": abuDhabi})
	require.NoError(t, err)
	require.Len(t, sections, len(Sections))

	byName := map[string]SectionRows{}
	for _, s := range sections {
		byName[s.Name] = s
	}

	hr := byName[SectionHRTax].Rows
	require.Len(t, hr, 3)
	assert.Equal(t, "Beach Resort", hr[0].SupplierName)
	assert.Equal(t, "Atlantis", hr[1].SupplierName)
	assert.Equal(t, "Zeta Hotel", hr[2].SupplierName)
	assert.Equal(t, "52.38", round(hr[2].Values[3]))

	assert.Len(t, byName[SectionHRZero].Rows, 1)
	assert.Nil(t, byName[SectionHRZero].Rows[0].Values)
	assert.Len(t, byName[SectionEXTax].Rows, 1)
	assert.Len(t, byName[SectionVisa].Rows, 1)
	assert.Empty(t, byName[SectionAirTicket].Rows)
}

func TestComputeMissingVATSetup(t *testing.T) {
	records := []models.VATRecord{
		record("A", "Sharjah", models.CountryUAE, models.ServiceHotel, "1", "1"),
		record("B", "Ajman", models.CountryUAE, models.ServiceExcursion, "1", "1"),
		record("C", "Fujairah", models.CountryUAE, models.ServiceAirTicket, "1", "1"),
		record("D", "Dubai", models.CountryUAE, models.ServiceHotel, "1", "1"),
	}
	broken := dubai
	broken.BasicDivision = decimal.Zero

	_, err := Compute(records, setup{"Dubai": broken})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingVATSetup))

	var missing *MissingVATSetupError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"Ajman", "Dubai", "Sharjah"}, missing.Emirates)
}

package vat_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"travelvat/internal/reconciliation"
	"travelvat/internal/rules"
	"travelvat/internal/vat"
	"travelvat/pkg/models"
)

func TestEnrichThenCompute(t *testing.T) {
	snapshot := rules.NewSnapshot(
		[]rules.SupplierRule{
			{Name: "Atlantis", ServiceType: models.ServiceHotel},
			{Name: "Desert Co", ServiceType: models.ServiceExcursion, TaxesIncluded: true},
		},
		map[string]string{"Dubai Marina": "Dubai"},
		nil,
		[]rules.VATRule{{
			Emirate:         "Dubai",
			BasicDivision:   decimal.RequireFromString("1.05"),
			ServiceCharge:   decimal.NewFromInt(10),
			MunicipalityFee: decimal.NewFromInt(7),
			VATPercentage:   decimal.NewFromInt(5),
		}},
	)

	inputs := []models.VATInput{
		{BookingCode: "BK1", SupplierName: "Atlantis", AreaName: "Dubai Marina", Sale: decimal.NewFromInt(1050), Cost: decimal.NewFromInt(1000)},
		{BookingCode: "BK1", SupplierName: "Desert Co", AreaName: "Dubai Marina", Sale: decimal.NewFromInt(600), Cost: decimal.NewFromInt(500)},
	}

	enriched, err := reconciliation.Enrich(inputs, snapshot)
	require.NoError(t, err)

	sections, err := vat.Compute(enriched.Records, snapshot)
	require.NoError(t, err)

	rows := map[string][]vat.Row{}
	for _, s := range sections {
		rows[s.Name] = s.Rows
	}

	require.Len(t, rows["HR TAX"], 1)
	hotel := rows["HR TAX"][0].Values
	assert.Equal(t, "952.38", hotel[0].StringFixed(2), "basic")
	assert.Equal(t, "95.24", hotel[1].StringFixed(2), "service charge")
	assert.Equal(t, "66.67", hotel[2].StringFixed(2), "municipality fee")
	assert.Equal(t, "52.38", hotel[3].StringFixed(2), "vat paid")

	require.Len(t, rows["EX TAX"], 1)
	excursion := rows["EX TAX"][0]
	assert.True(t, excursion.TaxesIncluded)
	assert.True(t, excursion.Values[1].IsZero(), "vat paid")
	assert.True(t, excursion.Values[2].IsZero(), "taxable value input")
	assert.Equal(t, "100.00", excursion.Values[0].StringFixed(2), "profit")
}

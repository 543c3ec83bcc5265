package report

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"travelvat/internal/reconciliation"
	"travelvat/internal/rules"
	"travelvat/internal/vat"
	"travelvat/pkg/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type setup map[string]rules.VATRule

func (s setup) VAT(emirate string) (rules.VATRule, bool) {
	r, ok := s[emirate]
	return r, ok
}

func buildTestWorkbook(t *testing.T) *excelize.File {
	t.Helper()

	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	records := []models.VATRecord{
		{
			VATInput:    models.VATInput{SupplierName: "Zeta Hotel", AreaName: "Marina", StartDate: start, Sale: d("1050"), Cost: d("1000"), Nights: d("2")},
			Emirate:     "Dubai",
			Country:     models.CountryUAE,
			ServiceType: models.ServiceHotel,
		},
		{
			VATInput:    models.VATInput{SupplierName: "Atlantis", AreaName: "Marina", StartDate: start, Sale: d("2100"), Cost: d("2000")},
			Emirate:     "Dubai",
			Country:     models.CountryUAE,
			ServiceType: models.ServiceHotel,
		},
		{
			VATInput:      models.VATInput{SupplierName: "Desert Co", AreaName: "Marina", Sale: d("210"), Cost: d("105")},
			Emirate:       "Dubai",
			Country:       models.CountryUAE,
			ServiceType:   models.ServiceExcursion,
			TaxesIncluded: true,
		},
		{
			VATInput:    models.VATInput{SupplierName: "Paris Inn", AreaName: "Paris", Sale: d("10"), Cost: d("5")},
			Emirate:     models.EmirateUnmatched,
			Country:     models.CountryROW,
			ServiceType: models.ServiceHotel,
		},
	}
	rule := rules.VATRule{Emirate: "Dubai", BasicDivision: d("1.05"), ServiceCharge: d("10"), MunicipalityFee: d("7"), VATPercentage: d("5")}

	sections, err := vat.Compute(records, setup{"Dubai": rule})
	require.NoError(t, err)

	raw := &reconciliation.RawTable{
		Headers: []string{models.ColSupplierName, models.ColSale, models.ColCost, "Agent"},
		Rows: [][]any{
			{"Zeta Hotel", 1050.0, 1000.0, "Bob"},
			{"Atlantis", 2100.0, 2000.0, ""},
		},
	}

	f, err := BuildWorkbook(raw, records, sections)
	require.NoError(t, err)

	// round trip through disk
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	out, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })
	return out
}

func cell(t *testing.T, f *excelize.File, sheet, ref string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, ref, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestBuildWorkbookSheets(t *testing.T) {
	f := buildTestWorkbook(t)

	assert.Equal(t, []string{
		"RAW IMPORTED", "TOTAL CONVERTED", "HR TAX", "HR ZERO", "EX TAX",
		"EX ZERO", "AIR TICKET", "VISA", "OTHER NA",
	}, f.GetSheetList())

	colors := map[string]string{
		"RAW IMPORTED": "000000", "TOTAL CONVERTED": "000000",
		"HR TAX": "FF0000", "HR ZERO": "3E552A", "EX TAX": "FF0000", "EX ZERO": "3E552A",
		"AIR TICKET": "6A9AD0", "VISA": "FF0000", "OTHER NA": "475468",
	}
	require.Len(t, colors, len(f.GetSheetList()))
	for sheet, want := range colors {
		props, err := f.GetSheetProps(sheet)
		require.NoError(t, err)
		require.NotNil(t, props.TabColorRGB, sheet)
		assert.Contains(t, *props.TabColorRGB, want, sheet)
	}
}

func TestBuildWorkbookRawImported(t *testing.T) {
	f := buildTestWorkbook(t)

	assert.Equal(t, "Agent", cell(t, f, SheetRawImported, "D1"))
	assert.Equal(t, "Bob", cell(t, f, SheetRawImported, "D2"))

	formula, err := f.GetCellFormula(SheetRawImported, "B4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(B2:B3)", formula)

	total, err := f.CalcCellValue(SheetRawImported, "C4", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "3000", total)
}

func TestBuildWorkbookTotalConverted(t *testing.T) {
	f := buildTestWorkbook(t)

	assert.Equal(t, models.ColCountry, cell(t, f, SheetTotalConverted, "A1"))
	assert.Equal(t, models.ColAreaName, cell(t, f, SheetTotalConverted, "B1"), "no emirate column")
	assert.Equal(t, models.ColCost, cell(t, f, SheetTotalConverted, "M1"))
	assert.Equal(t, "Zeta Hotel", cell(t, f, SheetTotalConverted, "G2"), "input order kept")

	formula, err := f.GetCellFormula(SheetTotalConverted, "L6")
	require.NoError(t, err)
	assert.Equal(t, "SUM(L2:L5)", formula)
}

func TestBuildWorkbookHRTax(t *testing.T) {
	f := buildTestWorkbook(t)
	const sheet = vat.SectionHRTax

	assert.Equal(t, models.ColEmirate, cell(t, f, sheet, "B1"))
	assert.Equal(t, "Basic", cell(t, f, sheet, "O1"))
	assert.Equal(t, "Net VAT payable", cell(t, f, sheet, "V1"))

	// sorted by emirate then supplier
	assert.Equal(t, "Atlantis", cell(t, f, sheet, "H2"))
	assert.Equal(t, "Zeta Hotel", cell(t, f, sheet, "H3"))

	vatPaid, err := f.GetCellValue(sheet, "R3")
	require.NoError(t, err)
	assert.Equal(t, "52.38", vatPaid)

	formula, err := f.GetCellFormula(sheet, "V4")
	require.NoError(t, err)
	assert.Equal(t, "SUM(V2:V3)", formula)

	headerStyle, err := f.GetCellStyle(sheet, "A1")
	require.NoError(t, err)
	computedStyle, err := f.GetCellStyle(sheet, "O1")
	require.NoError(t, err)
	assert.NotEqual(t, headerStyle, computedStyle)
}

func TestBuildWorkbookEXTax(t *testing.T) {
	f := buildTestWorkbook(t)
	const sheet = vat.SectionEXTax

	assert.Equal(t, "Final Sale", cell(t, f, sheet, "M1"))
	assert.Equal(t, "Final Cost", cell(t, f, sheet, "N1"))
	assert.Equal(t, "Profit", cell(t, f, sheet, "O1"))

	// taxes included: VAT paid is zero and formatted as a right aligned dash
	assert.Equal(t, "0", cell(t, f, sheet, "P2"))
	styleID, err := f.GetCellStyle(sheet, "P2")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.CustomNumFmt)
	assert.Equal(t, `"-"`, *style.CustomNumFmt)
	require.NotNil(t, style.Alignment)
	assert.Equal(t, "right", style.Alignment.Horizontal)
}

func TestBuildWorkbookEmptySection(t *testing.T) {
	f := buildTestWorkbook(t)

	assert.Equal(t, models.ColCountry, cell(t, f, vat.SectionAirTicket, "A1"))
	formula, err := f.GetCellFormula(vat.SectionAirTicket, "M2")
	require.NoError(t, err)
	assert.Empty(t, formula, "no self referencing total")
	assert.Equal(t, "0", cell(t, f, vat.SectionAirTicket, "M2"))

	assert.Equal(t, "Paris Inn", cell(t, f, vat.SectionHRZero, "H2"))
}

func TestReportName(t *testing.T) {
	at := func(y int, m time.Month, day int) models.VATInput {
		return models.VATInput{StartDate: time.Date(y, m, day, 0, 0, 0, 0, time.UTC)}
	}

	tests := []struct {
		name   string
		inputs []models.VATInput
		want   string
	}{
		{"first quarter", []models.VATInput{at(2024, 1, 5), at(2024, 3, 10)}, "VAT 1st QTR 31 MAR 2024.xlsx"},
		{"second quarter", []models.VATInput{at(2024, 4, 1)}, "VAT 2nd QTR 30 JUN 2024.xlsx"},
		{"latest wins", []models.VATInput{at(2024, 8, 1), at(2023, 12, 31), {}}, "VAT 3rd QTR 30 SEP 2024.xlsx"},
		{"fourth quarter", []models.VATInput{at(2023, 11, 30)}, "VAT 4th QTR 31 DEC 2023.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReportName(tt.inputs)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ReportName([]models.VATInput{{}})
	assert.ErrorIs(t, err, ErrNoStartDate)
}

func TestOrdinal(t *testing.T) {
	assert.Equal(t, "1st", ordinal(1))
	assert.Equal(t, "2nd", ordinal(2))
	assert.Equal(t, "3rd", ordinal(3))
	assert.Equal(t, "4th", ordinal(4))
	assert.Equal(t, "11th", ordinal(11))
	assert.Equal(t, "13th", ordinal(13))
	assert.Equal(t, "21st", ordinal(21))
	assert.Equal(t, "112th", ordinal(112))
}

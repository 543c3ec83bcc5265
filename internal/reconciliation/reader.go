package reconciliation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"travelvat/internal/logger"
	"travelvat/pkg/models"
)

// Columns the VAT pipeline cannot work without.
var requiredColumns = []string{
	models.ColAreaName,
	models.ColStartDate,
	models.ColSupplierName,
	models.ColSale,
	models.ColCost,
}

// Columns kept as text in the raw table even when they look numeric.
var textColumns = map[string]bool{
	models.ColCountry:      true,
	models.ColEmirate:      true,
	models.ColAreaName:     true,
	models.ColBookingCode:  true,
	models.ColSupplierName: true,
	models.ColDescription:  true,
	models.ColProductGroup: true,
	models.ColProductType:  true,
	models.ColServiceType:  true,
}

var dateColumns = map[string]bool{
	models.ColStartDate: true,
	models.ColEndDate:   true,
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02.01.2006",
	"2.1.2006",
}

// DataReader reads the booking sales report from a Google Sheet.
type DataReader struct {
	sheets RangeReader
	log    zerolog.Logger
}

// NewDataReader creates a reader on top of a spreadsheet service.
func NewDataReader(sheets RangeReader) *DataReader {
	return &DataReader{
		sheets: sheets,
		log:    logger.WithComponent("reconciliation-reader"),
	}
}

// ReadVATInput reads every row of sheetName.
func (dr *DataReader) ReadVATInput(ctx context.Context, sheetName string) (*RawTable, []models.VATInput, error) {
	const op = "ReadVATInput"

	dr.log.Info().Str("sheet", sheetName).Msg("Reading booking sales report")

	values, err := dr.sheets.ReadRange(ctx, sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to read %s sheet: %w", op, sheetName, err)
	}

	table, inputs, err := ReadVATInputRows(values)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %s sheet: %w", op, sheetName, err)
	}
	return table, inputs, nil
}

// ReadVATInputRows parses spreadsheet values whose first row is the header.
func ReadVATInputRows(values [][]interface{}) (*RawTable, []models.VATInput, error) {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j := range row {
			cells[j] = getString(row, j)
		}
		rows[i] = cells
	}
	return parseReport(rows)
}

// ReadVATInputXLSX parses the first worksheet of an uploaded workbook.
func ReadVATInputXLSX(path string) (*RawTable, []models.VATInput, error) {
	const op = "ReadVATInputXLSX"

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	sheetList := f.GetSheetList()
	if len(sheetList) == 0 {
		return nil, nil, fmt.Errorf("%s: %s: %w", op, path, ErrEmptyReport)
	}

	// Raw values keep dates as serial numbers instead of locale formatted text
	rows, err := f.GetRows(sheetList[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("%s: reading %s: %w", op, sheetList[0], err)
	}

	table, inputs, err := parseReport(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return table, inputs, nil
}

func parseReport(rows [][]string) (*RawTable, []models.VATInput, error) {
	log := logger.WithComponent("reconciliation-reader")

	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, nil, ErrEmptyReport
	}

	table := &RawTable{}
	for _, h := range rows[0] {
		table.Headers = append(table.Headers, strings.TrimSpace(h))
	}
	for _, name := range requiredColumns {
		if table.Column(name) < 0 {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}

	var inputs []models.VATInput
	skipped := 0
	for i, row := range rows[1:] {
		rowNum := i + 2

		if isBlank(row) {
			skipped++
			continue
		}

		cells := make([]any, len(table.Headers))
		for col, header := range table.Headers {
			cells[col] = typeCell(header, cellAt(row, col))
		}

		input, err := parseInput(table, row, rowNum)
		if err != nil {
			return nil, nil, err
		}

		table.Rows = append(table.Rows, cells)
		inputs = append(inputs, input)
	}

	log.Info().
		Int("total_rows", len(rows)-1).
		Int("parsed_rows", len(inputs)).
		Int("blank_rows", skipped).
		Msg("Booking sales report read")

	return table, inputs, nil
}

func parseInput(table *RawTable, row []string, rowNum int) (models.VATInput, error) {
	value := func(col string) string {
		idx := table.Column(col)
		if idx < 0 {
			return ""
		}
		return cellAt(row, idx)
	}

	amount := func(col string) (decimal.Decimal, error) {
		raw := value(col)
		v, err := parseAmount(raw)
		if err != nil {
			return decimal.Zero, &RowError{Row: rowNum, Column: col, Value: raw, Err: err}
		}
		return v, nil
	}

	date := func(col string) (time.Time, error) {
		raw := value(col)
		v, err := parseDate(raw)
		if err != nil {
			return time.Time{}, &RowError{Row: rowNum, Column: col, Value: raw, Err: err}
		}
		return v, nil
	}

	input := models.VATInput{
		AreaName:     value(models.ColAreaName),
		BookingCode:  value(models.ColBookingCode),
		SupplierName: value(models.ColSupplierName),
		Description:  value(models.ColDescription),
		ProductGroup: value(models.ColProductGroup),
		ProductType:  value(models.ColProductType),
	}

	var err error
	if input.Nights, err = amount(models.ColNights); err != nil {
		return models.VATInput{}, err
	}
	if input.Sale, err = amount(models.ColSale); err != nil {
		return models.VATInput{}, err
	}
	if input.Cost, err = amount(models.ColCost); err != nil {
		return models.VATInput{}, err
	}
	if input.StartDate, err = date(models.ColStartDate); err != nil {
		return models.VATInput{}, err
	}
	if input.EndDate, err = date(models.ColEndDate); err != nil {
		return models.VATInput{}, err
	}

	return input, nil
}

// typeCell turns a report cell into the value written back to the workbook.
func typeCell(header, raw string) any {
	if raw == "" {
		return ""
	}
	switch {
	case textColumns[header]:
		return raw
	case isDateColumn(header):
		if t, err := parseDate(raw); err == nil {
			return t
		}
		return raw
	}
	if v, err := parseAmount(raw); err == nil {
		return v.InexactFloat64()
	}
	return raw
}

// isDateColumn reports whether header holds dates. Besides the known date
// columns, any extra column named like a date ("Booking date") qualifies, so
// its serials are not written back as plain numbers.
func isDateColumn(header string) bool {
	return dateColumns[header] || strings.Contains(strings.ToLower(header), "date")
}

// parseAmount accepts plain and thousands-separated amounts. Empty is zero.
func parseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return decimal.Zero, nil
	}

	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.TrimPrefix(cleaned, "AED")

	return decimal.NewFromString(cleaned)
}

// parseDate accepts ISO, day-first and Excel serial dates. Empty is the zero time.
func parseDate(raw string) (time.Time, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return time.Time{}, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}

	serial, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date: %s", raw)
	}
	return excelize.ExcelDateToTime(serial, false)
}

func cellAt(row []string, index int) string {
	if index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// getString safely extracts a string value from a row slice
func getString(row []interface{}, index int) string {
	if index >= len(row) || row[index] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[index]))
}

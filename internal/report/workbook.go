// Package report assembles the quarterly VAT workbook.
package report

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"travelvat/internal/logger"
	"travelvat/internal/reconciliation"
	"travelvat/internal/vat"
	"travelvat/pkg/models"
)

// Fixed sheets preceding the category sections.
const (
	SheetRawImported    = "RAW IMPORTED"
	SheetTotalConverted = "TOTAL CONVERTED"
)

var tabColors = map[string]string{
	SheetRawImported:     "000000",
	SheetTotalConverted:  "000000",
	vat.SectionHRTax:     "FF0000",
	vat.SectionHRZero:    "3E552A",
	vat.SectionEXTax:     "FF0000",
	vat.SectionEXZero:    "3E552A",
	vat.SectionAirTicket: "6A9AD0",
	vat.SectionVisa:      "FF0000",
	vat.SectionOther:     "475468",
}

// Columns of the TOTAL CONVERTED sheet.
var convertedColumns = []string{
	models.ColCountry,
	models.ColAreaName,
	models.ColBookingCode,
	models.ColNights,
	models.ColStartDate,
	models.ColEndDate,
	models.ColSupplierName,
	models.ColDescription,
	models.ColProductGroup,
	models.ColProductType,
	models.ColServiceType,
	models.ColSale,
	models.ColCost,
}

// Leading columns of every category sheet.
var sectionColumns = []string{
	models.ColCountry,
	models.ColEmirate,
	models.ColAreaName,
	models.ColBookingCode,
	models.ColNights,
	models.ColStartDate,
	models.ColEndDate,
	models.ColSupplierName,
	models.ColDescription,
	models.ColProductGroup,
	models.ColProductType,
	models.ColServiceType,
	models.ColSale,
	models.ColCost,
}

const (
	minColWidth = 8
	maxColWidth = 60
)

type step struct {
	name  string
	write func(*sheet) error
}

// BuildWorkbook writes the raw upload, the converted table and one sheet per
// category section, in that order.
func BuildWorkbook(raw *reconciliation.RawTable, records []models.VATRecord, sections []vat.SectionRows) (*excelize.File, error) {
	const op = "BuildWorkbook"
	log := logger.WithComponent("report")

	f := excelize.NewFile()
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetRawImported); err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	steps := []step{
		{SheetRawImported, func(s *sheet) error { return writeRaw(s, raw) }},
		{SheetTotalConverted, func(s *sheet) error { return writeConverted(s, records) }},
	}
	for _, sec := range sections {
		steps = append(steps, step{sec.Name, func(s *sheet) error { return writeSection(s, sec) }})
	}

	for i, sp := range steps {
		if i > 0 {
			if _, err := f.NewSheet(sp.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("%s: creating %s: %w", op, sp.name, err)
			}
		}
		s := &sheet{f: f, name: sp.name, styles: st}
		if err := sp.write(s); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %s: %w", op, sp.name, err)
		}
		if err := s.fitColumns(); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %s: %w", op, sp.name, err)
		}
		// AutoFilter rewrites the sheet properties, so the tab colour goes last
		if err := s.tabColor(tabColors[sp.name]); err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %s: %w", op, sp.name, err)
		}
	}
	f.SetActiveSheet(0)

	log.Info().
		Int("sheets", len(steps)).
		Int("records", len(records)).
		Msg("VAT workbook assembled")

	return f, nil
}

func writeRaw(s *sheet, raw *reconciliation.RawTable) error {
	if raw == nil {
		raw = &reconciliation.RawTable{}
	}
	if err := s.header(raw.Headers, len(raw.Headers)); err != nil {
		return err
	}
	for i, row := range raw.Rows {
		for col, v := range row {
			if err := s.value(col, i+2, v, false); err != nil {
				return err
			}
		}
	}

	var totals []int
	for _, name := range []string{models.ColSale, models.ColCost} {
		if idx := raw.Column(name); idx >= 0 {
			totals = append(totals, idx)
		}
	}
	return s.totals(len(raw.Rows), totals)
}

func writeConverted(s *sheet, records []models.VATRecord) error {
	if err := s.header(convertedColumns, len(convertedColumns)); err != nil {
		return err
	}
	for i, rec := range records {
		values := []any{
			rec.Country, rec.AreaName, rec.BookingCode, rec.Nights, rec.StartDate, rec.EndDate,
			rec.SupplierName, rec.Description, rec.ProductGroup, rec.ProductType, rec.ServiceType,
			rec.Sale, rec.Cost,
		}
		if err := s.row(i+2, values, false); err != nil {
			return err
		}
	}

	n := len(convertedColumns)
	if err := s.totals(len(records), []int{n - 2, n - 1}); err != nil {
		return err
	}
	return s.filter(n, len(records))
}

func writeSection(s *sheet, sec vat.SectionRows) error {
	computed := sec.Kind.Columns()

	headers := append([]string{}, sectionColumns...)
	if sec.Kind == vat.KindExcursion {
		headers[len(headers)-2] = "Final Sale"
		headers[len(headers)-1] = "Final Cost"
	}
	headers = append(headers, computed...)

	if err := s.header(headers, len(sectionColumns)); err != nil {
		return err
	}

	// Computed sections render zeros as a dash
	dash := len(computed) > 0
	for i, r := range sec.Rows {
		values := []any{
			r.Country, r.Emirate, r.AreaName, r.BookingCode, r.Nights, r.StartDate, r.EndDate,
			r.SupplierName, r.Description, r.ProductGroup, r.ProductType, r.ServiceType,
			r.Sale, r.Cost,
		}
		for _, v := range r.Values {
			values = append(values, v)
		}
		if err := s.row(i+2, values, dash); err != nil {
			return err
		}
	}

	var totals []int
	for col := len(sectionColumns) - 2; col < len(headers); col++ {
		totals = append(totals, col)
	}
	if err := s.totals(len(sec.Rows), totals); err != nil {
		return err
	}
	return s.filter(len(headers), len(sec.Rows))
}

type styles struct {
	header, computedHeader, number, date, zero, total int
}

func newStyles(f *excelize.File) (*styles, error) {
	dateFmt := "yyyy-mm-dd"
	dashFmt := `"-"`

	st := &styles{}
	specs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.header, &excelize.Style{Fill: solid("D9E3C0")}},
		{&st.computedHeader, &excelize.Style{Fill: solid("FFFF00")}},
		{&st.number, &excelize.Style{NumFmt: 4}},
		{&st.date, &excelize.Style{CustomNumFmt: &dateFmt}},
		{&st.zero, &excelize.Style{CustomNumFmt: &dashFmt, Alignment: &excelize.Alignment{Horizontal: "right"}}},
		{&st.total, &excelize.Style{NumFmt: 4, Fill: solid("FFE6E6"), Font: &excelize.Font{Bold: true}}},
	}
	for _, spec := range specs {
		id, err := f.NewStyle(spec.style)
		if err != nil {
			return nil, err
		}
		*spec.dst = id
	}
	return st, nil
}

func solid(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

// sheet writes one worksheet and tracks the content width of its columns.
type sheet struct {
	f      *excelize.File
	name   string
	styles *styles
	widths []int
}

func (s *sheet) tabColor(rgb string) error {
	return s.f.SetSheetProps(s.name, &excelize.SheetPropsOptions{TabColorRGB: &rgb})
}

// header writes the header row. Columns from computedFrom on get the
// highlighted fill.
func (s *sheet) header(headers []string, computedFrom int) error {
	for col, h := range headers {
		style := s.styles.header
		if col >= computedFrom {
			style = s.styles.computedHeader
		}
		if err := s.set(col, 1, h, style, len(h)); err != nil {
			return err
		}
	}
	return nil
}

func (s *sheet) row(rowNum int, values []any, zeroDash bool) error {
	for col, v := range values {
		if err := s.value(col, rowNum, v, zeroDash); err != nil {
			return err
		}
	}
	return nil
}

// value writes a cell with the style of its type. Zero times stay empty.
func (s *sheet) value(col, rowNum int, v any, zeroDash bool) error {
	switch x := v.(type) {
	case decimal.Decimal:
		return s.number(col, rowNum, x.InexactFloat64(), zeroDash)
	case float64:
		return s.number(col, rowNum, x, zeroDash)
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return s.set(col, rowNum, x, s.styles.date, len("yyyy-mm-dd"))
	case string:
		if x == "" {
			return nil
		}
		return s.set(col, rowNum, x, 0, utf8.RuneCountInString(x))
	default:
		text := fmt.Sprint(x)
		return s.set(col, rowNum, text, 0, utf8.RuneCountInString(text))
	}
}

func (s *sheet) number(col, rowNum int, v float64, zeroDash bool) error {
	if v == 0 && zeroDash {
		return s.set(col, rowNum, v, s.styles.zero, 1)
	}
	return s.set(col, rowNum, v, s.styles.number, numberWidth(v))
}

// numberWidth is the rendered length of v under #,##0.00.
func numberWidth(v float64) int {
	text := fmt.Sprintf("%.2f", v)
	digits := len(text) - 3
	if v < 0 {
		digits--
	}
	if digits > 3 {
		return len(text) + (digits-1)/3
	}
	return len(text)
}

func (s *sheet) set(col, rowNum int, v any, style, width int) error {
	cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
	if err != nil {
		return err
	}
	if err := s.f.SetCellValue(s.name, cell, v); err != nil {
		return err
	}
	if style != 0 {
		if err := s.f.SetCellStyle(s.name, cell, cell, style); err != nil {
			return err
		}
	}
	s.track(col, width)
	return nil
}

// totals writes a SUM row below dataRows rows for the given columns.
func (s *sheet) totals(dataRows int, cols []int) error {
	totalRow := dataRows + 2
	for _, col := range cols {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		cell := fmt.Sprintf("%s%d", name, totalRow)
		if dataRows == 0 {
			// SUM(X2:X1) would reference its own cell
			if err := s.f.SetCellValue(s.name, cell, 0); err != nil {
				return err
			}
		} else {
			formula := fmt.Sprintf("SUM(%s2:%s%d)", name, name, dataRows+1)
			if err := s.f.SetCellFormula(s.name, cell, formula); err != nil {
				return err
			}
		}
		if err := s.f.SetCellStyle(s.name, cell, cell, s.styles.total); err != nil {
			return err
		}
	}
	return nil
}

// filter adds an autofilter over the header and data rows.
func (s *sheet) filter(cols, dataRows int) error {
	last, err := excelize.CoordinatesToCellName(cols, dataRows+1)
	if err != nil {
		return err
	}
	return s.f.AutoFilter(s.name, "A1:"+last, []excelize.AutoFilterOptions{})
}

func (s *sheet) track(col, width int) {
	for len(s.widths) <= col {
		s.widths = append(s.widths, 0)
	}
	if width > s.widths[col] {
		s.widths[col] = width
	}
}

func (s *sheet) fitColumns() error {
	for col, w := range s.widths {
		width := w + 2
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := s.f.SetColWidth(s.name, name, name, float64(width)); err != nil {
			return err
		}
	}
	return nil
}

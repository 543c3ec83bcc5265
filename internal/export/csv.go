package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"travelvat/internal/logger"
	"travelvat/pkg/models"
)

var invoiceHeader = []string{
	"Invoice No", "InvoiceDate", "DueDate", "Service Date", "Currency", "CustomerName", "Memo",
	"Item Amount", "Taxes", "Item Description", "Tax Code", "Service", "Account Manager",
}

var billHeader = []string{
	"Bill No", "Bill Date", "DueDate", "Currency", "Supplier", "Memo",
	"Line Amount", "Line Tax Amount", "Line Description", "Line Tax Code", "Account",
}

// File is a written export file.
type File struct {
	Name string
	Path string
	Rows int
}

// Exporter writes CSV batches into one directory.
type Exporter struct {
	dir string
	log zerolog.Logger
}

// NewExporter creates an exporter writing into dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{
		dir: dir,
		log: logger.WithComponent("export"),
	}
}

// InvoiceFiles writes the positive invoice lines as
// invoices_<from>_<to>_part<N>.csv, at most ceiling lines per file without
// splitting an invoice.
func (e *Exporter) InvoiceFiles(lines []models.InvoiceLine, from, to string, ceiling int) ([]File, error) {
	const op = "InvoiceFiles"

	var positive []models.InvoiceLine
	for _, l := range lines {
		if l.Amount.IsPositive() {
			positive = append(positive, l)
		}
	}

	chunks := ChunkByGroup(positive, func(l models.InvoiceLine) string { return l.InvoiceNumber }, ceiling)

	files := make([]File, 0, len(chunks))
	for i, chunk := range chunks {
		name := fmt.Sprintf("invoices_%s_%s_part%d.csv", from, to, i+1)
		f, err := e.write(name, invoiceHeader, invoiceRecords(chunk))
		if err != nil {
			return files, fmt.Errorf("%s: %w", op, err)
		}
		files = append(files, f)
	}
	return files, nil
}

// CreditMemoFile writes the negative invoice lines as
// credit_memo_<from>_<to>.csv. It reports false when there are none.
func (e *Exporter) CreditMemoFile(lines []models.InvoiceLine, from, to string) (File, bool, error) {
	const op = "CreditMemoFile"

	var negative []models.InvoiceLine
	for _, l := range lines {
		if l.Amount.IsNegative() {
			negative = append(negative, l)
		}
	}
	if len(negative) == 0 {
		return File{}, false, nil
	}

	f, err := e.write(fmt.Sprintf("credit_memo_%s_%s.csv", from, to), invoiceHeader, invoiceRecords(negative))
	if err != nil {
		return File{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return f, true, nil
}

// BillFiles writes the positive bills as bills_<from>_<to>_part<N>.csv, at
// most ceiling lines per file without splitting a bill.
func (e *Exporter) BillFiles(bills []models.Bill, from, to string, ceiling int) ([]File, error) {
	const op = "BillFiles"

	var positive []models.Bill
	for _, b := range bills {
		if b.LineAmount.IsPositive() {
			positive = append(positive, b)
		}
	}

	chunks := ChunkByGroup(positive, func(b models.Bill) string { return b.BillNumber }, ceiling)

	files := make([]File, 0, len(chunks))
	for i, chunk := range chunks {
		name := fmt.Sprintf("bills_%s_%s_part%d.csv", from, to, i+1)
		f, err := e.write(name, billHeader, billRecords(chunk))
		if err != nil {
			return files, fmt.Errorf("%s: %w", op, err)
		}
		files = append(files, f)
	}
	return files, nil
}

// VendorCreditFile writes the negative bills as vendor_credit_<from>_<to>.csv
// with amount and tax made positive. It reports false when there are none.
func (e *Exporter) VendorCreditFile(bills []models.Bill, from, to string) (File, bool, error) {
	const op = "VendorCreditFile"

	var credits []models.Bill
	for _, b := range bills {
		if b.LineAmount.IsNegative() {
			b.LineAmount = b.LineAmount.Abs()
			b.LineTaxAmount = b.LineTaxAmount.Abs()
			credits = append(credits, b)
		}
	}
	if len(credits) == 0 {
		return File{}, false, nil
	}

	f, err := e.write(fmt.Sprintf("vendor_credit_%s_%s.csv", from, to), billHeader, billRecords(credits))
	if err != nil {
		return File{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return f, true, nil
}

func invoiceRecords(lines []models.InvoiceLine) [][]string {
	records := make([][]string, len(lines))
	for i, l := range lines {
		records[i] = []string{
			l.InvoiceNumber,
			l.InvoiceDate,
			l.DueDate,
			l.ServiceDate,
			l.Currency,
			l.CustomerName,
			l.BookingCode,
			amount(l.Amount),
			amount(l.Taxes),
			l.Description,
			l.TaxCode,
			l.Category,
			l.AccountManager,
		}
	}
	return records
}

func billRecords(bills []models.Bill) [][]string {
	records := make([][]string, len(bills))
	for i, b := range bills {
		records[i] = []string{
			b.BillNumber,
			b.BillDate,
			b.DueDate,
			b.Currency,
			b.Supplier,
			b.BookingCode,
			amount(b.LineAmount),
			amount(b.LineTaxAmount),
			b.Description,
			b.TaxCode,
			b.Account,
		}
	}
	return records
}

func amount(v decimal.Decimal) string {
	return v.StringFixed(2)
}

func (e *Exporter) write(name string, header []string, records [][]string) (File, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return File{}, fmt.Errorf("creating %s: %w", e.dir, err)
	}

	path := filepath.Join(e.dir, name)
	out, err := os.Create(path)
	if err != nil {
		return File{}, fmt.Errorf("creating %s: %w", name, err)
	}

	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		out.Close()
		return File{}, fmt.Errorf("writing %s: %w", name, err)
	}
	if err := w.WriteAll(records); err != nil {
		out.Close()
		return File{}, fmt.Errorf("writing %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		return File{}, fmt.Errorf("closing %s: %w", name, err)
	}

	e.log.Info().
		Str("file", name).
		Int("rows", len(records)).
		Msg("CSV batch written")

	return File{Name: name, Path: path, Rows: len(records)}, nil
}

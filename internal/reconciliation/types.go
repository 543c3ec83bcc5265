package reconciliation

import (
	"context"

	"travelvat/pkg/models"
)

// RawTable is the uploaded booking sales report as read: the header row and
// one slice of cells per data row. Cells are string, float64 or time.Time.
type RawTable struct {
	Headers []string
	Rows    [][]any
}

// Column returns the index of a header, -1 when absent.
func (t *RawTable) Column(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Result holds the enriched records of a VAT batch.
type Result struct {
	Records []models.VATRecord

	// UnknownAreas lists the distinct areas defaulted to NA/ROW, sorted.
	UnknownAreas []string
}

// CategorySource resolves a supplier id to its category.
type CategorySource interface {
	Category(supplierID string) (string, bool)
}

// AccountManagerSource resolves a customer id to its account manager.
type AccountManagerSource interface {
	AccountManager(ctx context.Context, customerID string) (string, error)
}

// RangeReader reads a block of cells from a spreadsheet.
type RangeReader interface {
	ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error)
}

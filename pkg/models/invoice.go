package models

import "github.com/shopspring/decimal"

// InvoiceLine is one sales invoice line as exported by the Juniper invoice
// service, already converted to the ledger currency.
type InvoiceLine struct {
	// Invoice header
	InvoiceNumber string
	InvoiceDate   string // YYYY-MM-DD
	DueDate       string // YYYY-MM-DD
	CustomerID    string
	CustomerName  string

	// Line
	ServiceDate    string // YYYY-MM-DD, first travel day
	BookingCode    string // exported as Memo
	SupplierID     string
	Amount         decimal.Decimal
	Taxes          decimal.Decimal
	Currency       string // ledger currency after conversion
	SourceCurrency string
	Description    string
	TaxCode        string

	// Resolved during enrichment
	Category       string
	AccountManager string
}

// BillLine is a supplier-side invoice line before it is joined with the
// booking cost details.
type BillLine struct {
	BillNumber  string
	BillDate    string // YYYY-MM-DD
	DueDate     string // YYYY-MM-DD
	SupplierID  string
	Supplier    string
	BookingCode string
	BookLineID  string
	Description string

	LineAmount       decimal.Decimal // TotalLineAmount on the sales side
	SupplierCost     decimal.Decimal
	SellExchangeRate decimal.Decimal
	CostExchangeRate decimal.Decimal
	CostCurrency     string

	Category string
}

// BookingKey identifies one booking line.
type BookingKey struct {
	BookingCode string
	LineID      string
}

// BookingCostDetail is the cost side of one booking line.
type BookingCostDetail struct {
	BookingCode string
	LineID      string
	CostAmount  decimal.Decimal // cost to be invoiced minus commission
	TaxAmount   decimal.Decimal
	Status      string
}

// Key returns the join key of the detail.
func (d BookingCostDetail) Key() BookingKey {
	return BookingKey{BookingCode: d.BookingCode, LineID: d.LineID}
}

// Bill is a bill line joined with its booking cost and converted to the
// ledger currency.
type Bill struct {
	BillNumber    string
	BillDate      string
	DueDate       string
	Currency      string
	Supplier      string
	BookingCode   string
	LineAmount    decimal.Decimal
	LineTaxAmount decimal.Decimal
	Description   string
	TaxCode       string
	Account       string
}

// Supplier is an entry of the Juniper supplier catalog.
type Supplier struct {
	ID           string
	CategoryID   string
	CategoryName string
}

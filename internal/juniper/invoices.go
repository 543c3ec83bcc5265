package juniper

import (
	"context"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/shopspring/decimal"
	"travelvat/internal/money"
	"travelvat/pkg/models"
)

var invoiceFields = []string{
	"InvoiceSeries",
	"InvoiceNumberFrom",
	"InvoiceNumberTo",
	"InvoiceDateFrom",
	"InvoiceDateTo",
	"InvoiceIdNumberFrom",
	"InvoiceIdNumberTo",
	"BeginTravelDate",
	"EndTravelDate",
	"customerId",
	"ExportMode",
	"channel",
	"IncludeRelatedInvoice",
	"locator",
}

// InvoiceBatch is the parsed result of an invoice query.
type InvoiceBatch struct {
	InvoiceCount int
	LineCount    int
	Lines        []models.InvoiceLine
}

// FetchInvoices returns the sales invoice lines issued between from and to
// (YYYYMMDD). Amounts in a foreign currency are converted to ledgerCurrency
// with the invoice's operation rate.
func (c *Client) FetchInvoices(ctx context.Context, from, to, ledgerCurrency string) (InvoiceBatch, error) {
	const op = "FetchInvoices"

	form := c.form(invoiceFields, map[string]string{
		"InvoiceDateFrom": from,
		"InvoiceDateTo":   to,
	})

	doc, err := c.post(ctx, op, invoicesPath, form)
	if err != nil {
		c.log.Error().Err(err).Str("from", from).Str("to", to).Msg("Failed to fetch invoices")
		return InvoiceBatch{}, err
	}

	batch := parseInvoices(doc, ledgerCurrency)

	c.log.Info().
		Str("from", from).
		Str("to", to).
		Int("invoices", batch.InvoiceCount).
		Int("lines", batch.LineCount).
		Msg("Invoices fetched")

	return batch, nil
}

func parseInvoices(doc *xmlquery.Node, ledgerCurrency string) InvoiceBatch {
	var batch InvoiceBatch
	one := decimal.NewFromInt(1)

	for _, inv := range xmlquery.Find(doc, "//Invoice") {
		batch.InvoiceCount++

		currency := attr(inv, "Currency")
		rate := numberOr(text(inv, ".//OperationRate"), one)
		paxName := text(inv, ".//Passenger/name")
		paxSurname := text(inv, ".//Passenger/surname")

		header := models.InvoiceLine{
			InvoiceNumber:  attr(inv, "InvoiceNumber"),
			InvoiceDate:    formatDate(attr(inv, "InvoiceDate")),
			DueDate:        formatDate(attr(inv, "DueDate")),
			CustomerID:     attr(xmlquery.FindOne(inv, ".//Customer"), "Id"),
			CustomerName:   text(inv, ".//CustomerName"),
			Currency:       ledgerCurrency,
			SourceCurrency: currency,
		}

		for _, line := range xmlquery.Find(inv, ".//Line") {
			batch.LineCount++

			begin := formatDate(attr(line, "BeginTravelDate"))
			end := formatDate(attr(line, "EndTravelDate"))

			l := header
			l.ServiceDate = begin
			l.BookingCode = attr(line, "BookingCode")
			l.SupplierID = attr(xmlquery.FindOne(line, ".//Cost"), "SupplierId")
			l.Amount = money.ConvertIfForeign(number(attr(line, "NetLineAmount")), currency, ledgerCurrency, rate, one)
			l.Taxes = money.ConvertIfForeign(number(attr(line, "Taxes")), currency, ledgerCurrency, rate, one)
			l.Description = invoiceDescription(text(line, ".//Service"), paxName, paxSurname, begin, end)
			l.TaxCode = money.TaxCode(l.Taxes)

			batch.Lines = append(batch.Lines, l)
		}
	}

	return batch
}

func invoiceDescription(service, paxName, paxSurname, begin, end string) string {
	var b strings.Builder
	if paxName != "" && paxSurname != "" {
		fmt.Fprintf(&b, "Name :- %s %s\n", paxName, paxSurname)
	}
	fmt.Fprintf(&b, "%s\nTravel Date %s - %s", service, begin, end)
	return b.String()
}

// FetchBillLines returns the supplier-side lines of the invoices issued
// between from and to (YYYYMMDD). Lines with a zero sales amount are skipped.
func (c *Client) FetchBillLines(ctx context.Context, from, to string) ([]models.BillLine, error) {
	const op = "FetchBillLines"

	form := c.form(invoiceFields, map[string]string{
		"InvoiceDateFrom": from,
		"InvoiceDateTo":   to,
	})

	doc, err := c.post(ctx, op, invoicesPath, form)
	if err != nil {
		c.log.Error().Err(err).Str("from", from).Str("to", to).Msg("Failed to fetch bill lines")
		return nil, err
	}

	lines := parseBillLines(doc)

	c.log.Info().
		Str("from", from).
		Str("to", to).
		Int("lines", len(lines)).
		Msg("Bill lines fetched")

	return lines, nil
}

func parseBillLines(doc *xmlquery.Node) []models.BillLine {
	var lines []models.BillLine
	one := decimal.NewFromInt(1)

	for _, inv := range xmlquery.Find(doc, "//Invoice") {
		billNumber := attr(inv, "InvoiceNumber")
		billDate := formatDate(attr(inv, "InvoiceDate"))
		dueDate := formatDate(attr(inv, "DueDate"))
		sellRate := numberOr(text(inv, ".//OperationRate"), one)

		for _, line := range xmlquery.Find(inv, ".//Line") {
			lineAmount := number(attr(line, "TotalLineAmount"))
			if lineAmount.IsZero() {
				continue
			}

			cost := xmlquery.FindOne(line, ".//Cost")
			begin := formatDate(attr(line, "BeginTravelDate"))
			end := formatDate(attr(line, "EndTravelDate"))

			lines = append(lines, models.BillLine{
				BillNumber:       billNumber,
				BillDate:         billDate,
				DueDate:          dueDate,
				SupplierID:       attr(cost, "SupplierId"),
				Supplier:         text(line, ".//SupplierName"),
				BookingCode:      attr(line, "BookingCode"),
				BookLineID:       attr(line, "IdBookingLine"),
				Description:      fmt.Sprintf("%s\nTravel Date %s - %s", text(line, ".//ArticleOfCost"), begin, end),
				LineAmount:       lineAmount,
				SupplierCost:     number(attr(cost, "TotalAmount")),
				SellExchangeRate: sellRate,
				CostExchangeRate: numberOr(attr(cost, "ExchangeRate"), one),
				CostCurrency:     attr(cost, "Currency"),
			})
		}
	}

	return lines
}

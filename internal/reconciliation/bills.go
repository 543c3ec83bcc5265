package reconciliation

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"travelvat/internal/logger"
	"travelvat/internal/money"
	"travelvat/pkg/models"
)

// JoinBills inner-joins bill lines with their booking cost details on
// (booking code, line id). Cost and tax are converted to the ledger currency
// with the line's cost and sell rates unless the cost is already in it.
// Lines whose converted amount is zero are dropped. The result is sorted by
// bill number.
func JoinBills(lines []models.BillLine, details map[models.BookingKey]models.BookingCostDetail, ledgerCurrency string) []models.Bill {
	log := logger.WithComponent("reconciliation")
	one := decimal.NewFromInt(1)

	bills := make([]models.Bill, 0, len(lines))
	unmatched, zero := 0, 0
	for _, l := range lines {
		d, ok := details[models.BookingKey{BookingCode: l.BookingCode, LineID: l.BookLineID}]
		if !ok {
			unmatched++
			continue
		}

		costRate := money.RateOr(l.CostExchangeRate, one)
		sellRate := money.RateOr(l.SellExchangeRate, one)
		amount := money.ConvertIfForeign(d.CostAmount, l.CostCurrency, ledgerCurrency, costRate, sellRate)
		tax := money.ConvertIfForeign(d.TaxAmount, l.CostCurrency, ledgerCurrency, costRate, sellRate)

		if amount.IsZero() {
			zero++
			continue
		}

		bills = append(bills, models.Bill{
			BillNumber:    l.BillNumber,
			BillDate:      l.BillDate,
			DueDate:       l.DueDate,
			Currency:      ledgerCurrency,
			Supplier:      l.Supplier,
			BookingCode:   l.BookingCode,
			LineAmount:    amount,
			LineTaxAmount: tax,
			Description:   l.Description,
			TaxCode:       money.TaxCode(tax),
			Account:       l.Category,
		})
	}

	sort.SliceStable(bills, func(i, j int) bool {
		return bills[i].BillNumber < bills[j].BillNumber
	})

	log.Info().
		Int("lines", len(lines)).
		Int("bills", len(bills)).
		Int("unmatched", unmatched).
		Int("zero_amount", zero).
		Msg("Bill lines joined with booking details")

	return bills
}

// SuffixDuplicateBills renumbers bills that share a number across several
// suppliers: the first supplier keeps the number, the next ones get "-1",
// "-2" and so on, in order of appearance.
func SuffixDuplicateBills(bills []models.Bill) []models.Bill {
	suppliers := map[string][]string{}
	for _, b := range bills {
		if !contains(suppliers[b.BillNumber], b.Supplier) {
			suppliers[b.BillNumber] = append(suppliers[b.BillNumber], b.Supplier)
		}
	}

	out := make([]models.Bill, len(bills))
	for i, b := range bills {
		for idx, s := range suppliers[b.BillNumber] {
			if s == b.Supplier && idx > 0 {
				b.BillNumber = fmt.Sprintf("%s-%d", b.BillNumber, idx)
				break
			}
		}
		out[i] = b
	}
	return out
}

// CountBills returns the number of distinct bill numbers.
func CountBills(bills []models.Bill) int {
	seen := map[string]bool{}
	for _, b := range bills {
		seen[b.BillNumber] = true
	}
	return len(seen)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Package reconciliation resolves fetched and uploaded records against the
// reference tables and the supplier catalog, and joins bill lines with their
// booking cost details.
package reconciliation

import (
	"context"
	"sort"

	"travelvat/internal/logger"
	"travelvat/internal/rules"
	"travelvat/pkg/models"
)

// Enrich resolves every input row against the reference snapshot. A supplier
// without a service type fails the whole batch; an area without an emirate is
// defaulted to NA/ROW and reported once.
func Enrich(inputs []models.VATInput, snapshot *rules.Snapshot) (Result, error) {
	const op = "Enrich"
	log := logger.WithComponent("reconciliation")

	records := make([]models.VATRecord, 0, len(inputs))
	unknownSuppliers := map[string]bool{}
	unknownAreas := map[string]bool{}

	for _, in := range inputs {
		rec := models.VATRecord{VATInput: in}

		supplier, ok := snapshot.Supplier(in.SupplierName)
		if !ok {
			unknownSuppliers[in.SupplierName] = true
			continue
		}
		rec.ServiceType = supplier.ServiceType
		rec.TaxesIncluded = supplier.TaxesIncluded

		if emirate, ok := snapshot.Emirate(in.AreaName); ok {
			rec.Emirate = emirate
			rec.Country = models.CountryUAE
		} else {
			rec.Emirate = models.EmirateUnmatched
			rec.Country = models.CountryROW
			unknownAreas[in.AreaName] = true
		}

		records = append(records, rec)
	}

	if len(unknownSuppliers) > 0 {
		err := &UnknownSuppliersError{Op: op, Suppliers: sortedKeys(unknownSuppliers)}
		log.Error().Strs("suppliers", err.Suppliers).Msg("Undefined suppliers, batch rejected")
		return Result{}, err
	}

	result := Result{Records: records, UnknownAreas: sortedKeys(unknownAreas)}
	if len(result.UnknownAreas) > 0 {
		log.Warn().
			Strs("areas", result.UnknownAreas).
			Msg("These areas will be considered ROW")
	}

	log.Info().
		Int("records", len(records)).
		Int("unknown_areas", len(result.UnknownAreas)).
		Msg("VAT records enriched")

	return result, nil
}

// ResolveInvoiceCategories sets the category of every invoice line from its
// supplier id. Unknown supplier ids fail the batch.
func ResolveInvoiceCategories(lines []models.InvoiceLine, catalog CategorySource) ([]models.InvoiceLine, error) {
	const op = "ResolveInvoiceCategories"

	out := make([]models.InvoiceLine, len(lines))
	unknown := map[string]bool{}
	for i, l := range lines {
		category, ok := catalog.Category(l.SupplierID)
		if !ok {
			unknown[l.SupplierID] = true
		}
		l.Category = category
		out[i] = l
	}

	if len(unknown) > 0 {
		return nil, &UnknownSuppliersError{Op: op, Suppliers: sortedKeys(unknown)}
	}
	return out, nil
}

// ResolveBillCategories sets the account of every bill line from its
// supplier id. Unknown supplier ids fail the batch.
func ResolveBillCategories(lines []models.BillLine, catalog CategorySource) ([]models.BillLine, error) {
	const op = "ResolveBillCategories"

	out := make([]models.BillLine, len(lines))
	unknown := map[string]bool{}
	for i, l := range lines {
		category, ok := catalog.Category(l.SupplierID)
		if !ok {
			unknown[l.SupplierID] = true
		}
		l.Category = category
		out[i] = l
	}

	if len(unknown) > 0 {
		return nil, &UnknownSuppliersError{Op: op, Suppliers: sortedKeys(unknown)}
	}
	return out, nil
}

// ResolveAccountManagers sets the account manager of every invoice line.
// A failed lookup leaves the field empty.
func ResolveAccountManagers(ctx context.Context, lines []models.InvoiceLine, source AccountManagerSource) []models.InvoiceLine {
	log := logger.WithComponent("reconciliation")

	out := make([]models.InvoiceLine, len(lines))
	failed := 0
	for i, l := range lines {
		manager, err := source.AccountManager(ctx, l.CustomerID)
		if err != nil {
			failed++
			log.Warn().Err(err).Str("customer_id", l.CustomerID).Msg("Account manager lookup failed")
		}
		l.AccountManager = manager
		out[i] = l
	}

	if failed > 0 {
		log.Warn().Int("failed", failed).Msg("Some invoice lines have no account manager")
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

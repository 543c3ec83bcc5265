package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"travelvat/internal/export"
	"travelvat/internal/logger"
	"travelvat/internal/period"
	"travelvat/internal/reconciliation"
)

var billsCmd = &cobra.Command{
	Use:   "bills",
	Short: "Export the supplier bills of one month as accounting import CSVs",
	Long: `Fetch the supplier side of the invoices issued between --from and --to,
look up the cost of every booking line concurrently, and write:

  bills_<from>_<to>_part<N>.csv      lines with a positive amount
  vendor_credit_<from>_<to>.csv      lines with a negative amount, as positive values

Amounts are converted to LEDGER_CURRENCY. A bill number shared by several
suppliers gets a -1, -2... suffix for every supplier after the first.
Both dates must be in the same month.

Required environment variables:
  JUNIPER_USER, JUNIPER_PASSWORD - export service credentials

Optional environment variables:
  OUTPUT_DIR          - where the CSVs are written (default: .)
  BILL_CHUNK_SIZE     - lines per part (default: 10000)
  BOOKING_WORKERS     - concurrent booking lookups (default: 1000)
  BOOKING_RATE_LIMIT  - booking lookups per second (default: 1000)`,
	Example: `  # Export March 2024
  travelvat bills --from 2024-03-01 --to 2024-03-31`,
	RunE: runBills,
}

func init() {
	rootCmd.AddCommand(billsCmd)

	addRangeFlags(billsCmd)
}

func runBills(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("bills")

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	r, err := period.Parse(from, to)
	if err != nil {
		return err
	}

	client, err := newJuniperClient()
	if err != nil {
		return err
	}

	log.Info().
		Str("range", r.String()).
		Str("ledger_currency", cfg.LedgerCurrency).
		Int("workers", cfg.BookingWorkers).
		Msg("Starting bill export")

	ctx := context.Background()

	catalog, catalogErr := client.FetchSuppliers(ctx)

	lines, err := client.FetchBillLines(ctx, r.FromParam(), r.ToParam())
	if err != nil {
		log.Warn().Err(err).Msg("Bill fetch failed, continuing with no bills")
	}
	if err := catalogRequired(catalogErr, len(lines)); err != nil {
		return err
	}

	lines, err = reconciliation.ResolveBillCategories(lines, catalog)
	if err != nil {
		return fmt.Errorf("failed to resolve bill categories: %w", err)
	}

	codes := make([]string, 0, len(lines))
	for _, l := range lines {
		codes = append(codes, l.BookingCode)
	}
	details := client.FetchBookingDetailsConcurrently(ctx, codes)

	bills := reconciliation.JoinBills(lines, details, cfg.LedgerCurrency)
	billCount := reconciliation.CountBills(bills)
	bills = reconciliation.SuffixDuplicateBills(bills)

	exporter := export.NewExporter(cfg.OutputDir)

	files, err := exporter.BillFiles(bills, r.FromParam(), r.ToParam(), cfg.BillChunkSize)
	if err != nil {
		return fmt.Errorf("failed to write bill files: %w", err)
	}

	credit, hasCredit, err := exporter.VendorCreditFile(bills, r.FromParam(), r.ToParam())
	if err != nil {
		return fmt.Errorf("failed to write vendor credit file: %w", err)
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                 BILLS")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Range: %s\n", r)
	fmt.Printf("Bills: %d\n", billCount)
	fmt.Printf("Lines: %d\n", len(bills))
	for _, f := range files {
		fmt.Printf("  %s (%d lines)\n", f.Path, f.Rows)
	}
	if hasCredit {
		fmt.Printf("  %s (%d lines)\n", credit.Path, credit.Rows)
	}
	fmt.Println(strings.Repeat("=", 50))

	log.Info().
		Int("bills", billCount).
		Int("lines", len(bills)).
		Int("files", len(files)).
		Bool("vendor_credit", hasCredit).
		Msg("Bill export completed")

	return nil
}

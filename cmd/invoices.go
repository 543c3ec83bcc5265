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
	"travelvat/internal/sheets"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Export the sales invoices of one month as accounting import CSVs",
	Long: `Fetch the sales invoices issued between --from and --to from the Juniper
export service, resolve each line's category from the supplier catalog and
its account manager from the customer record, and write:

  invoices_<from>_<to>_part<N>.csv   lines with a positive amount
  credit_memo_<from>_<to>.csv        lines with a negative amount

Invoices are never split across parts. Zero-amount lines are left out.
Both dates must be in the same month.

Required environment variables:
  JUNIPER_USER, JUNIPER_PASSWORD - export service credentials

Optional environment variables:
  OUTPUT_DIR          - where the CSVs are written (default: .)
  INVOICE_CHUNK_SIZE  - lines per part (default: 1000)
  GOOGLE_SHEET_URL    - required with --sheet`,
	Example: `  # Export March 2024
  travelvat invoices --from 2024-03-01 --to 2024-03-31

  # Also append the lines to a Google Sheet tab
  travelvat invoices --from 2024-03-01 --to 2024-03-31 --sheet "Invoices"`,
	RunE: runInvoices,
}

func init() {
	rootCmd.AddCommand(invoicesCmd)

	addRangeFlags(invoicesCmd)
	invoicesCmd.Flags().String("sheet", "", "Append the invoice lines to this tab of GOOGLE_SHEET_URL")
}

func runInvoices(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoices")

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	sheetName, _ := cmd.Flags().GetString("sheet")

	r, err := period.Parse(from, to)
	if err != nil {
		return err
	}
	if sheetName != "" && cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL environment variable is required with --sheet")
	}

	client, err := newJuniperClient()
	if err != nil {
		return err
	}

	log.Info().
		Str("range", r.String()).
		Str("ledger_currency", cfg.LedgerCurrency).
		Msg("Starting invoice export")

	ctx := context.Background()

	catalog, catalogErr := client.FetchSuppliers(ctx)

	batch, err := client.FetchInvoices(ctx, r.FromParam(), r.ToParam(), cfg.LedgerCurrency)
	if err != nil {
		log.Warn().Err(err).Msg("Invoice fetch failed, continuing with no invoices")
	}
	if err := catalogRequired(catalogErr, len(batch.Lines)); err != nil {
		return err
	}

	lines, err := reconciliation.ResolveInvoiceCategories(batch.Lines, catalog)
	if err != nil {
		return fmt.Errorf("failed to resolve invoice categories: %w", err)
	}
	lines = reconciliation.ResolveAccountManagers(ctx, lines, client)

	exporter := export.NewExporter(cfg.OutputDir)

	files, err := exporter.InvoiceFiles(lines, r.FromParam(), r.ToParam(), cfg.InvoiceChunkSize)
	if err != nil {
		return fmt.Errorf("failed to write invoice files: %w", err)
	}

	memo, hasMemo, err := exporter.CreditMemoFile(lines, r.FromParam(), r.ToParam())
	if err != nil {
		return fmt.Errorf("failed to write credit memo file: %w", err)
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                 INVOICES")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Range: %s\n", r)
	fmt.Printf("Invoices: %d\n", batch.InvoiceCount)
	fmt.Printf("Lines: %d\n", batch.LineCount)
	for _, f := range files {
		fmt.Printf("  %s (%d lines)\n", f.Path, f.Rows)
	}
	if hasMemo {
		fmt.Printf("  %s (%d lines)\n", memo.Path, memo.Rows)
	}

	if sheetName != "" {
		sheetsService, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			return fmt.Errorf("failed to initialize Google Sheets service: %w", err)
		}
		if err := sheetsService.AppendInvoiceLines(ctx, sheetName, lines); err != nil {
			return fmt.Errorf("failed to append invoice lines: %w", err)
		}
		fmt.Printf("Sheet: %s (%d lines appended)\n", sheetName, len(lines))
	}
	fmt.Println(strings.Repeat("=", 50))

	log.Info().
		Int("invoices", batch.InvoiceCount).
		Int("lines", len(lines)).
		Int("files", len(files)).
		Bool("credit_memo", hasMemo).
		Msg("Invoice export completed")

	return nil
}

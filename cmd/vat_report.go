package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"travelvat/internal/logger"
	"travelvat/internal/reconciliation"
	"travelvat/internal/report"
	"travelvat/internal/rules"
	"travelvat/internal/sheets"
	"travelvat/internal/vat"
	"travelvat/pkg/models"
)

var vatReportCmd = &cobra.Command{
	Use:   "vat-report",
	Short: "Build the quarterly VAT report workbook from a booking sales export",
	Long: `Read a booking sales export, enrich every row from the reference tables,
compute the VAT of each category and write the report workbook.

The export is read from the first worksheet of --file, or from the --sheet
tab of GOOGLE_SHEET_URL. Every supplier must have a service type in the
suppliers table and every emirate used by a taxed hotel or excursion row
must be in the VAT setup; otherwise nothing is written. Areas without an
emirate are reported as ROW.

The workbook is named after the quarter of the latest start date, for
example "VAT 1st QTR 31 MAR 2024.xlsx", and written to OUTPUT_DIR.

Optional environment variables:
  RULES_DIR         - reference tables (default: .)
  OUTPUT_DIR        - where the workbook is written (default: .)
  GOOGLE_SHEET_URL  - required with --sheet`,
	Example: `  # From an uploaded export
  travelvat vat-report --file "Booking sales Q1.xlsx"

  # From a Google Sheet tab
  travelvat vat-report --sheet "Q1 2024"`,
	RunE: runVATReport,
}

func init() {
	rootCmd.AddCommand(vatReportCmd)

	vatReportCmd.Flags().String("file", "", "Booking sales export (.xlsx)")
	vatReportCmd.Flags().String("sheet", "", "Read the export from this tab of GOOGLE_SHEET_URL")
	vatReportCmd.Flags().String("output", "", "Workbook file name (default: derived from the quarter)")
	vatReportCmd.MarkFlagsOneRequired("file", "sheet")
	vatReportCmd.MarkFlagsMutuallyExclusive("file", "sheet")
}

func runVATReport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("vat-report")

	file, _ := cmd.Flags().GetString("file")
	sheetName, _ := cmd.Flags().GetString("sheet")
	output, _ := cmd.Flags().GetString("output")

	ctx := context.Background()

	raw, inputs, err := readVATInput(ctx, file, sheetName)
	if err != nil {
		return err
	}

	log.Info().
		Int("rows", len(inputs)).
		Str("rules_dir", cfg.RulesDir).
		Msg("Booking sales export read")

	snapshot, err := rules.NewStore(cfg.RulesDir).LoadSnapshot()
	if err != nil {
		return fmt.Errorf("failed to load reference tables: %w", err)
	}

	result, err := reconciliation.Enrich(inputs, snapshot)
	if err != nil {
		return fmt.Errorf("failed to enrich booking rows: %w", err)
	}

	sections, err := vat.Compute(result.Records, snapshot)
	if err != nil {
		return fmt.Errorf("failed to compute VAT: %w", err)
	}

	if output == "" {
		output, err = report.ReportName(inputs)
		if err != nil {
			return fmt.Errorf("failed to name the report: %w", err)
		}
	}
	path := filepath.Join(cfg.OutputDir, output)

	f, err := report.BuildWorkbook(raw, result.Records, sections)
	if err != nil {
		return fmt.Errorf("failed to build workbook: %w", err)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}

	printVATSummary(path, result, sections)

	log.Info().
		Str("file", path).
		Int("records", len(result.Records)).
		Int("unknown_areas", len(result.UnknownAreas)).
		Msg("VAT report written")

	return nil
}

func readVATInput(ctx context.Context, file, sheetName string) (*reconciliation.RawTable, []models.VATInput, error) {
	if file != "" {
		raw, inputs, err := reconciliation.ReadVATInputXLSX(file)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read %s: %w", file, err)
		}
		return raw, inputs, nil
	}

	if cfg.GoogleSheetURL == "" {
		return nil, nil, fmt.Errorf("GOOGLE_SHEET_URL environment variable is required with --sheet")
	}
	sheetsService, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize Google Sheets service: %w", err)
	}
	raw, inputs, err := reconciliation.NewDataReader(sheetsService).ReadVATInput(ctx, sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	return raw, inputs, nil
}

func printVATSummary(path string, result reconciliation.Result, sections []vat.SectionRows) {
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("                 VAT REPORT")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Records: %d\n", len(result.Records))
	for _, sec := range sections {
		fmt.Printf("  %-12s %d\n", sec.Name, len(sec.Rows))
	}
	if len(result.UnknownAreas) > 0 {
		fmt.Printf("Areas reported as ROW: %s\n", strings.Join(result.UnknownAreas, ", "))
	}
	fmt.Printf("Workbook: %s\n", path)
	fmt.Println(strings.Repeat("=", 50))
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"travelvat/internal/logger"
	"travelvat/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show and edit the reference tables",
	Long: `Show and edit the reference tables kept as CSV files in RULES_DIR:

  suppliers  Supplier Name, Service Type, Taxes Included
  areas      Area, Emirate
  services   Service Type, VAT Exempt
  vat_setup  Emirate, Basic Division, Service Charge, Municipality Fee, VAT Percentage

A missing file is an empty table.`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list <table>",
	Short: "Print a reference table",
	Example: `  travelvat rules list suppliers
  travelvat rules list vat_setup`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesList,
}

var rulesUpsertCmd = &cobra.Command{
	Use:   "upsert <table> <column=value>...",
	Short: "Add a row to a reference table or replace the row with the same key",
	Long: `Add a row to a reference table, or replace the row whose key equals the
new row's key (last write wins).

A supplier's service type must be listed in the services table and an
area's emirate must have a VAT setup row.`,
	Example: `  travelvat rules upsert services "Service Type=Hotel Reservation" "VAT Exempt=False"
  travelvat rules upsert vat_setup Emirate=Dubai "Basic Division=1.2" "Service Charge=10" "Municipality Fee=7" "VAT Percentage=5"
  travelvat rules upsert areas Area=Marina Emirate=Dubai
  travelvat rules upsert suppliers "Supplier Name=Atlantis" "Service Type=Hotel Reservation" "Taxes Included=False"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRulesUpsert,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesUpsertCmd)

	rulesUpsertCmd.Flags().StringSlice("key", nil, "Key columns (default: the table's key)")
}

func runRulesList(cmd *cobra.Command, args []string) error {
	table, err := rules.NewStore(cfg.RulesDir).Load(args[0])
	if err != nil {
		return err
	}

	printTable(table)
	return nil
}

func runRulesUpsert(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("rules")

	name := args[0]
	keys, _ := cmd.Flags().GetStringSlice("key")

	row, err := rules.ParseRow(name, args[1:])
	if err != nil {
		return err
	}

	store := rules.NewStore(cfg.RulesDir)
	if err := store.Validate(name, row); err != nil {
		return err
	}

	table, err := store.Upsert(name, row, keys...)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}

	printTable(table)

	log.Info().
		Str("table", name).
		Int("rows", table.Len()).
		Msg("Reference table updated")

	return nil
}

func printTable(table *rules.Table) {
	widths := make([]int, len(table.Columns))
	for i, col := range table.Columns {
		widths[i] = len(col)
		for _, row := range table.Rows {
			widths[i] = max(widths[i], len(row[col]))
		}
	}

	line := func(cells func(i int) string) {
		parts := make([]string, len(widths))
		for i, w := range widths {
			parts[i] = fmt.Sprintf("%-*s", w, cells(i))
		}
		fmt.Println(strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	line(func(i int) string { return table.Columns[i] })
	for _, row := range table.Rows {
		line(func(i int) string { return row[table.Columns[i]] })
	}
	fmt.Printf("\n%s: %d rows\n", table.Name, table.Len())
}

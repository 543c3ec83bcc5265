package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"travelvat/internal/logger"
)

var suppliersCmd = &cobra.Command{
	Use:   "suppliers",
	Short: "List the Juniper supplier catalog with its accounting categories",
	Long: `Download the supplier list from the Juniper export service and print each
supplier id with its category.

Required environment variables:
  JUNIPER_USER, JUNIPER_PASSWORD - export service credentials`,
	Example: `  # List all suppliers
  travelvat suppliers

  # Only suppliers of one category
  travelvat suppliers --category "Static Hotel"`,
	RunE: runSuppliers,
}

func init() {
	rootCmd.AddCommand(suppliersCmd)

	suppliersCmd.Flags().String("category", "", "Only list suppliers of this category")
}

func runSuppliers(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("suppliers")

	category, _ := cmd.Flags().GetString("category")

	client, err := newJuniperClient()
	if err != nil {
		return err
	}

	catalog, err := client.FetchSuppliers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to fetch supplier catalog: %w", err)
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("%-15s %-6s %s\n", "SUPPLIER ID", "CAT", "CATEGORY")
	fmt.Println(strings.Repeat("=", 50))

	listed := 0
	for _, s := range catalog.Suppliers() {
		if category != "" && !strings.EqualFold(s.CategoryName, category) {
			continue
		}
		fmt.Printf("%-15s %-6s %s\n", s.ID, s.CategoryID, s.CategoryName)
		listed++
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Suppliers: %d\n", listed)

	log.Info().
		Int("suppliers", catalog.Len()).
		Int("listed", listed).
		Msg("Supplier catalog listed")

	return nil
}

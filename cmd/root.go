package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"travelvat/internal/config"
	"travelvat/internal/juniper"
	"travelvat/internal/logger"
)

var version = "1.0.0"

// cfg is set by Execute before any command runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "travelvat",
	Short: "travelvat - VAT reporting and accounting exports for a travel agency",
	Long: `travelvat pulls invoices, bills and booking costs from the Juniper
export service, turns them into accounting import CSVs, and builds the
quarterly VAT report workbook from a booking export.

Reference tables (suppliers, areas, services, VAT setup) live as CSV files
in RULES_DIR and are maintained with the rules command.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("travelvat executed")

		fmt.Println("Welcome to travelvat!")
		fmt.Println("Use --help to see available commands and options.")
	},
}

// Execute runs the root command with the loaded configuration.
func Execute(c *config.Config) {
	log := logger.WithComponent("cmd")
	cfg = c

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

// newJuniperClient builds the export service client from the configuration.
func newJuniperClient() (*juniper.Client, error) {
	if err := cfg.RequireJuniper(); err != nil {
		return nil, err
	}
	return juniper.NewClient(juniper.Options{
		BaseURL:       cfg.JuniperBaseURL,
		User:          cfg.JuniperUser,
		Password:      cfg.JuniperPassword,
		Timeout:       cfg.JuniperTimeout,
		Workers:       cfg.BookingWorkers,
		RatePerSecond: cfg.BookingRateLimit,
	}), nil
}

// addRangeFlags registers the --from/--to flags shared by the export commands.
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "First day of the range (format: YYYY-MM-DD) [REQUIRED]")
	cmd.Flags().String("to", "", "Last day of the range, same month as --from (format: YYYY-MM-DD) [REQUIRED]")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
}

// catalogRequired returns the supplier catalog fetch error when there are
// lines to categorize. Without the catalog every supplier would be reported
// as undefined.
func catalogRequired(fetchErr error, lines int) error {
	if fetchErr != nil && lines > 0 {
		return fmt.Errorf("failed to fetch supplier catalog: %w", fetchErr)
	}
	return nil
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}

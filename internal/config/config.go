package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"travelvat/internal/logger"
)

// ErrMissingCredentials is returned when a command needs the Juniper export
// service but no credentials are configured.
var ErrMissingCredentials = errors.New("missing Juniper credentials")

type Config struct {
	// Juniper export web service
	JuniperUser     string
	JuniperPassword string
	JuniperBaseURL  string
	JuniperTimeout  time.Duration

	// Booking detail fetch
	BookingWorkers   int
	BookingRateLimit int

	// Ledger
	LedgerCurrency string

	// Flat files
	RulesDir  string
	OutputDir string

	// CSV batching
	InvoiceChunkSize int
	BillChunkSize    int

	// Google Sheets (optional)
	GoogleSheetURL string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		JuniperUser:      getEnv("JUNIPER_USER", ""),
		JuniperPassword:  getEnv("JUNIPER_PASSWORD", ""),
		JuniperBaseURL:   getEnv("JUNIPER_BASE_URL", "https://www.gte.travel/wsExportacion"),
		JuniperTimeout:   time.Duration(getEnvInt("JUNIPER_TIMEOUT_SECONDS", 120)) * time.Second,
		BookingWorkers:   getEnvInt("BOOKING_WORKERS", 1000),
		BookingRateLimit: getEnvInt("BOOKING_RATE_LIMIT", 1000),
		LedgerCurrency:   getEnv("LEDGER_CURRENCY", "AED"),
		RulesDir:         getEnv("RULES_DIR", "."),
		OutputDir:        getEnv("OUTPUT_DIR", "."),
		InvoiceChunkSize: getEnvInt("INVOICE_CHUNK_SIZE", 1000),
		BillChunkSize:    getEnvInt("BILL_CHUNK_SIZE", 10000),
		GoogleSheetURL:   getEnv("GOOGLE_SHEET_URL", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:    getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:        getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.BookingWorkers <= 0 {
		return fmt.Errorf("BOOKING_WORKERS must be positive")
	}
	if c.BookingRateLimit <= 0 {
		return fmt.Errorf("BOOKING_RATE_LIMIT must be positive")
	}
	if c.InvoiceChunkSize <= 0 {
		return fmt.Errorf("INVOICE_CHUNK_SIZE must be positive")
	}
	if c.BillChunkSize <= 0 {
		return fmt.Errorf("BILL_CHUNK_SIZE must be positive")
	}
	if c.LedgerCurrency == "" {
		return fmt.Errorf("LEDGER_CURRENCY is required")
	}
	return nil
}

// RequireJuniper reports whether the export service credentials are set.
func (c *Config) RequireJuniper() error {
	if c.JuniperUser == "" || c.JuniperPassword == "" {
		return fmt.Errorf("%w: JUNIPER_USER and JUNIPER_PASSWORD are required", ErrMissingCredentials)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

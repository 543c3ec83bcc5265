package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"JUNIPER_USER", "JUNIPER_PASSWORD", "JUNIPER_BASE_URL", "BOOKING_WORKERS",
		"LEDGER_CURRENCY", "INVOICE_CHUNK_SIZE", "BILL_CHUNK_SIZE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://www.gte.travel/wsExportacion", cfg.JuniperBaseURL)
	assert.Equal(t, 120*time.Second, cfg.JuniperTimeout)
	assert.Equal(t, 1000, cfg.BookingWorkers)
	assert.Equal(t, 1000, cfg.BookingRateLimit)
	assert.Equal(t, "AED", cfg.LedgerCurrency)
	assert.Equal(t, 1000, cfg.InvoiceChunkSize)
	assert.Equal(t, 10000, cfg.BillChunkSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BOOKING_WORKERS", "8")
	t.Setenv("INVOICE_CHUNK_SIZE", "250")
	t.Setenv("LEDGER_CURRENCY", "USD")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.BookingWorkers)
	assert.Equal(t, 250, cfg.InvoiceChunkSize)
	assert.Equal(t, "USD", cfg.LedgerCurrency)
}

func TestLoadRejectsNonPositiveChunkSize(t *testing.T) {
	t.Setenv("BILL_CHUNK_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestRequireJuniper(t *testing.T) {
	cfg := &Config{}
	err := cfg.RequireJuniper()
	assert.True(t, errors.Is(err, ErrMissingCredentials))

	cfg.JuniperUser = "agent"
	cfg.JuniperPassword = "secret"
	assert.NoError(t, cfg.RequireJuniper())
}

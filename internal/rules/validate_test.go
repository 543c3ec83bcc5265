package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRow(t *testing.T) {
	row, err := ParseRow(Suppliers, []string{"supplier name=Atlantis The Palm", "Service Type = Hotel Reservation"})
	require.NoError(t, err)
	assert.Equal(t, Row{ColSupplierName: "Atlantis The Palm", ColServiceType: "Hotel Reservation"}, row)

	_, err = ParseRow(Suppliers, []string{"Atlantis"})
	assert.Error(t, err)

	_, err = ParseRow(Areas, []string{"Country=UAE"})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = ParseRow("customers", nil)
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestValidateWithoutServices(t *testing.T) {
	store := NewStore(t.TempDir())

	err := store.Validate(Suppliers, Row{ColSupplierName: "Atlantis", ColServiceType: "Cruise"})
	assert.NoError(t, err)

	err = store.Validate(Areas, Row{ColArea: "Marina", ColEmirate: "Dubai"})
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestValidate(t *testing.T) {
	store := NewStore(t.TempDir())
	_, err := store.Upsert(Services, Row{ColServiceType: "Hotel Reservation", ColVATExempt: "False"})
	require.NoError(t, err)
	_, err = store.Upsert(VATSetup, Row{ColEmirate: "Dubai", ColBasicDivision: "1.05", ColServiceCharge: "10", ColMunicipalityFee: "7", ColVATPercentage: "5"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		table   string
		row     Row
		wantErr bool
	}{
		{"known service", Suppliers, Row{ColSupplierName: "Atlantis", ColServiceType: "Hotel Reservation"}, false},
		{"unknown service", Suppliers, Row{ColSupplierName: "Atlantis", ColServiceType: "Cruise"}, true},
		{"known emirate", Areas, Row{ColArea: "Marina", ColEmirate: "Dubai"}, false},
		{"unknown emirate", Areas, Row{ColArea: "Corniche", ColEmirate: "Abu Dhabi"}, true},
		{"numeric setup", VATSetup, Row{ColEmirate: "Ajman", ColBasicDivision: "1.1", ColServiceCharge: "0", ColMunicipalityFee: "0", ColVATPercentage: "5"}, false},
		{"bad setup number", VATSetup, Row{ColEmirate: "Ajman", ColBasicDivision: "x", ColServiceCharge: "0", ColMunicipalityFee: "0", ColVATPercentage: "5"}, true},
		{"services are free form", Services, Row{ColServiceType: "Cruise"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Validate(tt.table, tt.row)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidValue)
				return
			}
			assert.NoError(t, err)
		})
	}
}

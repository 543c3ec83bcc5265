package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SupplierRule is a row of the suppliers table.
type SupplierRule struct {
	Name          string
	ServiceType   string
	TaxesIncluded bool
}

// ServiceRule is a row of the services table.
type ServiceRule struct {
	ServiceType string
	VATExempt   bool
}

// VATRule holds the rate parameters of one emirate. Percentages are stored
// as written in the setup (5 means 5%).
type VATRule struct {
	Emirate         string
	BasicDivision   decimal.Decimal
	ServiceCharge   decimal.Decimal
	MunicipalityFee decimal.Decimal
	VATPercentage   decimal.Decimal
}

// Snapshot is a read-only view of all reference tables taken once per run.
type Snapshot struct {
	suppliers map[string]SupplierRule
	areas     map[string]string
	services  map[string]ServiceRule
	vat       map[string]VATRule
}

// NewSnapshot builds a snapshot from typed rules. Later entries win on
// duplicate keys.
func NewSnapshot(suppliers []SupplierRule, areas map[string]string, services []ServiceRule, vat []VATRule) *Snapshot {
	s := &Snapshot{
		suppliers: make(map[string]SupplierRule, len(suppliers)),
		areas:     make(map[string]string, len(areas)),
		services:  make(map[string]ServiceRule, len(services)),
		vat:       make(map[string]VATRule, len(vat)),
	}
	for _, r := range suppliers {
		s.suppliers[r.Name] = r
	}
	for area, emirate := range areas {
		s.areas[area] = emirate
	}
	for _, r := range services {
		s.services[r.ServiceType] = r
	}
	for _, r := range vat {
		s.vat[r.Emirate] = r
	}
	return s
}

// Supplier looks up a supplier by name.
func (s *Snapshot) Supplier(name string) (SupplierRule, bool) {
	r, ok := s.suppliers[name]
	return r, ok
}

// Emirate looks up the emirate of an area.
func (s *Snapshot) Emirate(area string) (string, bool) {
	e, ok := s.areas[area]
	return e, ok
}

// Service looks up a service type.
func (s *Snapshot) Service(serviceType string) (ServiceRule, bool) {
	r, ok := s.services[serviceType]
	return r, ok
}

// VAT looks up the VAT parameters of an emirate.
func (s *Snapshot) VAT(emirate string) (VATRule, bool) {
	r, ok := s.vat[emirate]
	return r, ok
}

// LoadSnapshot reads every reference table once.
func (s *Store) LoadSnapshot() (*Snapshot, error) {
	const op = "LoadSnapshot"

	suppliersTable, err := s.Load(Suppliers)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	areasTable, err := s.Load(Areas)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	servicesTable, err := s.Load(Services)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	vatTable, err := s.Load(VATSetup)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var suppliers []SupplierRule
	for _, row := range suppliersTable.Rows {
		suppliers = append(suppliers, SupplierRule{
			Name:          row[ColSupplierName],
			ServiceType:   row[ColServiceType],
			TaxesIncluded: parseFlag(row[ColTaxesIncluded]),
		})
	}

	areas := make(map[string]string, areasTable.Len())
	for _, row := range areasTable.Rows {
		areas[row[ColArea]] = row[ColEmirate]
	}

	var services []ServiceRule
	for _, row := range servicesTable.Rows {
		services = append(services, ServiceRule{
			ServiceType: row[ColServiceType],
			VATExempt:   parseFlag(row[ColVATExempt]),
		})
	}

	var vat []VATRule
	for i, row := range vatTable.Rows {
		rule, err := parseVATRule(row)
		if err != nil {
			return nil, fmt.Errorf("%s: vat_setup row %d: %w", op, i+2, err)
		}
		vat = append(vat, rule)
	}

	s.log.Info().
		Int("suppliers", len(suppliers)).
		Int("areas", len(areas)).
		Int("services", len(services)).
		Int("emirates", len(vat)).
		Msg("Reference snapshot loaded")

	return NewSnapshot(suppliers, areas, services, vat), nil
}

func parseVATRule(row Row) (VATRule, error) {
	rule := VATRule{Emirate: row[ColEmirate]}

	fields := []struct {
		col string
		dst *decimal.Decimal
	}{
		{ColBasicDivision, &rule.BasicDivision},
		{ColServiceCharge, &rule.ServiceCharge},
		{ColMunicipalityFee, &rule.MunicipalityFee},
		{ColVATPercentage, &rule.VATPercentage},
	}
	for _, f := range fields {
		raw := strings.TrimSpace(row[f.col])
		if raw == "" {
			*f.dst = decimal.Zero
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return VATRule{}, fmt.Errorf("invalid %s %q: %w", f.col, raw, err)
		}
		*f.dst = v
	}
	return rule, nil
}

// parseFlag accepts the spellings pandas and spreadsheet users produce.
func parseFlag(raw string) bool {
	raw = strings.TrimSpace(raw)
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	switch strings.ToLower(raw) {
	case "yes", "y", "x":
		return true
	}
	return false
}

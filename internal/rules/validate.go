package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidValue is returned when a row references a value the other
// tables do not define, or carries a malformed number.
var ErrInvalidValue = errors.New("invalid reference value")

// ParseRow reads column=value assignments into a row of the named table.
// Column names match the schema case-insensitively.
func ParseRow(name string, assignments []string) (Row, error) {
	const op = "ParseRow"

	schema, err := SchemaFor(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	row := make(Row, len(assignments))
	for _, a := range assignments {
		col, value, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("%s: %q is not column=value", op, a)
		}
		canonical := ""
		for _, c := range schema.Columns {
			if strings.EqualFold(c, strings.TrimSpace(col)) {
				canonical = c
				break
			}
		}
		if canonical == "" {
			return nil, fmt.Errorf("%s: %w: no column %q in %s (columns: %s)",
				op, ErrInvalidValue, col, name, strings.Join(schema.Columns, ", "))
		}
		row[canonical] = strings.TrimSpace(value)
	}
	return row, nil
}

// Validate checks row against the other reference tables before it is
// stored. A supplier's service type must be a configured service once any
// service exists. An area's emirate must have a VAT setup. VAT setup values
// must be numbers.
func (s *Store) Validate(name string, row Row) error {
	const op = "Validate"

	switch name {
	case Suppliers:
		known, err := s.ServiceTypes()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		// an empty services table does not constrain suppliers
		if len(known) > 0 && !oneOf(known, row[ColServiceType]) {
			return fmt.Errorf("%s: %w: service type %q is not one of [%s]",
				op, ErrInvalidValue, row[ColServiceType], strings.Join(known, ", "))
		}
	case Areas:
		known, err := s.Emirates()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !oneOf(known, row[ColEmirate]) {
			return fmt.Errorf("%s: %w: emirate %q is not one of [%s]",
				op, ErrInvalidValue, row[ColEmirate], strings.Join(known, ", "))
		}
	case VATSetup:
		for _, col := range []string{ColBasicDivision, ColServiceCharge, ColMunicipalityFee, ColVATPercentage} {
			if _, err := decimal.NewFromString(row[col]); err != nil {
				return fmt.Errorf("%s: %w: %s %q is not a number", op, ErrInvalidValue, col, row[col])
			}
		}
	}
	return nil
}

func oneOf(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

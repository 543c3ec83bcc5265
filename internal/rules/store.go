// Package rules persists the small reference tables (suppliers, areas,
// service types and VAT setup) as flat CSV files.
//
// A missing file is a valid initial state: Load returns an empty table with
// the table's default schema. Tables change only through Upsert, which
// replaces rows with the same key and appends otherwise (last write wins).
package rules

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"travelvat/internal/logger"
)

// Table names.
const (
	Suppliers = "suppliers"
	Areas     = "areas"
	Services  = "services"
	VATSetup  = "vat_setup"
)

// Column names, as written by the original rule editors.
const (
	ColSupplierName    = "Supplier Name"
	ColServiceType     = "Service Type"
	ColTaxesIncluded   = "Taxes Included"
	ColArea            = "Area"
	ColEmirate         = "Emirate"
	ColVATExempt       = "VAT Exempt"
	ColBasicDivision   = "Basic Division"
	ColServiceCharge   = "Service Charge"
	ColMunicipalityFee = "Municipality Fee"
	ColVATPercentage   = "VAT Percentage"
)

// Schema describes a reference table.
type Schema struct {
	Name    string
	File    string
	Columns []string
	Key     []string
}

var schemas = map[string]Schema{
	Suppliers: {
		Name:    Suppliers,
		File:    "suppliers.csv",
		Columns: []string{ColSupplierName, ColServiceType, ColTaxesIncluded},
		Key:     []string{ColSupplierName},
	},
	Areas: {
		Name:    Areas,
		File:    "areas.csv",
		Columns: []string{ColArea, ColEmirate},
		Key:     []string{ColArea},
	},
	Services: {
		Name:    Services,
		File:    "services.csv",
		Columns: []string{ColServiceType, ColVATExempt},
		Key:     []string{ColServiceType},
	},
	VATSetup: {
		Name:    VATSetup,
		File:    "vat_setup.csv",
		Columns: []string{ColEmirate, ColBasicDivision, ColServiceCharge, ColMunicipalityFee, ColVATPercentage},
		Key:     []string{ColEmirate},
	},
}

// ErrUnknownTable is returned for a table name without a schema.
var ErrUnknownTable = errors.New("unknown reference table")

// SchemaFor returns the schema of a named table.
func SchemaFor(name string) (Schema, error) {
	s, ok := schemas[name]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return s, nil
}

// TableNames lists the known tables in a stable order.
func TableNames() []string {
	return []string{Suppliers, Areas, Services, VATSetup}
}

// Row is one table row keyed by column name.
type Row map[string]string

// Table is an in-memory reference table.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Store reads and writes reference tables below a directory.
type Store struct {
	dir string
	log zerolog.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{
		dir: dir,
		log: logger.WithComponent("rules"),
	}
}

func (s *Store) path(schema Schema) string {
	return filepath.Join(s.dir, schema.File)
}

// Load returns the named table, or an empty table with the default schema
// when the file does not exist yet.
func (s *Store) Load(name string) (*Table, error) {
	const op = "Load"

	schema, err := SchemaFor(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	table := &Table{Name: name, Columns: append([]string(nil), schema.Columns...)}

	f, err := os.Open(s.path(schema))
	if errors.Is(err, fs.ErrNotExist) {
		s.log.Debug().Str("table", name).Msg("Reference file not found, using empty table")
		return table, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open %s: %w", op, schema.File, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read %s: %w", op, schema.File, err)
	}

	if len(records) == 0 {
		return table, nil
	}

	table.Columns = mergeColumns(records[0], schema.Columns)
	for _, record := range records[1:] {
		row := make(Row, len(table.Columns))
		for i, col := range records[0] {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}

	s.log.Debug().Str("table", name).Int("rows", len(table.Rows)).Msg("Reference table loaded")

	return table, nil
}

// Save writes the table to its file, replacing any previous content.
func (s *Store) Save(table *Table) error {
	const op = "Save"

	schema, err := SchemaFor(table.Name)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%s: failed to create %s: %w", op, s.dir, err)
	}

	// temp file + rename: the previous table survives a failed write
	target := s.path(schema)
	tmp, err := os.CreateTemp(s.dir, schema.File+".*")
	if err != nil {
		return fmt.Errorf("%s: failed to create temp file: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.Write(table.Columns); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: failed to write header: %w", op, err)
	}
	for _, row := range table.Rows {
		record := make([]string, len(table.Columns))
		for i, col := range table.Columns {
			record[i] = row[col]
		}
		if err := writer.Write(record); err != nil {
			tmp.Close()
			return fmt.Errorf("%s: failed to write row: %w", op, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: failed to flush %s: %w", op, schema.File, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: failed to close temp file: %w", op, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("%s: failed to replace %s: %w", op, schema.File, err)
	}

	return nil
}

// Upsert replaces the rows of the named table whose key columns equal those
// of row, or appends row when none match, and persists the table. Without
// keyColumns the table's default key is used.
func (s *Store) Upsert(name string, row Row, keyColumns ...string) (*Table, error) {
	const op = "Upsert"

	schema, err := SchemaFor(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(keyColumns) == 0 {
		keyColumns = schema.Key
	}

	table, err := s.Load(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, col := range keyColumns {
		if !oneOf(table.Columns, col) {
			return nil, fmt.Errorf("%s: %w: key column %q not in %s", op, ErrInvalidValue, col, name)
		}
		if row[col] == "" {
			return nil, fmt.Errorf("%s: key column %q is empty", op, col)
		}
	}

	stored := make(Row, len(table.Columns))
	for _, col := range table.Columns {
		stored[col] = row[col]
	}

	replaced := false
	kept := table.Rows[:0]
	for _, existing := range table.Rows {
		if !sameKey(existing, stored, keyColumns) {
			kept = append(kept, existing)
			continue
		}
		if !replaced {
			kept = append(kept, stored)
			replaced = true
		}
	}
	if !replaced {
		kept = append(kept, stored)
	}
	table.Rows = kept

	if err := s.Save(table); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info().
		Str("table", name).
		Strs("key", keyColumns).
		Bool("replaced", replaced).
		Int("rows", len(table.Rows)).
		Msg("Reference row saved")

	return table, nil
}

// Distinct returns the distinct non-empty values of column in file order.
func (s *Store) Distinct(name, column string) ([]string, error) {
	table, err := s.Load(name)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var values []string
	for _, row := range table.Rows {
		v := row[column]
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values, nil
}

// Emirates lists the emirates configured in the VAT setup.
func (s *Store) Emirates() ([]string, error) {
	return s.Distinct(VATSetup, ColEmirate)
}

// ServiceTypes lists the configured service types.
func (s *Store) ServiceTypes() ([]string, error) {
	return s.Distinct(Services, ColServiceType)
}

func sameKey(a, b Row, keyColumns []string) bool {
	for _, col := range keyColumns {
		if a[col] != b[col] {
			return false
		}
	}
	return true
}

// mergeColumns keeps the file's column order and appends schema columns the
// file does not have yet.
func mergeColumns(header, schema []string) []string {
	columns := append([]string(nil), header...)
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	for _, col := range schema {
		if !present[col] {
			columns = append(columns, col)
		}
	}
	return columns
}

package reconciliation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownSupplier is matched by every *UnknownSuppliersError.
	ErrUnknownSupplier = errors.New("unknown supplier")

	// ErrMissingColumn is returned when the uploaded report lacks a required column.
	ErrMissingColumn = errors.New("missing column")

	// ErrEmptyReport is returned when the uploaded report has no header row.
	ErrEmptyReport = errors.New("empty report")
)

// UnknownSuppliersError lists every supplier of a batch that has no mapping.
// The batch is rejected as a whole.
type UnknownSuppliersError struct {
	Op        string
	Suppliers []string // sorted, distinct
}

func (e *UnknownSuppliersError) Error() string {
	return fmt.Sprintf("%s: undefined supplier(s): %s", e.Op, strings.Join(e.Suppliers, ", "))
}

// Is lets errors.Is match ErrUnknownSupplier.
func (e *UnknownSuppliersError) Is(target error) bool {
	return target == ErrUnknownSupplier
}

// RowError locates a value of the uploaded report that could not be parsed.
type RowError struct {
	Row    int // 1-based, header is row 1
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d, column %q: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

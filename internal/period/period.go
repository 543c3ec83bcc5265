// Package period validates the date range of an invoice or bill export.
package period

import (
	"errors"
	"fmt"
	"time"
)

const (
	inputLayout  = "2006-01-02"
	remoteLayout = "20060102"
)

// ErrInvalidRange is matched by every ValidationError.
var ErrInvalidRange = errors.New("invalid date range")

// ValidationError represents a rejected range flag.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// Is reports ErrInvalidRange.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidRange
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// Range is an inclusive date range inside one calendar month.
type Range struct {
	From time.Time
	To   time.Time
}

// Parse reads from and to as YYYY-MM-DD. Both must fall in the same month
// and year, and from must not be after to.
func Parse(from, to string) (Range, error) {
	start, err := time.Parse(inputLayout, from)
	if err != nil {
		return Range{}, NewValidationError("from", from, "expected YYYY-MM-DD")
	}
	end, err := time.Parse(inputLayout, to)
	if err != nil {
		return Range{}, NewValidationError("to", to, "expected YYYY-MM-DD")
	}
	if start.After(end) {
		return Range{}, NewValidationError("to", to, "must not be before "+from)
	}
	if start.Year() != end.Year() || start.Month() != end.Month() {
		return Range{}, NewValidationError("to", to, "must be in the same month as "+from)
	}
	return Range{From: start, To: end}, nil
}

// FromParam is the start date in the remote service's YYYYMMDD form.
func (r Range) FromParam() string {
	return r.From.Format(remoteLayout)
}

// ToParam is the end date in the remote service's YYYYMMDD form.
func (r Range) ToParam() string {
	return r.To.Format(remoteLayout)
}

func (r Range) String() string {
	return r.From.Format(inputLayout) + ".." + r.To.Format(inputLayout)
}

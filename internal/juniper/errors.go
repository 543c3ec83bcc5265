package juniper

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedStatus is returned when the export service answers with a
	// non-200 status code.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrMalformedResponse is returned when the response body is not XML.
	ErrMalformedResponse = errors.New("malformed XML response")
)

// FetchError describes a failed call to the export service. Operations that
// fail this way still return an empty result, so callers can report the
// error and carry on with zero counts.
type FetchError struct {
	// Op is the client operation (e.g. "FetchInvoices").
	Op string

	// Endpoint is the service path that was called.
	Endpoint string

	// StatusCode is the HTTP status, zero when the request never completed.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("juniper: %s failed (%s, status %d): %v", e.Op, e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("juniper: %s failed (%s): %v", e.Op, e.Endpoint, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

func newFetchError(op, endpoint string, status int, err error) *FetchError {
	return &FetchError{Op: op, Endpoint: endpoint, StatusCode: status, Err: err}
}

// Package juniper talks to the Juniper "wsExportacion" web service.
//
// Every operation posts a fixed set of form fields and parses the XML answer
// with descendant queries, so the nesting depth of the response does not
// matter. Missing attributes and elements parse as "" or zero; they never
// fail a call.
//
// Failed calls (network errors, non-200 answers, unparseable bodies) are
// returned as *FetchError together with an empty result.
package juniper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"travelvat/internal/logger"
)

// Service paths below the base URL.
const (
	supplierListPath = "wssuppliers.asmx/getSupplierList"
	customerListPath = "wsCustomers.asmx/getCustomerList"
	invoicesPath     = "wsinvoices.asmx/GetInvoices"
	bookingsPath     = "wsbookings.asmx/getBookings"
)

// DefaultBaseURL is the production export service.
const DefaultBaseURL = "https://www.gte.travel/wsExportacion"

// Options configures a Client.
type Options struct {
	BaseURL  string
	User     string
	Password string

	// Timeout bounds a single HTTP call. Default: 2 minutes.
	Timeout time.Duration

	// Workers caps concurrent booking lookups. Default: 1000.
	Workers int

	// RatePerSecond caps booking lookups per second. Default: 1000.
	RatePerSecond int

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client calls the export service.
type Client struct {
	baseURL  string
	user     string
	password string
	http     *http.Client
	limiter  *rate.Limiter
	workers  int
	log      zerolog.Logger

	mu       sync.Mutex
	managers map[string]string
}

// NewClient creates a client from opts, filling in defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}
	if opts.Workers <= 0 {
		opts.Workers = 1000
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 1000
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		user:     opts.User,
		password: opts.Password,
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.RatePerSecond),
		workers:  opts.Workers,
		log:      logger.WithComponent("juniper"),
		managers: make(map[string]string),
	}
}

// form builds the request body: credentials, every field of the operation
// (empty unless set) and the given values.
func (c *Client) form(fields []string, values map[string]string) url.Values {
	form := url.Values{}
	form.Set("user", c.user)
	form.Set("password", c.password)
	for _, f := range fields {
		form.Set(f, values[f])
	}
	return form
}

// post sends a form-encoded request and parses the XML answer.
func (c *Client) post(ctx context.Context, op, path string, form url.Values) (*xmlquery.Node, error) {
	endpoint := c.baseURL + "/" + path

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, newFetchError(op, path, 0, fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, newFetchError(op, path, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, newFetchError(op, path, resp.StatusCode, fmt.Errorf("%w: %s", ErrUnexpectedStatus, strings.TrimSpace(string(body))))
	}

	doc, err := xmlquery.Parse(resp.Body)
	if err != nil {
		return nil, newFetchError(op, path, resp.StatusCode, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}

	c.log.Debug().
		Str("op", op).
		Str("endpoint", path).
		Dur("duration", time.Since(start)).
		Msg("Export service call completed")

	return doc, nil
}

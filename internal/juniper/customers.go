package juniper

import (
	"context"
)

var customerFields = []string{
	"customerType",
	"creationDateFrom",
	"creationDateTo",
	"id",
	"BranchType",
	"ExportMode",
	"LastModifiedDateFrom",
	"LastModifiedDateTo",
	"LastModifiedTimeFrom",
	"LastModifiedTimeTo",
	"AmountBaseCurrency",
}

// AccountManager returns the account manager of a customer, "" when the
// customer has none. Answers are memoised for the lifetime of the client.
func (c *Client) AccountManager(ctx context.Context, customerID string) (string, error) {
	const op = "AccountManager"

	if customerID == "" {
		return "", nil
	}

	c.mu.Lock()
	manager, ok := c.managers[customerID]
	c.mu.Unlock()
	if ok {
		return manager, nil
	}

	doc, err := c.post(ctx, op, customerListPath, c.form(customerFields, map[string]string{"id": customerID}))
	if err != nil {
		return "", err
	}

	manager = text(doc, "//AccountManager")
	if manager == "" {
		c.log.Warn().Str("customer_id", customerID).Msg("No account manager found")
	}

	c.mu.Lock()
	c.managers[customerID] = manager
	c.mu.Unlock()

	return manager, nil
}

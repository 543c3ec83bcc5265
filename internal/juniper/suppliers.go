package juniper

import (
	"context"

	"github.com/antchfx/xmlquery"
	"travelvat/pkg/models"
)

// CategoryOthers is the category of suppliers without a known category id.
const CategoryOthers = "Others"

var categoryNames = map[string]string{
	"1": "Cross Sell Hotel",
	"2": "Dynamic Hotel",
	"3": "Static Hotel",
	"4": "Extranet Hotel",
	"5": "XML Hotel",
	"6": "Tickets",
	"7": "Offline Hotel",
	"8": "Excursions",
	"9": "Visa",
}

// CategoryName maps a supplier category id to its name.
func CategoryName(id string) string {
	if name, ok := categoryNames[id]; ok {
		return name
	}
	return CategoryOthers
}

var supplierFields = []string{"SupplierId", "ExportMode", "creationDateFrom", "creationDateTo"}

// SupplierCatalog is the supplier list fetched once per run.
type SupplierCatalog struct {
	byID  map[string]models.Supplier
	order []string
}

// NewSupplierCatalog builds a catalog; later duplicates replace earlier ones.
func NewSupplierCatalog(suppliers []models.Supplier) *SupplierCatalog {
	c := &SupplierCatalog{byID: make(map[string]models.Supplier, len(suppliers))}
	for _, s := range suppliers {
		if _, seen := c.byID[s.ID]; !seen {
			c.order = append(c.order, s.ID)
		}
		c.byID[s.ID] = s
	}
	return c
}

// Category returns the category name of a supplier id.
func (c *SupplierCatalog) Category(supplierID string) (string, bool) {
	if c == nil {
		return "", false
	}
	s, ok := c.byID[supplierID]
	if !ok {
		return "", false
	}
	return s.CategoryName, true
}

// Suppliers returns the catalog entries in response order.
func (c *SupplierCatalog) Suppliers() []models.Supplier {
	out := make([]models.Supplier, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Len returns the number of suppliers.
func (c *SupplierCatalog) Len() int {
	return len(c.byID)
}

// FetchSuppliers downloads the full supplier list.
func (c *Client) FetchSuppliers(ctx context.Context) (*SupplierCatalog, error) {
	const op = "FetchSuppliers"

	doc, err := c.post(ctx, op, supplierListPath, c.form(supplierFields, nil))
	if err != nil {
		c.log.Error().Err(err).Msg("Failed to fetch suppliers")
		return NewSupplierCatalog(nil), err
	}

	catalog := NewSupplierCatalog(parseSuppliers(doc))

	c.log.Info().Int("suppliers", catalog.Len()).Msg("Supplier catalog fetched")

	return catalog, nil
}

func parseSuppliers(doc *xmlquery.Node) []models.Supplier {
	var suppliers []models.Supplier
	for _, node := range xmlquery.Find(doc, "//Supplier") {
		categoryID := attr(xmlquery.FindOne(node, ".//Category"), "Id")
		suppliers = append(suppliers, models.Supplier{
			ID:           attr(node, "Id"),
			CategoryID:   categoryID,
			CategoryName: CategoryName(categoryID),
		})
	}
	return suppliers
}

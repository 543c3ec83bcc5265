package vat

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"travelvat/internal/logger"
	"travelvat/internal/rules"
	"travelvat/pkg/models"
)

// Kind selects the columns computed for a section.
type Kind int

const (
	KindPlain Kind = iota
	KindHotel
	KindExcursion
	KindVisa
)

// Columns returns the headers of the computed columns of a kind.
func (k Kind) Columns() []string {
	switch k {
	case KindHotel:
		return []string{
			"Basic", "Service Charge", "Municipality Fee", "VAT Paid",
			"Taxable value input", "Taxable value output", "Total VAT", "Net VAT payable",
		}
	case KindExcursion:
		return []string{
			"Profit", "VAT Paid", "Taxable value input", "VAT Output",
			"Taxable value output", "Net VAT payable",
		}
	case KindVisa:
		return []string{
			"Basic Charges", "Service Charges", "Naqoodi Charges", "VAT Paid", "Reconciled",
			"Taxable Value Input", "VAT Output", "Taxable Value Output", "VAT payable",
		}
	}
	return nil
}

// Section is one category sheet of the report.
type Section struct {
	Name  string
	Kind  Kind
	match func(models.VATRecord) bool
}

// Match reports whether rec belongs to the section.
func (s Section) Match(rec models.VATRecord) bool {
	return s.match(rec)
}

func taxable(country, service string) func(models.VATRecord) bool {
	return func(r models.VATRecord) bool {
		return r.Country == country && r.ServiceType == service && !r.IsAdjustment()
	}
}

func byService(service string) func(models.VATRecord) bool {
	return func(r models.VATRecord) bool {
		return r.ServiceType == service
	}
}

// Section names in workbook order.
const (
	SectionHRTax     = "HR TAX"
	SectionHRZero    = "HR ZERO"
	SectionEXTax     = "EX TAX"
	SectionEXZero    = "EX ZERO"
	SectionAirTicket = "AIR TICKET"
	SectionVisa      = "VISA"
	SectionOther     = "OTHER NA"
)

// Sections lists the category sections in workbook order. The predicates are
// mutually exclusive.
var Sections = []Section{
	{Name: SectionHRTax, Kind: KindHotel, match: taxable(models.CountryUAE, models.ServiceHotel)},
	{Name: SectionHRZero, Kind: KindPlain, match: taxable(models.CountryROW, models.ServiceHotel)},
	{Name: SectionEXTax, Kind: KindExcursion, match: taxable(models.CountryUAE, models.ServiceExcursion)},
	{Name: SectionEXZero, Kind: KindPlain, match: taxable(models.CountryROW, models.ServiceExcursion)},
	{Name: SectionAirTicket, Kind: KindPlain, match: byService(models.ServiceAirTicket)},
	{Name: SectionVisa, Kind: KindVisa, match: taxable(models.CountryUAE, models.ServiceVisa)},
	{Name: SectionOther, Kind: KindPlain, match: byService(models.ServiceOther)},
}

// Route returns the section rec lands in. Adjustments and ROW visas land in
// none.
func Route(rec models.VATRecord) (Section, bool) {
	for _, s := range Sections {
		if s.Match(rec) {
			return s, true
		}
	}
	return Section{}, false
}

// ErrMissingVATSetup is matched by every *MissingVATSetupError.
var ErrMissingVATSetup = errors.New("missing VAT setup")

// MissingVATSetupError lists the emirates a taxed section needs but the VAT
// setup does not define, or defines with a zero basic division for hotels.
type MissingVATSetupError struct {
	Emirates []string
}

func (e *MissingVATSetupError) Error() string {
	return fmt.Sprintf("VAT setup missing for emirate(s): %s", strings.Join(e.Emirates, ", "))
}

// Is lets errors.Is match ErrMissingVATSetup.
func (e *MissingVATSetupError) Is(target error) bool {
	return target == ErrMissingVATSetup
}

// VATSource looks up the VAT parameters of an emirate.
type VATSource interface {
	VAT(emirate string) (rules.VATRule, bool)
}

// Row is a record of a section with its computed columns, one value per
// header of the section kind.
type Row struct {
	models.VATRecord
	Values []decimal.Decimal
}

// SectionRows is a section with its sorted rows.
type SectionRows struct {
	Section
	Rows []Row
}

// Compute routes every record, computes the section columns and sorts each
// section by emirate then supplier name. It fails before computing anything
// when a taxed record has no usable VAT setup.
func Compute(records []models.VATRecord, setup VATSource) ([]SectionRows, error) {
	const op = "Compute"
	log := logger.WithComponent("vat")

	if err := checkSetup(records, setup); err != nil {
		log.Error().Err(err).Msg("VAT setup incomplete")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]SectionRows, len(Sections))
	for i, s := range Sections {
		out[i].Section = s
	}

	unrouted := 0
	for _, rec := range records {
		idx := -1
		for i, s := range Sections {
			if s.Match(rec) {
				idx = i
				break
			}
		}
		if idx < 0 {
			unrouted++
			continue
		}

		rule, _ := setup.VAT(rec.Emirate)
		out[idx].Rows = append(out[idx].Rows, Row{
			VATRecord: rec,
			Values:    values(out[idx].Kind, rec, rule),
		})
	}

	for i := range out {
		rows := out[i].Rows
		sort.SliceStable(rows, func(a, b int) bool {
			if rows[a].Emirate != rows[b].Emirate {
				return rows[a].Emirate < rows[b].Emirate
			}
			return rows[a].SupplierName < rows[b].SupplierName
		})
		log.Debug().Str("section", out[i].Name).Int("rows", len(rows)).Msg("Section computed")
	}

	log.Info().
		Int("records", len(records)).
		Int("unrouted", unrouted).
		Msg("VAT sections computed")

	return out, nil
}

func values(kind Kind, rec models.VATRecord, rule rules.VATRule) []decimal.Decimal {
	switch kind {
	case KindHotel:
		return ComputeHotel(rec.Sale, rec.Cost, rec.TaxesIncluded, rule).Values()
	case KindExcursion:
		return ComputeExcursion(rec.Sale, rec.Cost, rec.TaxesIncluded, rule.VATPercentage).Values()
	case KindVisa:
		return ComputeVisa().Values()
	}
	return nil
}

func checkSetup(records []models.VATRecord, setup VATSource) error {
	missing := map[string]bool{}
	for _, rec := range records {
		s, ok := Route(rec)
		if !ok || (s.Kind != KindHotel && s.Kind != KindExcursion) {
			continue
		}
		rule, found := setup.VAT(rec.Emirate)
		if !found || (s.Kind == KindHotel && rule.BasicDivision.IsZero()) {
			missing[rec.Emirate] = true
		}
	}
	if len(missing) == 0 {
		return nil
	}

	emirates := make([]string, 0, len(missing))
	for e := range missing {
		emirates = append(emirates, e)
	}
	sort.Strings(emirates)
	return &MissingVATSetupError{Emirates: emirates}
}

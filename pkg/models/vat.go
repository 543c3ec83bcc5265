package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service types used to route VAT records into report sections.
const (
	ServiceHotel     = "Hotel Reservation"
	ServiceExcursion = "Excursion"
	ServiceAirTicket = "Air Ticket"
	ServiceVisa      = "Visa"
	ServiceOther     = "Other"
)

// Jurisdiction defaults.
const (
	CountryUAE       = "UAE"
	CountryROW       = "ROW"
	EmirateUnmatched = "NA"

	ProductTypeAdjustment = "Adjustment"
)

// VATInput is one row of the uploaded booking sales report.
type VATInput struct {
	AreaName     string
	BookingCode  string
	Nights       decimal.Decimal
	StartDate    time.Time
	EndDate      time.Time
	SupplierName string
	Description  string
	ProductGroup string
	ProductType  string
	Sale         decimal.Decimal // final base sales in base currency
	Cost         decimal.Decimal // final base cost in base currency
}

// VATRecord is a VATInput resolved against the reference tables.
type VATRecord struct {
	VATInput

	ServiceType   string
	Emirate       string
	Country       string
	TaxesIncluded bool
}

// IsAdjustment reports whether the record is a manual adjustment line.
func (r VATRecord) IsAdjustment() bool {
	return r.ProductType == ProductTypeAdjustment
}

// Column headers of the booking sales report. The workbook reuses them.
const (
	ColCountry      = "Country"
	ColEmirate      = "Emirate"
	ColAreaName     = "Area name"
	ColBookingCode  = "Booking code"
	ColNights       = "No. of nights"
	ColStartDate    = "Start date"
	ColEndDate      = "End date"
	ColSupplierName = "Supplier name"
	ColDescription  = "Description"
	ColProductGroup = "Product group"
	ColProductType  = "Product Type"
	ColServiceType  = "Service Type"
	ColSale         = "Final base sales in base currency"
	ColCost         = "Final base cost in base currency"
)

package vat_test

import (
	"fmt"

	"github.com/shopspring/decimal"
	"travelvat/internal/rules"
	"travelvat/internal/vat"
	"travelvat/pkg/models"
)

// ExampleComputeHotel shows the tax breakdown of a hotel stay in Dubai whose
// supplier cost excludes taxes.
func ExampleComputeHotel() {
	rule := rules.VATRule{
		Emirate:         "Dubai",
		BasicDivision:   decimal.RequireFromString("1.05"),
		ServiceCharge:   decimal.NewFromInt(10),
		MunicipalityFee: decimal.NewFromInt(7),
		VATPercentage:   decimal.NewFromInt(5),
	}

	h := vat.ComputeHotel(decimal.NewFromInt(1050), decimal.NewFromInt(1000), false, rule)

	fmt.Println("Basic:", h.Basic.StringFixed(2))
	fmt.Println("VAT paid:", h.VATPaid.StringFixed(2))
	fmt.Println("Total VAT:", h.TotalVAT.StringFixed(2))
	fmt.Println("Net VAT payable:", h.NetVATPayable.StringFixed(2))
	// Output:
	// Basic: 952.38
	// VAT paid: 52.38
	// Total VAT: 50.00
	// Net VAT payable: -2.38
}

// ExampleRoute shows which report section a record lands in.
func ExampleRoute() {
	records := []models.VATRecord{
		{Country: models.CountryUAE, ServiceType: models.ServiceHotel},
		{Country: models.CountryROW, ServiceType: models.ServiceExcursion},
		{Country: models.CountryROW, ServiceType: models.ServiceAirTicket},
		{Country: models.CountryROW, ServiceType: models.ServiceVisa},
	}

	for _, rec := range records {
		sec, ok := vat.Route(rec)
		if !ok {
			fmt.Println("no section")
			continue
		}
		fmt.Println(sec.Name)
	}
	// Output:
	// HR TAX
	// EX ZERO
	// AIR TICKET
	// no section
}

package juniper

import (
	"context"
	"sync"

	"github.com/antchfx/xmlquery"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"travelvat/pkg/models"
)

var bookingFields = []string{
	"BookingCode",
	"BookingDateFrom",
	"BookingDateTo",
	"BookingTimeFrom",
	"BookingTimeTo",
	"BeginTravelDate",
	"EndTravelDate",
	"LastModifiedDateFrom",
	"LastModifiedDateTo",
	"LastModifiedTimeFrom",
	"LastModifiedTimeTo",
	"Status",
	"id",
	"ExportMode",
	"channel",
	"ModuleType",
	"IdBooking",
	"AgencyRef",
	"BeginTravelDateFrom",
	"BeginTravelDateTo",
	"EndTravelDateFrom",
	"EndTravelDateTo",
	"PackageBookings",
	"BlockedBookings",
}

// FetchBookingDetails returns the cost details of every line of one booking.
// A booking missing from the answer yields no details and no error.
func (c *Client) FetchBookingDetails(ctx context.Context, bookingCode string) ([]models.BookingCostDetail, error) {
	const op = "FetchBookingDetails"

	form := c.form(bookingFields, map[string]string{"BookingCode": bookingCode})

	doc, err := c.post(ctx, op, bookingsPath, form)
	if err != nil {
		return nil, err
	}

	details := parseBookingDetails(doc, bookingCode)
	if details == nil {
		c.log.Warn().Str("booking_code", bookingCode).Msg("No booking details found")
	}

	return details, nil
}

func parseBookingDetails(doc *xmlquery.Node, bookingCode string) []models.BookingCostDetail {
	booking := xmlquery.FindOne(doc, "//Booking")
	if booking == nil {
		return nil
	}

	status := attr(booking, "Status")
	details := []models.BookingCostDetail{}
	for _, line := range xmlquery.Find(booking, ".//Line") {
		cost := number(text(line, ".//CostAmountToBeInvoiced"))
		commission := number(text(line, "ComissionAmount"))

		taxes := decimal.Zero
		for _, tax := range xmlquery.Find(line, ".//Tax") {
			taxes = taxes.Add(number(text(tax, "totalcost")))
		}

		details = append(details, models.BookingCostDetail{
			BookingCode: bookingCode,
			LineID:      attr(line, "IdBookLine"),
			CostAmount:  cost.Sub(commission),
			TaxAmount:   taxes,
			Status:      status,
		})
	}
	return details
}

// FetchBookingDetailsConcurrently looks up every booking code with a bounded
// worker pool under the client's call-rate ceiling and merges the results by
// (booking code, line id). Codes are fetched once each; a failed lookup is
// logged and contributes nothing. When two answers carry the same key the
// last one merged wins.
func (c *Client) FetchBookingDetailsConcurrently(ctx context.Context, bookingCodes []string) map[models.BookingKey]models.BookingCostDetail {
	codes := uniqueCodes(bookingCodes)
	merged := make(map[models.BookingKey]models.BookingCostDetail, len(codes))

	var (
		mu     sync.Mutex
		failed int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for _, code := range codes {
		g.Go(func() error {
			if err := c.limiter.Wait(gctx); err != nil {
				return err
			}

			details, err := c.FetchBookingDetails(gctx, code)
			if err != nil {
				c.log.Warn().Err(err).Str("booking_code", code).Msg("Booking lookup failed, skipping")
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			for _, d := range details {
				if _, dup := merged[d.Key()]; dup {
					c.log.Warn().
						Str("booking_code", d.BookingCode).
						Str("line_id", d.LineID).
						Msg("Duplicate booking line, keeping the latest")
				}
				merged[d.Key()] = d
			}
			return nil
		})
	}

	// Only a cancelled context ends the group with an error
	if err := g.Wait(); err != nil {
		c.log.Error().Err(err).Msg("Booking lookups interrupted")
	}

	c.log.Info().
		Int("bookings", len(codes)).
		Int("lines", len(merged)).
		Int("failed", failed).
		Int("workers", c.workers).
		Msg("Booking details fetched")

	return merged
}

func uniqueCodes(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

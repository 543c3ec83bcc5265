package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"travelvat/pkg/models"
)

// ErrNoStartDate is returned when no input row carries a start date.
var ErrNoStartDate = errors.New("no start date in report")

// ReportName names the workbook after the quarter of the latest start date,
// e.g. "VAT 1st QTR 31 MAR 2024.xlsx".
func ReportName(inputs []models.VATInput) (string, error) {
	var latest time.Time
	for _, in := range inputs {
		if in.StartDate.After(latest) {
			latest = in.StartDate
		}
	}
	if latest.IsZero() {
		return "", ErrNoStartDate
	}

	quarter := (int(latest.Month())-1)/3 + 1
	end := QuarterEnd(latest)

	return fmt.Sprintf("VAT %s QTR %s.xlsx", ordinal(quarter), strings.ToUpper(end.Format("02 Jan 2006"))), nil
}

// QuarterEnd returns the last day of the quarter containing t.
func QuarterEnd(t time.Time) time.Time {
	lastMonth := ((int(t.Month())-1)/3 + 1) * 3
	// day 0 of the following month is the last day of lastMonth
	return time.Date(t.Year(), time.Month(lastMonth+1), 0, 0, 0, 0, 0, time.UTC)
}

func ordinal(n int) string {
	suffix := "th"
	if n%100 < 10 || n%100 > 20 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

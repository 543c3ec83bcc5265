package juniper

import (
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/shopspring/decimal"
)

const (
	serviceTimeLayout = "2006-01-02T15:04:05"
	dateLayout        = "2006-01-02"
)

// attr returns an attribute of n, "" when n is nil or the attribute is absent.
func attr(n *xmlquery.Node, name string) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.SelectAttr(name))
}

// text returns the text of the first node matching expr below n.
func text(n *xmlquery.Node, expr string) string {
	if n == nil {
		return ""
	}
	found := xmlquery.FindOne(n, expr)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(found.InnerText())
}

// number parses a decimal, zero when empty or malformed.
func number(raw string) decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return v
}

// numberOr parses a decimal, fallback when empty or malformed.
func numberOr(raw string, fallback decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

// formatDate drops the time part of a service timestamp. Values that do not
// parse are returned unchanged.
func formatDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, err := time.Parse(serviceTimeLayout, raw)
	if err != nil {
		if t, err = time.Parse(dateLayout, raw); err != nil {
			return raw
		}
	}
	return t.Format(dateLayout)
}

package order

import (
	"github.com/shopspring/decimal"
)

// Total sums quantity * unit price over the lines. Non-positive quantities
// contribute nothing; the zero value of decimal.Decimal is zero, so a line
// with an unset price is harmless. Never panics.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// DisplayName resolves a code to its locale-appropriate name. Unresolvable
// codes yield an empty string rather than an error; the views render blank
// cells for half-filled rows.
func DisplayName(catalog Catalog, code, locale string) string {
	item, err := catalog.Lookup(code)
	if err != nil {
		return ""
	}
	return item.DisplayName(locale)
}

// Package pricing turns order lines into the four bill amounts.
//
// Tax and service charge are fixed rates applied to the subtotal. Tax,
// service charge and total are each rounded to two places on their own
// (round half away from zero); the total is not recomputed from unrounded
// parts.
package pricing

import (
	"github.com/shopspring/decimal"

	"restaurant-billing/internal/menu"
	"restaurant-billing/internal/models"
)

const places = 2

var (
	TaxRate     = decimal.RequireFromString("0.18")
	ServiceRate = decimal.RequireFromString("0.05")
)

// Line is one priced row of a bill.
type Line struct {
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// LineTotal is qty * unitPrice.
func LineTotal(qty int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// Price computes the bill amounts. Lines naming unknown items or carrying a
// non-positive quantity contribute nothing.
func Price(lines models.Lines, catalog *menu.Catalog) models.Totals {
	subtotal := decimal.Zero
	for name, qty := range lines {
		if qty <= 0 {
			continue
		}
		item, ok := catalog.Lookup(name)
		if !ok {
			continue
		}
		subtotal = subtotal.Add(LineTotal(qty, item.UnitPrice))
	}
	return FromSubtotal(subtotal)
}

// FromSubtotal derives tax, service charge and total from a subtotal.
func FromSubtotal(subtotal decimal.Decimal) models.Totals {
	if subtotal.Sign() <= 0 {
		return models.Totals{
			Subtotal:      decimal.Zero,
			TaxAmount:     decimal.Zero,
			ServiceCharge: decimal.Zero,
			Total:         decimal.Zero,
		}
	}
	tax := subtotal.Mul(TaxRate).Round(places)
	service := subtotal.Mul(ServiceRate).Round(places)
	return models.Totals{
		Subtotal:      subtotal,
		TaxAmount:     tax,
		ServiceCharge: service,
		Total:         subtotal.Add(tax).Add(service).Round(places),
	}
}

// Breakdown lists the priced lines in menu display order.
func Breakdown(lines models.Lines, catalog *menu.Catalog) []Line {
	var out []Line
	for _, item := range catalog.All() {
		qty := lines[item.Name]
		if qty <= 0 {
			continue
		}
		out = append(out, Line{
			Name:      item.Name,
			Category:  item.Category,
			Quantity:  qty,
			UnitPrice: item.UnitPrice,
			Total:     LineTotal(qty, item.UnitPrice),
		})
	}
	return out
}

package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Lines maps a menu item name to the ordered quantity
type Lines map[string]int

// Clone returns a copy holding only the lines with a positive quantity
func (l Lines) Clone() Lines {
	out := make(Lines, len(l))
	for name, qty := range l {
		if qty > 0 {
			out[name] = qty
		}
	}
	return out
}

// Names returns the ordered item names, sorted
func (l Lines) Names() []string {
	names := make([]string, 0, len(l))
	for name, qty := range l {
		if qty > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ItemCount returns the total number of units across all lines
func (l Lines) ItemCount() int {
	count := 0
	for _, qty := range l {
		if qty > 0 {
			count += qty
		}
	}
	return count
}

// Totals holds the four monetary fields derived from an order's lines
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Total         decimal.Decimal `json:"total"`
}

// StoredOrder is a finalized bill as recorded in the ledger
type StoredOrder struct {
	ID         int64     `json:"id" db:"id"`
	CustomerID int64     `json:"customer_id" db:"customer_id"`
	BillNumber string    `json:"bill_number" db:"bill_number"`
	Lines      Lines     `json:"lines" db:"order_data"`
	Totals               // subtotal, tax_amount, service_charge, total_amount
	OrderDate  time.Time `json:"order_date" db:"order_date"`
}

// OrderRecord is a stored order joined with the customer it belongs to
type OrderRecord struct {
	StoredOrder
	CustomerName  string `json:"customer_name" db:"name"`
	CustomerPhone string `json:"customer_phone" db:"phone"`
}

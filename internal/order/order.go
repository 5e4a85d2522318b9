// Package order is the draft bill a cashier edits before it is saved.
package order

import (
	"github.com/cockroachdb/errors"

	"restaurant-billing/internal/menu"
	"restaurant-billing/internal/models"
)

var (
	ErrInvalidItem     = errors.New("item is not on the menu")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
)

// BillNumberer issues bill numbers; *billno.Generator satisfies it.
type BillNumberer interface {
	Next() string
}

// Observer is called after every mutation of an order.
type Observer func(o *Order)

// Order is a draft bill. It is not safe for concurrent use.
type Order struct {
	catalog     *menu.Catalog
	billNumbers BillNumberer

	billNumber    string
	customerName  string
	customerPhone string
	lines         models.Lines

	observers []Observer
}

// New starts an empty order with a fresh bill number.
func New(catalog *menu.Catalog, billNumbers BillNumberer) *Order {
	return &Order{
		catalog:     catalog,
		billNumbers: billNumbers,
		billNumber:  billNumbers.Next(),
		lines:       make(models.Lines),
	}
}

func (o *Order) Catalog() *menu.Catalog { return o.catalog }

func (o *Order) BillNumber() string { return o.billNumber }

func (o *Order) CustomerName() string { return o.customerName }

func (o *Order) CustomerPhone() string { return o.customerPhone }

// SetCustomer records who the bill is for.
func (o *Order) SetCustomer(name, phone string) {
	o.customerName = name
	o.customerPhone = phone
	o.notify()
}

// SetQuantity sets the quantity of item. A zero quantity removes the line.
func (o *Order) SetQuantity(item string, qty int) error {
	if !o.catalog.Contains(item) {
		return errors.Wrapf(ErrInvalidItem, "%q", item)
	}
	if qty < 0 {
		return errors.Wrapf(ErrInvalidQuantity, "%q: %d", item, qty)
	}
	if qty == 0 {
		delete(o.lines, item)
	} else {
		o.lines[item] = qty
	}
	o.notify()
	return nil
}

// Quantity returns the ordered quantity of item, 0 if absent.
func (o *Order) Quantity(item string) int {
	return o.lines[item]
}

// Increment adds one unit of item.
func (o *Order) Increment(item string) error {
	return o.SetQuantity(item, o.lines[item]+1)
}

// Decrement removes one unit of item. It does nothing when the item is not ordered.
func (o *Order) Decrement(item string) error {
	qty := o.lines[item]
	if qty == 0 {
		if !o.catalog.Contains(item) {
			return errors.Wrapf(ErrInvalidItem, "%q", item)
		}
		return nil
	}
	return o.SetQuantity(item, qty-1)
}

// Remove drops item from the order entirely.
func (o *Order) Remove(item string) error {
	return o.SetQuantity(item, 0)
}

// IsEmpty reports whether no item has a positive quantity.
func (o *Order) IsEmpty() bool {
	for _, qty := range o.lines {
		if qty > 0 {
			return false
		}
	}
	return true
}

// Lines returns a snapshot of the ordered lines.
func (o *Order) Lines() models.Lines {
	return o.lines.Clone()
}

// Prefill replaces the lines with a previous order's selections.
// Items that are no longer on the menu, and non-positive quantities, are skipped.
func (o *Order) Prefill(lines models.Lines) {
	o.lines = make(models.Lines, len(lines))
	for name, qty := range lines {
		if qty > 0 && o.catalog.Contains(name) {
			o.lines[name] = qty
		}
	}
	o.notify()
}

// Reset clears every line and assigns a new bill number.
// The customer is kept only when keepCustomer is true.
func (o *Order) Reset(keepCustomer bool) {
	o.lines = make(models.Lines)
	if !keepCustomer {
		o.customerName = ""
		o.customerPhone = ""
	}
	o.billNumber = o.billNumbers.Next()
	o.notify()
}

// Subscribe registers fn to run after every mutation.
func (o *Order) Subscribe(fn Observer) {
	o.observers = append(o.observers, fn)
}

func (o *Order) notify() {
	for _, fn := range o.observers {
		fn(o)
	}
}

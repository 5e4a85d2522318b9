// Package store persists customers and finalized orders.
//
// Orders are append-only: once saved a bill is never updated or deleted.
// Search is a case-insensitive substring match; an empty query lists everything.
// Listings are newest first, ties broken by the higher id.
package store

import (
	"context"
	"strings"

	"restaurant-billing/internal/models"
)

// Store is the customer and order ledger.
type Store interface {
	// FindCustomerByPhone returns ErrNotFound when no customer has the phone.
	FindCustomerByPhone(ctx context.Context, phone string) (models.Customer, error)
	// CreateCustomer returns ErrDuplicatePhone and leaves the existing row untouched on conflict.
	CreateCustomer(ctx context.Context, name, phone string) (models.Customer, error)
	// EnsureCustomer inserts the customer unless the phone is taken, then returns the stored row.
	EnsureCustomer(ctx context.Context, name, phone string) (models.Customer, error)
	// MostRecentOrder returns ErrNotFound when the customer has no orders.
	MostRecentOrder(ctx context.Context, customerID int64) (models.StoredOrder, error)
	// SaveOrder assigns ID and OrderDate. It returns ErrDuplicateBillNumber or ErrNotFound for an unknown customer.
	SaveOrder(ctx context.Context, order models.StoredOrder) (models.StoredOrder, error)
	FindOrder(ctx context.Context, billNumber string) (models.OrderRecord, error)
	SearchCustomers(ctx context.Context, query string) ([]models.Customer, error)
	SearchOrders(ctx context.Context, query string) ([]models.OrderRecord, error)
}

// likePattern turns a search query into a lowercase LIKE pattern with wildcards escaped.
func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(query)) + "%"
}

// matches reports whether any field contains query, ignoring case.
func matches(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

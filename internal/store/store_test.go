package store

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"restaurant-billing/internal/models"
)

type storeFactory func(t *testing.T) Store

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) Store { return NewMemory() })
}

func sampleOrder(customerID int64, billNumber string) models.StoredOrder {
	return models.StoredOrder{
		CustomerID: customerID,
		BillNumber: billNumber,
		Lines:      models.Lines{"Chicken Biryani": 2, "Fresh Lime": 1},
		Totals: models.Totals{
			Subtotal:      decimal.RequireFromString("720.00"),
			TaxAmount:     decimal.RequireFromString("129.60"),
			ServiceCharge: decimal.RequireFromString("36.00"),
			Total:         decimal.RequireFromString("885.60"),
		},
	}
}

func runStoreContract(t *testing.T, newStore storeFactory) {
	ctx := context.Background()

	t.Run("create and find customer", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreateCustomer(ctx, "Ali Khan", "03001234567")
		require.NoError(t, err)
		require.NotZero(t, created.ID)

		found, err := s.FindCustomerByPhone(ctx, "03001234567")
		require.NoError(t, err)
		require.Equal(t, created.ID, found.ID)
		require.Equal(t, "Ali Khan", found.Name)
	})

	t.Run("unknown phone", func(t *testing.T) {
		s := newStore(t)
		_, err := s.FindCustomerByPhone(ctx, "000")
		require.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("duplicate phone leaves existing row", func(t *testing.T) {
		s := newStore(t)
		_, err := s.CreateCustomer(ctx, "Ali Khan", "0300")
		require.NoError(t, err)

		_, err = s.CreateCustomer(ctx, "Someone Else", "0300")
		require.True(t, errors.Is(err, ErrDuplicatePhone), "got %v", err)
		require.True(t, IsDuplicate(err))

		found, err := s.FindCustomerByPhone(ctx, "0300")
		require.NoError(t, err)
		require.Equal(t, "Ali Khan", found.Name)

		all, err := s.SearchCustomers(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 1)
	})

	t.Run("ensure customer keeps stored name", func(t *testing.T) {
		s := newStore(t)
		first, err := s.EnsureCustomer(ctx, "Sara", "0311")
		require.NoError(t, err)

		again, err := s.EnsureCustomer(ctx, "Sarah B", "0311")
		require.NoError(t, err)
		require.Equal(t, first.ID, again.ID)
		require.Equal(t, "Sara", again.Name)
	})

	t.Run("save order round trip", func(t *testing.T) {
		s := newStore(t)
		c, err := s.CreateCustomer(ctx, "Ali Khan", "0300")
		require.NoError(t, err)

		saved, err := s.SaveOrder(ctx, sampleOrder(c.ID, "BILL20240101120000"))
		require.NoError(t, err)
		require.NotZero(t, saved.ID)
		require.False(t, saved.OrderDate.IsZero())

		results, err := s.SearchOrders(ctx, "BILL20240101120000")
		require.NoError(t, err)
		require.Len(t, results, 1)
		got := results[0]
		require.Equal(t, "Ali Khan", got.CustomerName)
		require.Equal(t, "0300", got.CustomerPhone)
		require.Equal(t, models.Lines{"Chicken Biryani": 2, "Fresh Lime": 1}, got.Lines)
		require.True(t, got.Total.Equal(decimal.RequireFromString("885.60")), "total %s", got.Total)
		require.True(t, got.TaxAmount.Equal(decimal.RequireFromString("129.60")))

		rec, err := s.FindOrder(ctx, "BILL20240101120000")
		require.NoError(t, err)
		require.Equal(t, saved.ID, rec.ID)
	})

	t.Run("duplicate bill number adds no row", func(t *testing.T) {
		s := newStore(t)
		c, err := s.CreateCustomer(ctx, "Ali Khan", "0300")
		require.NoError(t, err)

		_, err = s.SaveOrder(ctx, sampleOrder(c.ID, "BILL20240101120000"))
		require.NoError(t, err)
		_, err = s.SaveOrder(ctx, sampleOrder(c.ID, "BILL20240101120000"))
		require.True(t, errors.Is(err, ErrDuplicateBillNumber), "got %v", err)

		all, err := s.SearchOrders(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 1)
	})

	t.Run("order for unknown customer", func(t *testing.T) {
		s := newStore(t)
		_, err := s.SaveOrder(ctx, sampleOrder(9999, "BILL20240101120000"))
		require.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	})

	t.Run("most recent order", func(t *testing.T) {
		s := newStore(t)
		c, err := s.CreateCustomer(ctx, "Ali Khan", "0300")
		require.NoError(t, err)

		_, err = s.MostRecentOrder(ctx, c.ID)
		require.True(t, errors.Is(err, ErrNotFound), "got %v", err)

		_, err = s.SaveOrder(ctx, sampleOrder(c.ID, "BILL20240101120000"))
		require.NoError(t, err)
		second := sampleOrder(c.ID, "BILL20240101120001")
		second.Lines = models.Lines{"Green Tea": 1}
		_, err = s.SaveOrder(ctx, second)
		require.NoError(t, err)

		latest, err := s.MostRecentOrder(ctx, c.ID)
		require.NoError(t, err)
		require.Equal(t, "BILL20240101120001", latest.BillNumber)
		require.Equal(t, models.Lines{"Green Tea": 1}, latest.Lines)
	})

	t.Run("search is case-insensitive substring", func(t *testing.T) {
		s := newStore(t)
		ali, err := s.CreateCustomer(ctx, "Ali Khan", "0300")
		require.NoError(t, err)
		sara, err := s.CreateCustomer(ctx, "Sara Malik", "0311")
		require.NoError(t, err)
		_, err = s.CreateCustomer(ctx, "100% Real", "0322")
		require.NoError(t, err)

		_, err = s.SaveOrder(ctx, sampleOrder(ali.ID, "BILL20240101120000"))
		require.NoError(t, err)
		_, err = s.SaveOrder(ctx, sampleOrder(sara.ID, "BILL20240101120001"))
		require.NoError(t, err)

		tests := []struct {
			query     string
			customers []string
			bills     []string
		}{
			{query: "", customers: []string{"100% Real", "Sara Malik", "Ali Khan"}, bills: []string{"BILL20240101120001", "BILL20240101120000"}},
			{query: "KHAN", customers: []string{"Ali Khan"}, bills: []string{"BILL20240101120000"}},
			{query: "031", customers: []string{"Sara Malik"}, bills: []string{"BILL20240101120001"}},
			{query: "bill2024", customers: []string{}, bills: []string{"BILL20240101120001", "BILL20240101120000"}},
			{query: "%", customers: []string{"100% Real"}, bills: []string{}},
			{query: "nobody", customers: []string{}, bills: []string{}},
		}

		for _, tt := range tests {
			t.Run(tt.query, func(t *testing.T) {
				customers, err := s.SearchCustomers(ctx, tt.query)
				require.NoError(t, err)
				names := make([]string, 0, len(customers))
				for _, c := range customers {
					names = append(names, c.Name)
				}
				require.Equal(t, tt.customers, names)

				orders, err := s.SearchOrders(ctx, tt.query)
				require.NoError(t, err)
				bills := make([]string, 0, len(orders))
				for _, o := range orders {
					bills = append(bills, o.BillNumber)
				}
				require.Equal(t, tt.bills, bills)
			})
		}
	})

	t.Run("returned lines are copies", func(t *testing.T) {
		s := newStore(t)
		c, err := s.CreateCustomer(ctx, "Ali Khan", "0300")
		require.NoError(t, err)
		_, err = s.SaveOrder(ctx, sampleOrder(c.ID, "BILL20240101120000"))
		require.NoError(t, err)

		rec, err := s.FindOrder(ctx, "BILL20240101120000")
		require.NoError(t, err)
		rec.Lines["Fresh Lime"] = 99

		again, err := s.FindOrder(ctx, "BILL20240101120000")
		require.NoError(t, err)
		require.Equal(t, 1, again.Lines["Fresh Lime"])
	})
}

func TestMemoryOrderingUsesClock(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemory().WithClock(func() time.Time { return now })

	c, err := s.CreateCustomer(ctx, "Ali Khan", "0300")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), c.CreatedDate)

	_, err = s.SaveOrder(ctx, sampleOrder(c.ID, "B1"))
	require.NoError(t, err)
	now = now.Add(-time.Hour)
	_, err = s.SaveOrder(ctx, sampleOrder(c.ID, "B2"))
	require.NoError(t, err)

	latest, err := s.MostRecentOrder(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, "B1", latest.BillNumber)
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "%%"},
		{"Ali", "%ali%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\x`, `%c:\\x%`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, likePattern(tt.in))
		})
	}
}

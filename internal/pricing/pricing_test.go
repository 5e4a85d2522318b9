package pricing

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"restaurant-billing/internal/menu"
	"restaurant-billing/internal/models"
)

func requireTotals(t *testing.T, got models.Totals, subtotal, tax, service, total string) {
	t.Helper()
	require.Equal(t, subtotal, got.Subtotal.StringFixed(2), "subtotal")
	require.Equal(t, tax, got.TaxAmount.StringFixed(2), "tax")
	require.Equal(t, service, got.ServiceCharge.StringFixed(2), "service charge")
	require.Equal(t, total, got.Total.StringFixed(2), "total")
}

func TestPrice(t *testing.T) {
	catalog := menu.Default()

	tests := []struct {
		name                          string
		lines                         models.Lines
		subtotal, tax, service, total string
	}{
		{
			name:     "biryani and lime",
			lines:    models.Lines{"Chicken Biryani": 2, "Fresh Lime": 1},
			subtotal: "720.00", tax: "129.60", service: "36.00", total: "885.60",
		},
		{
			name:     "single item",
			lines:    models.Lines{"Green Tea": 1},
			subtotal: "50.00", tax: "9.00", service: "2.50", total: "61.50",
		},
		{
			name:     "empty",
			lines:    models.Lines{},
			subtotal: "0.00", tax: "0.00", service: "0.00", total: "0.00",
		},
		{
			name:     "only zero lines",
			lines:    models.Lines{"Kulfi": 0, "Kheer": 0},
			subtotal: "0.00", tax: "0.00", service: "0.00", total: "0.00",
		},
		{
			name:     "unknown items ignored",
			lines:    models.Lines{"Pizza": 3, "Kulfi": 1},
			subtotal: "100.00", tax: "18.00", service: "5.00", total: "123.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireTotals(t, Price(tt.lines, catalog), tt.subtotal, tt.tax, tt.service, tt.total)
		})
	}
}

func TestEmptyOrderIsExactlyZero(t *testing.T) {
	got := Price(nil, menu.Default())
	require.True(t, got.Subtotal.IsZero())
	require.True(t, got.TaxAmount.IsZero())
	require.True(t, got.ServiceCharge.IsZero())
	require.True(t, got.Total.IsZero())
}

func TestFromSubtotalRoundsEachFieldIndependently(t *testing.T) {
	tests := []struct {
		subtotal, tax, service, total string
	}{
		{"333", "59.94", "16.65", "409.59"},
		{"1", "0.18", "0.05", "1.23"},
		{"0.10", "0.02", "0.01", "0.13"},
		// 0.5 * 0.05 = 0.025 rounds half away from zero.
		{"0.50", "0.09", "0.03", "0.62"},
		{"12.34", "2.22", "0.62", "15.18"},
		{"99.99", "18.00", "5.00", "122.99"},
	}

	for _, tt := range tests {
		t.Run(tt.subtotal, func(t *testing.T) {
			got := FromSubtotal(decimal.RequireFromString(tt.subtotal))
			require.Equal(t, tt.tax, got.TaxAmount.StringFixed(2))
			require.Equal(t, tt.service, got.ServiceCharge.StringFixed(2))
			require.Equal(t, tt.total, got.Total.StringFixed(2))
		})
	}
}

func TestPriceProperties(t *testing.T) {
	catalog := menu.Default()
	items := catalog.All()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		lines := models.Lines{}
		want := decimal.Zero
		for n := rng.Intn(6); n > 0; n-- {
			item := items[rng.Intn(len(items))]
			qty := rng.Intn(5)
			if qty == 0 {
				continue
			}
			lines[item.Name] += qty
			want = want.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(qty))))
		}

		got := Price(lines, catalog)
		require.True(t, want.Equal(got.Subtotal), "subtotal %s != %s for %v", got.Subtotal, want, lines)
		require.True(t, got.Subtotal.Mul(TaxRate).Round(2).Equal(got.TaxAmount))
		require.True(t, got.Subtotal.Mul(ServiceRate).Round(2).Equal(got.ServiceCharge))
		require.True(t, got.Subtotal.Add(got.TaxAmount).Add(got.ServiceCharge).Round(2).Equal(got.Total))
		require.False(t, got.Total.IsNegative())
	}
}

func TestBreakdownFollowsMenuOrder(t *testing.T) {
	catalog := menu.Default()
	lines := models.Lines{"Fresh Lime": 1, "Chicken Biryani": 2, "Spring Rolls": 0}

	got := Breakdown(lines, catalog)
	require.Len(t, got, 2)
	require.Equal(t, "Chicken Biryani", got[0].Name)
	require.Equal(t, 2, got[0].Quantity)
	require.Equal(t, "640", got[0].Total.String())
	require.Equal(t, "Fresh Lime", got[1].Name)
	require.Equal(t, "Beverages & Desserts", got[1].Category)
}

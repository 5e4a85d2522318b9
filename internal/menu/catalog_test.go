package menu

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	require.Equal(t, 42, c.Len())
	require.Equal(t, []string{"Pakistani Dishes", "Chinese Dishes", "Beverages & Desserts"}, c.Categories())

	it, ok := c.Lookup("Chicken Biryani")
	require.True(t, ok)
	require.Equal(t, "320", it.UnitPrice.String())
	require.Equal(t, "Pakistani Dishes", it.Category)

	it, ok = c.Lookup("Fresh Lime")
	require.True(t, ok)
	require.Equal(t, "80", it.UnitPrice.String())

	_, ok = c.Lookup("Pizza")
	require.False(t, ok)

	all := c.All()
	require.Len(t, all, 42)
	require.Equal(t, "Chicken Karahi", all[0].Name)
	require.Equal(t, "Cold Drinks", all[len(all)-1].Name)
}

func TestNewRejectsDuplicateNamesAcrossCategories(t *testing.T) {
	_, err := New(
		Category{Name: "Mains", Items: []Item{{Name: "Kheer", UnitPrice: decimal.NewFromInt(120)}}},
		Category{Name: "Desserts", Items: []Item{{Name: "Kheer", UnitPrice: decimal.NewFromInt(100)}}},
	)
	require.True(t, errors.Is(err, ErrDuplicateItem), "got %v", err)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		cats []Category
	}{
		{
			name: "blank category",
			cats: []Category{{Name: " ", Items: nil}},
		},
		{
			name: "blank item",
			cats: []Category{{Name: "Mains", Items: []Item{{Name: "", UnitPrice: decimal.NewFromInt(1)}}}},
		},
		{
			name: "negative price",
			cats: []Category{{Name: "Mains", Items: []Item{{Name: "Nihari", UnitPrice: decimal.NewFromInt(-1)}}}},
		},
		{
			name: "sub-cent price",
			cats: []Category{{Name: "Drinks", Items: []Item{{Name: "Mint", UnitPrice: decimal.RequireFromString("0.005")}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cats...)
			require.Error(t, err)
		})
	}
}

func TestNewAcceptsWholeCents(t *testing.T) {
	c, err := New(Category{Name: "Drinks", Items: []Item{
		{Name: "Mint", UnitPrice: decimal.RequireFromString("12.50")},
		{Name: "Soda", UnitPrice: decimal.RequireFromString("40.000")},
	}})
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
}

func TestItemsReturnsCopy(t *testing.T) {
	c := Default()
	items := c.Items("Chinese Dishes")
	require.Len(t, items, 15)
	items[0].Name = "changed"
	require.Equal(t, "Chicken Chow Mein", c.Items("Chinese Dishes")[0].Name)
	require.Nil(t, c.Items("Italian"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	content := `categories:
  - name: Drinks
    items:
      - name: Green Tea
        price: "50"
      - name: Mango Lassi
        price: 120.50
  - name: Sweets
    items:
      - name: Kulfi
        price: 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())
	lassi, ok := c.Lookup("Mango Lassi")
	require.True(t, ok)
	require.Equal(t, "120.50", lassi.UnitPrice.StringFixed(2))
	require.Equal(t, "Drinks", lassi.Category)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("categories: []\n"), 0o600))
	_, err = LoadFile(empty)
	require.Error(t, err)
}

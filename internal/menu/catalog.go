// Package menu holds the restaurant's fixed catalog of dishes and prices.
package menu

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrDuplicateItem is returned when two catalog entries share a name.
var ErrDuplicateItem = errors.New("duplicate menu item")

// Item is a single priced dish. Names are unique across the whole catalog.
type Item struct {
	Name      string          `json:"name" yaml:"name"`
	UnitPrice decimal.Decimal `json:"unit_price" yaml:"price"`
	Category  string          `json:"category" yaml:"-"`
}

// Category groups items for display only.
type Category struct {
	Name  string `json:"name" yaml:"name"`
	Items []Item `json:"items" yaml:"items"`
}

// Catalog is immutable once built.
type Catalog struct {
	categories []Category
	byName     map[string]Item
}

// New builds a catalog, keeping the category and item order given.
func New(categories ...Category) (*Catalog, error) {
	c := &Catalog{byName: make(map[string]Item)}
	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			return nil, errors.New("menu category name is required")
		}
		copied := Category{Name: name, Items: make([]Item, 0, len(cat.Items))}
		for _, it := range cat.Items {
			itemName := strings.TrimSpace(it.Name)
			if itemName == "" {
				return nil, errors.Newf("item name is required in category %q", name)
			}
			if it.UnitPrice.IsNegative() {
				return nil, errors.Newf("item %q has a negative price", itemName)
			}
			if !it.UnitPrice.Equal(it.UnitPrice.Round(2)) {
				return nil, errors.Newf("item %q price %s has more than two decimal places", itemName, it.UnitPrice)
			}
			if _, ok := c.byName[itemName]; ok {
				return nil, errors.Wrapf(ErrDuplicateItem, "%q", itemName)
			}
			item := Item{Name: itemName, UnitPrice: it.UnitPrice, Category: name}
			c.byName[itemName] = item
			copied.Items = append(copied.Items, item)
		}
		c.categories = append(c.categories, copied)
	}
	return c, nil
}

// MustNew is New for static catalogs.
func MustNew(categories ...Category) *Catalog {
	c, err := New(categories...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the named item.
func (c *Catalog) Lookup(name string) (Item, bool) {
	it, ok := c.byName[name]
	return it, ok
}

// Contains reports whether name is on the menu.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Categories returns the category names in display order.
func (c *Catalog) Categories() []string {
	names := make([]string, 0, len(c.categories))
	for _, cat := range c.categories {
		names = append(names, cat.Name)
	}
	return names
}

// Items returns the items of one category in display order.
func (c *Catalog) Items(category string) []Item {
	for _, cat := range c.categories {
		if cat.Name == category {
			return append([]Item(nil), cat.Items...)
		}
	}
	return nil
}

// All returns every item in display order.
func (c *Catalog) All() []Item {
	items := make([]Item, 0, len(c.byName))
	for _, cat := range c.categories {
		items = append(items, cat.Items...)
	}
	return items
}

// Len returns the number of items.
func (c *Catalog) Len() int { return len(c.byName) }

type menuFile struct {
	Categories []Category `yaml:"categories"`
}

// LoadFile reads a catalog from a YAML file of the form
//
//	categories:
//	  - name: Beverages
//	    items:
//	      - name: Green Tea
//	        price: "50"
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read menu file")
	}
	var f menuFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "failed to parse menu file")
	}
	if len(f.Categories) == 0 {
		return nil, errors.Newf("menu file %s has no categories", path)
	}
	return New(f.Categories...)
}

package menu

import (
	"errors"

	"github.com/annapurna-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by Lookup for codes the catalog does not carry.
var ErrNotFound = errors.New("menu item not found")

// Item is a single orderable menu entry. Items are immutable once loaded
// and identified by Code.
type Item struct {
	ID        int64
	Code      string
	Name      string
	LocalName string
	UnitPrice decimal.Decimal
}

// DisplayName returns the item name for the requested locale. The local
// (Marathi) name falls back to the default name when it was never set.
func (it Item) DisplayName(locale string) string {
	if locale == enum.LocaleMarathi && it.LocalName != "" {
		return it.LocalName
	}
	return it.Name
}

// Catalog is a read-only set of menu items for the duration of a session.
type Catalog struct {
	byCode   map[string]Item
	ordered  []string
	frequent []string
}

// NewCatalog builds a catalog from items, keeping insertion order. A later
// item with a duplicate code replaces the earlier one in place.
func NewCatalog(items []Item, frequent []string) *Catalog {
	c := &Catalog{byCode: make(map[string]Item, len(items)), frequent: frequent}
	for _, it := range items {
		if _, exists := c.byCode[it.Code]; !exists {
			c.ordered = append(c.ordered, it.Code)
		}
		c.byCode[it.Code] = it
	}
	return c
}

// Lookup resolves a menu code.
func (c *Catalog) Lookup(code string) (Item, error) {
	it, ok := c.byCode[code]
	if !ok {
		return Item{}, ErrNotFound
	}
	return it, nil
}

// All returns every item in catalog order.
func (c *Catalog) All() []Item {
	items := make([]Item, 0, len(c.ordered))
	for _, code := range c.ordered {
		items = append(items, c.byCode[code])
	}
	return items
}

// Frequent returns the quick-add items, skipping codes the catalog lost.
func (c *Catalog) Frequent() []Item {
	items := make([]Item, 0, len(c.frequent))
	for _, code := range c.frequent {
		if it, ok := c.byCode[code]; ok {
			items = append(items, it)
		}
	}
	return items
}

// DefaultFrequent lists the quick-add codes shown on the order screen.
var DefaultFrequent = []string{"T15", "D23", "C10"}

// Seed is the built-in menu used when the remote menu service is
// unreachable at startup.
func Seed() *Catalog {
	items := []Item{
		{ID: 1, Code: "T15", Name: "Tea", LocalName: "चहा", UnitPrice: decimal.NewFromInt(2)},
		{ID: 2, Code: "D23", Name: "Dosa", LocalName: "डोसा", UnitPrice: decimal.NewFromInt(5)},
		{ID: 3, Code: "C10", Name: "Coffee", LocalName: "कॉफी", UnitPrice: decimal.NewFromInt(3)},
		{ID: 4, Code: "I30", Name: "Idli", LocalName: "इडली", UnitPrice: decimal.NewFromInt(4)},
		{ID: 5, Code: "B20", Name: "Burger", LocalName: "बर्गर", UnitPrice: decimal.NewFromInt(6)},
	}
	return NewCatalog(items, DefaultFrequent)
}

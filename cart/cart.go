// Package cart holds the storefront shopping cart kept for a single session.
package cart

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Variation struct {
	Name       string          `json:"name"`
	PriceDelta decimal.Decimal `json:"price"`
}

type AddOn struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity,omitempty"`
}

func (a AddOn) units() int64 {
	if a.Quantity <= 0 {
		return 1
	}
	return int64(a.Quantity)
}

// Item is one cart line. TotalPrice is the unit price after the variation
// and add-ons are applied.
type Item struct {
	ID         string          `json:"id"`
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	BasePrice  decimal.Decimal `json:"base_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Quantity   int             `json:"quantity"`
	Variation  *Variation      `json:"selected_variation,omitempty"`
	AddOns     []AddOn         `json:"selected_add_ons,omitempty"`
}

// NewItem builds a line with quantity 0; Cart.Add sets the quantity.
func NewItem(menuItemID uuid.UUID, name string, base decimal.Decimal, variation *Variation, addOns []AddOn) Item {
	it := Item{
		MenuItemID: menuItemID,
		Name:       name,
		BasePrice:  base,
		Variation:  variation,
		AddOns:     addOns,
	}
	it.TotalPrice = it.unitPrice()
	it.ID = it.lineKey()
	return it
}

func (it Item) unitPrice() decimal.Decimal {
	price := it.BasePrice
	if it.Variation != nil {
		price = price.Add(it.Variation.PriceDelta)
	}
	for _, a := range it.AddOns {
		price = price.Add(a.Price.Mul(decimal.NewFromInt(a.units())))
	}
	return price
}

// lineKey identifies a configuration so repeated adds of the same
// variation and add-ons collapse onto one line.
func (it Item) lineKey() string {
	var b strings.Builder
	b.WriteString(it.MenuItemID.String())
	if it.Variation != nil {
		b.WriteString(":")
		b.WriteString(it.Variation.Name)
	}
	if len(it.AddOns) > 0 {
		parts := make([]string, 0, len(it.AddOns))
		for _, a := range it.AddOns {
			parts = append(parts, a.Name+"x"+strconv.FormatInt(a.units(), 10))
		}
		sort.Strings(parts)
		b.WriteString(":")
		b.WriteString(strings.Join(parts, ","))
	}
	return b.String()
}

// LineTotal is TotalPrice × Quantity.
func (it Item) LineTotal() decimal.Decimal {
	return it.TotalPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Cart is not safe for concurrent use; the session store serializes access.
type Cart struct {
	items []Item
}

// MaxQuantity caps a single line.
const MaxQuantity = 99

func New() *Cart {
	return &Cart{}
}

// Add appends the item or bumps the quantity of an identical line.
func (c *Cart) Add(item Item, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}
	if item.ID == "" {
		item.ID = item.lineKey()
	}
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i].Quantity = clampQuantity(c.items[i].Quantity, quantity)
			return
		}
	}
	item.Quantity = clampQuantity(0, quantity)
	c.items = append(c.items, item)
}

// UpdateQuantity sets the quantity of a line, removing it when quantity <= 0.
func (c *Cart) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		c.Remove(id)
		return
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity = clampQuantity(0, quantity)
			return
		}
	}
}

func clampQuantity(have, add int) int {
	if add >= MaxQuantity || have >= MaxQuantity-add {
		return MaxQuantity
	}
	return have + add
}

func (c *Cart) Remove(id string) {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Cart) Clear() {
	c.items = nil
}

// Get returns the line with the given id.
func (c *Cart) Get(id string) (Item, bool) {
	for _, it := range c.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Len() int {
	return len(c.items)
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// TotalPrice sums TotalPrice × Quantity over all lines.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.LineTotal())
	}
	return total
}

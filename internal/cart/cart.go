// Package cart holds the shopper's current selection and its derived totals.
//
// A Cart has a single logical writer (the session that owns it); mutations are
// synchronous and observers are notified after each one.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/velora/storefront/internal/catalog"
)

// Line pairs a product snapshot with a positive quantity. The snapshot keeps
// the price the shopper saw; later catalog changes do not affect it.
type Line struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Product.PriceDecimal().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	lines []Line
	subs  []func()
}

func New() *Cart { return &Cart{} }

// Restore rebuilds a cart from persisted lines, e.g. a session snapshot.
func Restore(lines []Line) *Cart {
	c := &Cart{}
	c.lines = append(c.lines, lines...)
	return c
}

// Subscribe registers fn to run after every mutation.
func (c *Cart) Subscribe(fn func()) {
	c.subs = append(c.subs, fn)
}

func (c *Cart) notify() {
	for _, fn := range c.subs {
		fn()
	}
}

func (c *Cart) find(productID string) int {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// clampQuantity keeps q inside [1, stock].
func clampQuantity(q, stock int) int {
	if q < 1 {
		q = 1
	}
	if q > stock {
		q = stock
	}
	return q
}

// AddItem adds quantity of p, merging into an existing line for the same
// product. Quantities are clamped to the product's stock at call time; a
// product with no stock is not added.
func (c *Cart) AddItem(p catalog.Product, quantity int) {
	if p.StockQuantity <= 0 {
		return
	}
	if i := c.find(p.ID); i >= 0 {
		c.lines[i].Quantity = clampQuantity(c.lines[i].Quantity+quantity, p.StockQuantity)
		c.lines[i].Product = p
	} else {
		c.lines = append(c.lines, Line{Product: p, Quantity: clampQuantity(quantity, p.StockQuantity)})
	}
	c.notify()
}

// UpdateQuantity sets the line's quantity, clamped to the snapshot's stock.
// A quantity <= 0 removes the line. Unknown product ids are a no-op.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	i := c.find(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	} else {
		c.lines[i].Quantity = clampQuantity(quantity, c.lines[i].Product.StockQuantity)
	}
	c.notify()
}

func (c *Cart) RemoveItem(productID string) {
	i := c.find(productID)
	if i < 0 {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.notify()
}

func (c *Cart) Clear() {
	if len(c.lines) == 0 {
		return
	}
	c.lines = nil
	c.notify()
}

// Items returns a copy of the current lines in insertion order.
func (c *Cart) Items() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) TotalItems() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// TotalPrice sums subtotals over the snapshot prices held in the cart.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

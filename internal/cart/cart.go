// Package cart holds the session-local accumulation of products prior to
// checkout. The cart is never persisted; it lives exactly as long as the
// console session that owns it.
package cart

import (
	"errors"

	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/domain"
)

var ErrOutOfStock = errors.New("product is out of stock")

// Line is one cart entry. Price and name are denormalized copies captured at
// the moment of the first add, so the cart stays stable while the catalog
// refreshes underneath it. Quantity is always >= 1; a line decremented to
// zero is removed, never kept.
type Line struct {
	ProductID  int64
	Quantity   int
	PriceAtAdd float64
	NameAtAdd  string
}

// Cart keys lines uniquely by product id, in insertion order. It is owned by
// a single session and mutated only from that session's command loop, so it
// carries no locking.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of p into the cart. A product whose cached stock is zero
// is rejected without mutating anything. The check is advisory only: the
// snapshot may be stale, and the backend re-validates at submission.
func (c *Cart) Add(p domain.Product) error {
	if p.StockQuantity <= 0 {
		return ErrOutOfStock
	}
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return nil
		}
	}
	c.lines = append(c.lines, Line{
		ProductID:  p.ID,
		Quantity:   1,
		PriceAtAdd: p.Price,
		NameAtAdd:  p.Name,
	})
	return nil
}

// Decrement removes one unit of the given product. The line disappears when
// its quantity reaches zero. Returns false when the product is not in the
// cart.
func (c *Cart) Decrement(productID int64) bool {
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		c.lines[i].Quantity--
		if c.lines[i].Quantity == 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
		return true
	}
	return false
}

// Remove drops the whole line for the given product.
func (c *Cart) Remove(productID int64) bool {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the cart unconditionally.
func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// LineCount is the number of distinct products.
func (c *Cart) LineCount() int {
	return len(c.lines)
}

// TotalQuantity is the sum of quantities across all lines.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Total is the cart value at add-time prices. Displayed stock and price may
// have moved since; the backend prices the order authoritatively.
func (c *Cart) Total() float64 {
	var sum float64
	for _, l := range c.lines {
		sum += l.PriceAtAdd * float64(l.Quantity)
	}
	return sum
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Items projects the cart into the write-only request shape sent to the
// backend: one entry per distinct product with the accumulated quantity.
func (c *Cart) Items() []domain.OrderRequestItem {
	items := make([]domain.OrderRequestItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, domain.OrderRequestItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return items
}

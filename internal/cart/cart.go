package cart

import (
	"errors"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

var ErrNotFound = errors.New("product not in cart")

// Cart is the in-progress selection of purchasable items for one customer.
// It preserves insertion order for display and keeps product ids unique.
// The zero-quantity invariant holds across every mutation: an item whose
// quantity drops to 0 is removed, never retained.
type Cart struct {
	items []domain.LineItem
	index map[string]int
}

func New() *Cart {
	return &Cart{index: make(map[string]int)}
}

// FromItems rebuilds a cart from persisted line items, dropping any entry
// that violates the quantity invariant.
func FromItems(items []domain.LineItem) *Cart {
	c := New()
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if pos, ok := c.index[item.ProductID]; ok {
			c.items[pos].Quantity += item.Quantity
			continue
		}
		c.index[item.ProductID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c
}

// AddItem inserts the product or increments the existing line's quantity.
// Quantities below 1 count as 1. No upper bound is enforced here; stock
// validation belongs to the backend at submission time.
func (c *Cart) AddItem(p domain.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	if pos, ok := c.index[p.ProductID]; ok {
		c.items[pos].Quantity += quantity
		return
	}
	c.index[p.ProductID] = len(c.items)
	c.items = append(c.items, domain.LineItem{
		ProductID: p.ProductID,
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		Quantity:  quantity,
		ImageRef:  p.ImageRef,
	})
}

// RemoveItem deletes the line for productID. Removing an absent product is
// a no-op, not an error.
func (c *Cart) RemoveItem(productID string) {
	pos, ok := c.index[productID]
	if !ok {
		return
	}
	c.items = append(c.items[:pos], c.items[pos+1:]...)
	delete(c.index, productID)
	for i := pos; i < len(c.items); i++ {
		c.index[c.items[i].ProductID] = i
	}
}

// SetQuantity overwrites the line's quantity. A quantity of 0 or less is
// equivalent to RemoveItem. Unknown products surface ErrNotFound.
func (c *Cart) SetQuantity(productID string, quantity int) error {
	pos, ok := c.index[productID]
	if !ok {
		return ErrNotFound
	}
	if quantity <= 0 {
		c.RemoveItem(productID)
		return nil
	}
	c.items[pos].Quantity = quantity
	return nil
}

func (c *Cart) Clear() {
	c.items = nil
	c.index = make(map[string]int)
}

func (c *Cart) Len() int {
	return len(c.items)
}

// Get returns the line for productID and whether it exists.
func (c *Cart) Get(productID string) (domain.LineItem, bool) {
	pos, ok := c.index[productID]
	if !ok {
		return domain.LineItem{}, false
	}
	return c.items[pos], true
}

// Snapshot returns a copy of the line items in insertion order. Mutating
// the returned slice does not touch the cart; this is what the order
// assembler freezes at checkout time.
func (c *Cart) Snapshot() []domain.LineItem {
	snapshot := make([]domain.LineItem, len(c.items))
	copy(snapshot, c.items)
	return snapshot
}

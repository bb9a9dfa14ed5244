package cart

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

func product(id string, price float64) domain.Product {
	return domain.Product{ProductID: id, Name: "product " + id, UnitPrice: decimal.NewFromFloat(price)}
}

func TestCart_AddItem(t *testing.T) {
	t.Run("inserts new line items in order", func(t *testing.T) {
		c := New()
		c.AddItem(product("a", 10), 1)
		c.AddItem(product("b", 20), 2)

		snapshot := c.Snapshot()
		if len(snapshot) != 2 {
			t.Fatalf("expected 2 items, got %d", len(snapshot))
		}
		if snapshot[0].ProductID != "a" || snapshot[1].ProductID != "b" {
			t.Errorf("insertion order not preserved: %v", snapshot)
		}
	})

	t.Run("increments quantity for existing product", func(t *testing.T) {
		c := New()
		c.AddItem(product("a", 10), 1)
		c.AddItem(product("a", 10), 3)

		snapshot := c.Snapshot()
		if len(snapshot) != 1 {
			t.Fatalf("expected 1 item, got %d", len(snapshot))
		}
		if snapshot[0].Quantity != 4 {
			t.Errorf("expected quantity 4, got %d", snapshot[0].Quantity)
		}
	})

	t.Run("treats quantity below 1 as 1", func(t *testing.T) {
		c := New()
		c.AddItem(product("a", 10), 0)

		if got := c.Snapshot()[0].Quantity; got != 1 {
			t.Errorf("expected quantity 1, got %d", got)
		}
	})
}

func TestCart_RemoveItem(t *testing.T) {
	t.Run("removes and reindexes", func(t *testing.T) {
		c := New()
		c.AddItem(product("a", 10), 1)
		c.AddItem(product("b", 20), 1)
		c.AddItem(product("c", 30), 1)

		c.RemoveItem("b")

		snapshot := c.Snapshot()
		if len(snapshot) != 2 {
			t.Fatalf("expected 2 items, got %d", len(snapshot))
		}
		if snapshot[0].ProductID != "a" || snapshot[1].ProductID != "c" {
			t.Errorf("unexpected order after removal: %v", snapshot)
		}

		// Index must still resolve the shifted item.
		if err := c.SetQuantity("c", 5); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if got := c.Snapshot()[1].Quantity; got != 5 {
			t.Errorf("expected quantity 5, got %d", got)
		}
	})

	t.Run("absent product is a no-op", func(t *testing.T) {
		c := New()
		c.AddItem(product("a", 10), 1)

		c.RemoveItem("missing")

		if c.Len() != 1 {
			t.Errorf("expected 1 item, got %d", c.Len())
		}
	})
}

func TestCart_SetQuantity(t *testing.T) {
	t.Run("overwrites quantity", func(t *testing.T) {
		c := New()
		c.AddItem(product("a", 10), 1)

		if err := c.SetQuantity("a", 7); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := c.Snapshot()[0].Quantity; got != 7 {
			t.Errorf("expected quantity 7, got %d", got)
		}
	})

	t.Run("zero or negative removes the line", func(t *testing.T) {
		c := New()
		c.AddItem(product("a", 10), 3)

		if err := c.SetQuantity("a", 0); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Len() != 0 {
			t.Errorf("expected empty cart, got %d items", c.Len())
		}
	})

	t.Run("unknown product returns ErrNotFound", func(t *testing.T) {
		c := New()

		err := c.SetQuantity("missing", 2)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCart_Get(t *testing.T) {
	c := New()
	c.AddItem(product("a", 10), 2)

	line, ok := c.Get("a")
	if !ok {
		t.Fatal("expected product a in cart")
	}
	if line.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", line.Quantity)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected missing product to be absent")
	}
}

func TestCart_Invariants(t *testing.T) {
	t.Run("quantities stay positive and ids unique over mutation sequences", func(t *testing.T) {
		c := New()
		c.AddItem(product("a", 10), 2)
		c.AddItem(product("b", 5), 1)
		c.AddItem(product("a", 10), 1)
		_ = c.SetQuantity("b", -3)
		c.RemoveItem("missing")
		c.AddItem(product("b", 5), 1)
		_ = c.SetQuantity("a", 1)

		seen := make(map[string]bool)
		for _, item := range c.Snapshot() {
			if item.Quantity < 1 {
				t.Errorf("item %s has quantity %d", item.ProductID, item.Quantity)
			}
			if seen[item.ProductID] {
				t.Errorf("duplicate product id %s", item.ProductID)
			}
			seen[item.ProductID] = true
		}
	})
}

func TestCart_Snapshot(t *testing.T) {
	t.Run("is detached from the cart", func(t *testing.T) {
		c := New()
		c.AddItem(product("a", 10), 1)

		snapshot := c.Snapshot()
		snapshot[0].Quantity = 99

		if got := c.Snapshot()[0].Quantity; got != 1 {
			t.Errorf("mutating a snapshot leaked into the cart: quantity %d", got)
		}
	})
}

func TestFromItems(t *testing.T) {
	t.Run("drops invalid quantities and merges duplicates", func(t *testing.T) {
		c := FromItems([]domain.LineItem{
			{ProductID: "a", UnitPrice: decimal.NewFromInt(10), Quantity: 2},
			{ProductID: "b", UnitPrice: decimal.NewFromInt(5), Quantity: 0},
			{ProductID: "a", UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		})

		snapshot := c.Snapshot()
		if len(snapshot) != 1 {
			t.Fatalf("expected 1 item, got %d", len(snapshot))
		}
		if snapshot[0].Quantity != 3 {
			t.Errorf("expected merged quantity 3, got %d", snapshot[0].Quantity)
		}
	})
}

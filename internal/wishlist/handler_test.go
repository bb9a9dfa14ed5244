package wishlist

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joao-fontenele/storefront-core/internal/cart"
	"github.com/joao-fontenele/storefront-core/internal/domain"
)

type memRepository struct {
	lists map[string][]domain.WishlistEntry
}

func (m *memRepository) Load(_ context.Context, customerID string) (*Wishlist, error) {
	return FromEntries(m.lists[customerID]), nil
}

func (m *memRepository) Save(_ context.Context, customerID string, w *Wishlist) error {
	m.lists[customerID] = w.Entries()
	return nil
}

type memCartRepository struct {
	carts map[string][]domain.LineItem
}

func (m *memCartRepository) Load(_ context.Context, customerID string) (*cart.Cart, error) {
	return cart.FromItems(m.carts[customerID]), nil
}

func (m *memCartRepository) Save(_ context.Context, customerID string, c *cart.Cart) error {
	m.carts[customerID] = c.Snapshot()
	return nil
}

func (m *memCartRepository) Clear(_ context.Context, customerID string) error {
	delete(m.carts, customerID)
	return nil
}

func testHandler() (*Handler, *memRepository, *memCartRepository) {
	repo := &memRepository{lists: make(map[string][]domain.WishlistEntry)}
	cartRepo := &memCartRepository{carts: make(map[string][]domain.LineItem)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(repo, cartRepo, logger), repo, cartRepo
}

func toggle(t *testing.T, handler *Handler, productID string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"product":{"product_id":"` + productID + `","name":"p","unit_price":"12.5"}}`
	req := httptest.NewRequest(http.MethodPost, "/wishlist/toggle", strings.NewReader(body))
	req.Header.Set("X-Customer-ID", "cust-1")
	rec := httptest.NewRecorder()
	handler.HandleToggle(rec, req)
	return rec
}

func TestHandler_Toggle(t *testing.T) {
	t.Run("toggling twice removes the entry", func(t *testing.T) {
		handler, repo, _ := testHandler()

		rec := toggle(t, handler, "p-1")
		var resp toggleResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.InWishlist {
			t.Error("expected in_wishlist true after first toggle")
		}

		rec = toggle(t, handler, "p-1")
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.InWishlist {
			t.Error("expected in_wishlist false after second toggle")
		}
		if len(repo.lists["cust-1"]) != 0 {
			t.Errorf("expected empty persisted wishlist, got %v", repo.lists["cust-1"])
		}
	})
}

func TestHandler_MoveToCart(t *testing.T) {
	t.Run("adds quantity 1 to cart and keeps the wishlist entry", func(t *testing.T) {
		handler, repo, cartRepo := testHandler()
		toggle(t, handler, "p-1")

		req := httptest.NewRequest(http.MethodPost, "/wishlist/p-1/move-to-cart", nil)
		req.Header.Set("X-Customer-ID", "cust-1")
		req.SetPathValue("productId", "p-1")
		rec := httptest.NewRecorder()
		handler.HandleMoveToCart(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}

		items := cartRepo.carts["cust-1"]
		if len(items) != 1 || items[0].Quantity != 1 {
			t.Errorf("expected one cart item with quantity 1, got %v", items)
		}
		if len(repo.lists["cust-1"]) != 1 {
			t.Error("expected wishlist entry to survive the move")
		}
	})

	t.Run("missing entry returns 404", func(t *testing.T) {
		handler, _, _ := testHandler()

		req := httptest.NewRequest(http.MethodPost, "/wishlist/ghost/move-to-cart", nil)
		req.Header.Set("X-Customer-ID", "cust-1")
		req.SetPathValue("productId", "ghost")
		rec := httptest.NewRecorder()
		handler.HandleMoveToCart(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

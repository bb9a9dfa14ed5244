package checkout

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-core/internal/cart"
	"github.com/joao-fontenele/storefront-core/internal/domain"
)

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

type memDataStore struct {
	bundles map[string]Bundle
}

func (m *memDataStore) SaveBundle(_ context.Context, customerID string, b Bundle) error {
	m.bundles[customerID] = b
	return nil
}

func (m *memDataStore) LoadBundle(_ context.Context, customerID string) (*Bundle, error) {
	b, ok := m.bundles[customerID]
	if !ok {
		return nil, ErrNoData
	}
	return &b, nil
}

func ordersStub(t *testing.T, called *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called++
		var order domain.Order
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			t.Errorf("failed to decode submitted order: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(submitResponse{Success: true, Order: &order})
	}))
}

func newTestHandler(ordersURL string) (*Handler, *memCartRepository, *memDataStore) {
	cartRepo := &memCartRepository{carts: make(map[string][]domain.LineItem)}
	dataStore := &memDataStore{bundles: make(map[string]Bundle)}
	client := NewClient(ordersURL, &http.Client{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(cartRepo, client, dataStore, logger), cartRepo, dataStore
}

func seedCart(repo *memCartRepository, unitPrice string, quantity int) {
	repo.carts["cust-1"] = []domain.LineItem{
		{ProductID: "p-1", Name: "product", UnitPrice: decimal.RequireFromString(unitPrice), Quantity: quantity},
	}
}

const validBody = `{
	"customer": {"name": "Ada", "email": "ada@example.com", "phone": "555-0100"},
	"shipping_address": {"address": "1 Main St", "city": "Dubai", "country": "UAE"},
	"payment_method": "credit card"
}`

func submit(t *testing.T, handler *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.Header.Set("X-Customer-ID", "cust-1")
	rec := httptest.NewRecorder()
	handler.HandleSubmit(rec, req)
	return rec
}

func TestHandler_Submit(t *testing.T) {
	t.Run("successful checkout clears the cart and saves checkout data", func(t *testing.T) {
		var called int
		server := ordersStub(t, &called)
		defer server.Close()

		handler, cartRepo, dataStore := newTestHandler(server.URL)
		seedCart(cartRepo, "100", 1)

		rec := submit(t, handler, validBody)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if called != 1 {
			t.Errorf("expected 1 gateway call, got %d", called)
		}

		var resp checkoutResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.Success || resp.Order == nil {
			t.Fatalf("expected success with order, got %+v", resp)
		}
		if resp.Order.PaymentMethod != domain.PaymentCard {
			t.Errorf("expected normalized Card, got %s", resp.Order.PaymentMethod)
		}
		if !resp.Order.Breakdown.Total.Equal(decimal.RequireFromString("105")) {
			t.Errorf("expected total 105, got %s", resp.Order.Breakdown.Total.String())
		}

		if _, ok := cartRepo.carts["cust-1"]; ok {
			t.Error("expected cart cleared after successful submission")
		}
		if _, ok := dataStore.bundles["cust-1"]; !ok {
			t.Error("expected checkout data saved")
		}
	})

	t.Run("empty cart is rejected before the gateway is called", func(t *testing.T) {
		var called int
		server := ordersStub(t, &called)
		defer server.Close()

		handler, _, _ := newTestHandler(server.URL)

		rec := submit(t, handler, validBody)

		if rec.Code != http.StatusConflict {
			t.Errorf("expected status 409, got %d", rec.Code)
		}
		if called != 0 {
			t.Errorf("expected no gateway calls, got %d", called)
		}
	})

	t.Run("gateway failure preserves the cart", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(submitResponse{Success: false, Error: "database unavailable"})
		}))
		defer server.Close()

		handler, cartRepo, _ := newTestHandler(server.URL)
		seedCart(cartRepo, "40", 2)
		before := len(cartRepo.carts["cust-1"])

		rec := submit(t, handler, validBody)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected status 502, got %d", rec.Code)
		}
		if len(cartRepo.carts["cust-1"]) != before {
			t.Error("expected cart unchanged after gateway failure")
		}

		var resp checkoutResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !strings.Contains(resp.Error, "database unavailable") {
			t.Errorf("expected gateway error surfaced verbatim, got %q", resp.Error)
		}
	})

	t.Run("unreachable gateway preserves the cart", func(t *testing.T) {
		handler, cartRepo, _ := newTestHandler("http://localhost:1")
		seedCart(cartRepo, "40", 1)

		rec := submit(t, handler, validBody)

		if rec.Code != http.StatusBadGateway {
			t.Errorf("expected status 502, got %d", rec.Code)
		}
		if len(cartRepo.carts["cust-1"]) != 1 {
			t.Error("expected cart unchanged after network failure")
		}
	})

	t.Run("invalid promo code proceeds without discount", func(t *testing.T) {
		var called int
		server := ordersStub(t, &called)
		defer server.Close()

		handler, cartRepo, _ := newTestHandler(server.URL)
		seedCart(cartRepo, "100", 1)

		body := strings.Replace(validBody, `"payment_method": "credit card"`,
			`"payment_method": "credit card", "promo_code": "BOGUS"`, 1)
		rec := submit(t, handler, body)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d", rec.Code)
		}

		var resp checkoutResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.PromoError == "" {
			t.Error("expected promo_error to be set")
		}
		if !resp.Order.Breakdown.Discount.IsZero() {
			t.Errorf("expected no discount, got %s", resp.Order.Breakdown.Discount.String())
		}
	})

	t.Run("valid promo code is applied", func(t *testing.T) {
		var called int
		server := ordersStub(t, &called)
		defer server.Close()

		handler, cartRepo, _ := newTestHandler(server.URL)
		seedCart(cartRepo, "100", 1)

		body := strings.Replace(validBody, `"payment_method": "credit card"`,
			`"payment_method": "credit card", "promo_code": "freeship"`, 1)
		rec := submit(t, handler, body)

		var resp checkoutResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !resp.Order.Breakdown.Discount.Equal(decimal.RequireFromString("15")) {
			t.Errorf("expected discount 15, got %s", resp.Order.Breakdown.Discount.String())
		}
		if resp.Order.PromoCode != "FREESHIP" {
			t.Errorf("expected FREESHIP recorded, got %q", resp.Order.PromoCode)
		}
	})

	t.Run("unknown payment method is rejected", func(t *testing.T) {
		handler, cartRepo, _ := newTestHandler("http://unused")
		seedCart(cartRepo, "10", 1)

		body := strings.Replace(validBody, "credit card", "barter", 1)
		rec := submit(t, handler, body)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
	})
}

func TestHandler_GetData(t *testing.T) {
	t.Run("returns 404 before any checkout", func(t *testing.T) {
		handler, _, _ := newTestHandler("http://unused")

		req := httptest.NewRequest(http.MethodGet, "/checkout/data", nil)
		req.Header.Set("X-Customer-ID", "cust-1")
		rec := httptest.NewRecorder()
		handler.HandleGetData(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})

	t.Run("returns the last submitted bundle", func(t *testing.T) {
		var called int
		server := ordersStub(t, &called)
		defer server.Close()

		handler, cartRepo, _ := newTestHandler(server.URL)
		seedCart(cartRepo, "10", 1)
		submit(t, handler, validBody)

		req := httptest.NewRequest(http.MethodGet, "/checkout/data", nil)
		req.Header.Set("X-Customer-ID", "cust-1")
		rec := httptest.NewRecorder()
		handler.HandleGetData(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}

		var bundle Bundle
		if err := json.Unmarshal(rec.Body.Bytes(), &bundle); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if bundle.Customer.Email != "ada@example.com" {
			t.Errorf("unexpected bundle customer: %+v", bundle.Customer)
		}
	})
}

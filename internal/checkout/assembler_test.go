package checkout

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-core/internal/domain"
	"github.com/joao-fontenele/storefront-core/internal/pricing"
)

func snapshot(unitPrice float64, quantity int) []domain.LineItem {
	return []domain.LineItem{
		{ProductID: "p-1", Name: "product", UnitPrice: decimal.NewFromFloat(unitPrice), Quantity: quantity},
	}
}

func validCustomer() domain.Customer {
	return domain.Customer{Name: "Ada", Email: "ada@example.com", Phone: "555-0100"}
}

func validAddress() domain.ShippingAddress {
	return domain.ShippingAddress{Address: "1 Main St", City: "Dubai", Country: "UAE"}
}

func TestAssemble(t *testing.T) {
	t.Run("empty cart returns ErrEmptyCart", func(t *testing.T) {
		_, err := Assemble(nil, validCustomer(), validAddress(), domain.PaymentCard, nil)
		if !errors.Is(err, ErrEmptyCart) {
			t.Errorf("expected ErrEmptyCart, got %v", err)
		}
	})

	t.Run("missing email names the field", func(t *testing.T) {
		customer := validCustomer()
		customer.Email = ""

		_, err := Assemble(snapshot(10, 1), customer, validAddress(), domain.PaymentCard, nil)

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if validationErr.Field != "email" {
			t.Errorf("expected field email, got %s", validationErr.Field)
		}
	})

	t.Run("missing address names the field", func(t *testing.T) {
		address := validAddress()
		address.Address = ""

		_, err := Assemble(snapshot(10, 1), validCustomer(), address, domain.PaymentCard, nil)

		var validationErr *ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if validationErr.Field != "address" {
			t.Errorf("expected field address, got %s", validationErr.Field)
		}
	})

	t.Run("COD orders start with payment pending", func(t *testing.T) {
		order, err := Assemble(snapshot(10, 1), validCustomer(), validAddress(), domain.PaymentCOD, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if order.PaymentStatus != domain.PaymentStatusPending {
			t.Errorf("expected Pending, got %s", order.PaymentStatus)
		}
	})

	t.Run("non-COD orders start with payment succeeded", func(t *testing.T) {
		for _, method := range []domain.PaymentMethod{domain.PaymentCard, domain.PaymentPayPal, domain.PaymentBankTransfer} {
			order, err := Assemble(snapshot(10, 1), validCustomer(), validAddress(), method, nil)
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", method, err)
			}
			if order.PaymentStatus != domain.PaymentStatusSucceeded {
				t.Errorf("%s: expected Succeeded, got %s", method, order.PaymentStatus)
			}
		}
	})

	t.Run("breakdown is computed and rounded", func(t *testing.T) {
		promo, err := pricing.LookupPromo("SAVE20")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		order, err := Assemble(snapshot(100, 1), validCustomer(), validAddress(), domain.PaymentCard, promo)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !order.Breakdown.Total.Equal(decimal.RequireFromString("85")) {
			t.Errorf("expected total 85, got %s", order.Breakdown.Total.String())
		}
		if order.PromoCode != "SAVE20" {
			t.Errorf("expected promo code recorded, got %q", order.PromoCode)
		}
	})

	t.Run("generates unique order ids", func(t *testing.T) {
		first, err := Assemble(snapshot(10, 1), validCustomer(), validAddress(), domain.PaymentCard, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, err := Assemble(snapshot(10, 1), validCustomer(), validAddress(), domain.PaymentCard, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if first.ID == "" || first.ID == second.ID {
			t.Errorf("expected distinct non-empty ids, got %q and %q", first.ID, second.ID)
		}
	})

	t.Run("items are snapshotted as given", func(t *testing.T) {
		items := snapshot(25, 2)

		order, err := Assemble(items, validCustomer(), validAddress(), domain.PaymentCard, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
			t.Errorf("unexpected order items: %v", order.Items)
		}
	})
}

package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

func items(unitPrice float64, quantity int) []domain.LineItem {
	return []domain.LineItem{
		{ProductID: "p-1", Name: "test product", UnitPrice: decimal.NewFromFloat(unitPrice), Quantity: quantity},
	}
}

func assertAmount(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: expected %s, got %s", name, want, got.String())
	}
}

func TestComputeBreakdown(t *testing.T) {
	t.Run("subtotal above threshold ships free", func(t *testing.T) {
		b := ComputeBreakdown(items(100, 1), nil)

		assertAmount(t, "subtotal", b.Subtotal, "100")
		assertAmount(t, "shipping", b.Shipping, "0")
		assertAmount(t, "tax", b.Tax, "5")
		assertAmount(t, "discount", b.Discount, "0")
		assertAmount(t, "total", b.Total, "105")
	})

	t.Run("subtotal below threshold pays base fee", func(t *testing.T) {
		b := ComputeBreakdown(items(40, 1), nil)

		assertAmount(t, "shipping", b.Shipping, "15")
		assertAmount(t, "tax", b.Tax, "2")
		assertAmount(t, "total", b.Total, "57")
	})

	t.Run("subtotal exactly at threshold still pays shipping", func(t *testing.T) {
		b := ComputeBreakdown(items(55, 1), nil)

		assertAmount(t, "shipping", b.Shipping, "15")
	})

	t.Run("percentage promo discounts subtotal", func(t *testing.T) {
		promo, err := LookupPromo("SAVE20")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		b := ComputeBreakdown(items(100, 1), promo)

		assertAmount(t, "discount", b.Discount, "20")
		assertAmount(t, "shipping", b.Shipping, "0")
		assertAmount(t, "tax", b.Tax, "5")
		assertAmount(t, "total", b.Total, "85")
	})

	t.Run("fixed promo with free shipping", func(t *testing.T) {
		promo, err := LookupPromo("FREESHIP")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		b := ComputeBreakdown(items(100, 1), promo)

		assertAmount(t, "shipping", b.Shipping, "0")
		assertAmount(t, "discount", b.Discount, "15")
		assertAmount(t, "tax", b.Tax, "5")
		assertAmount(t, "total", b.Total, "90")
	})

	t.Run("free shipping promo overrides base fee below threshold", func(t *testing.T) {
		promo, err := LookupPromo("FREESHIP")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		b := ComputeBreakdown(items(40, 1), promo)

		assertAmount(t, "shipping", b.Shipping, "0")
		assertAmount(t, "total", b.Total, "27")
	})

	t.Run("discount is clamped so total never goes negative", func(t *testing.T) {
		promo := &domain.PromoCode{Code: "BIG", Kind: domain.DiscountFixed, Value: decimal.NewFromInt(500)}

		b := ComputeBreakdown(items(10, 1), promo)

		assertAmount(t, "discount", b.Discount, "25.5")
		assertAmount(t, "total", b.Total, "0")
	})

	t.Run("empty cart yields all zeros", func(t *testing.T) {
		b := ComputeBreakdown(nil, nil)

		assertAmount(t, "subtotal", b.Subtotal, "0")
		assertAmount(t, "shipping", b.Shipping, "0")
		assertAmount(t, "tax", b.Tax, "0")
		assertAmount(t, "total", b.Total, "0")
	})

	t.Run("tax applies to pre-discount subtotal", func(t *testing.T) {
		promo, err := LookupPromo("NEWUSER")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		b := ComputeBreakdown(items(100, 1), promo)

		// 5% of 100, not of the discounted 75.
		assertAmount(t, "tax", b.Tax, "5")
		assertAmount(t, "total", b.Total, "80")
	})

	t.Run("quantities multiply into the subtotal", func(t *testing.T) {
		b := ComputeBreakdown(items(12.5, 4), nil)

		assertAmount(t, "subtotal", b.Subtotal, "50")
		assertAmount(t, "shipping", b.Shipping, "15")
	})

	t.Run("is idempotent", func(t *testing.T) {
		snapshot := items(33.33, 3)
		promo, _ := LookupPromo("welcome10")

		first := ComputeBreakdown(snapshot, promo)
		second := ComputeBreakdown(snapshot, promo)

		if !first.Total.Equal(second.Total) || !first.Discount.Equal(second.Discount) {
			t.Errorf("expected identical breakdowns, got %v and %v", first, second)
		}
	})
}

func TestLookupPromo(t *testing.T) {
	t.Run("matches case-insensitively", func(t *testing.T) {
		promo, err := LookupPromo("save20")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if promo.Code != "SAVE20" {
			t.Errorf("expected SAVE20, got %s", promo.Code)
		}
	})

	t.Run("unknown code returns ErrInvalidPromoCode", func(t *testing.T) {
		_, err := LookupPromo("NOPE")
		if !errors.Is(err, ErrInvalidPromoCode) {
			t.Errorf("expected ErrInvalidPromoCode, got %v", err)
		}
	})
}

func TestRounded(t *testing.T) {
	b := ComputeBreakdown(items(33.33, 1), nil)

	rounded := b.Rounded()

	assertAmount(t, "tax", rounded.Tax, "1.67")
	assertAmount(t, "total", rounded.Total, "50")
}

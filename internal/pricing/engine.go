package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

var ErrInvalidPromoCode = errors.New("invalid promo code")

// Free shipping kicks in strictly above the threshold; below or at it the
// base fee applies. Tax is charged on the pre-discount subtotal.
var (
	FreeShippingThreshold = decimal.NewFromInt(55)
	BaseShippingFee       = decimal.NewFromInt(15)
	TaxRate               = decimal.NewFromFloat(0.05)
)

var oneHundred = decimal.NewFromInt(100)

// promoCodes is the static promo table, immutable at runtime. Keys are
// upper-case; LookupPromo normalizes before matching.
var promoCodes = map[string]domain.PromoCode{
	"WELCOME10": {Code: "WELCOME10", Kind: domain.DiscountPercentage, Value: decimal.NewFromInt(10)},
	"SAVE20":    {Code: "SAVE20", Kind: domain.DiscountPercentage, Value: decimal.NewFromInt(20)},
	"FREESHIP":  {Code: "FREESHIP", Kind: domain.DiscountFixed, Value: decimal.NewFromInt(15), FreeShipping: true},
	"NEWUSER":   {Code: "NEWUSER", Kind: domain.DiscountPercentage, Value: decimal.NewFromInt(25)},
}

// LookupPromo resolves a code case-insensitively against the static table.
// Unknown codes return ErrInvalidPromoCode; callers recover by computing the
// breakdown without a promo.
func LookupPromo(code string) (*domain.PromoCode, error) {
	promo, ok := promoCodes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, ErrInvalidPromoCode
	}
	return &promo, nil
}

// ComputeBreakdown derives the price breakdown for a cart snapshot and an
// optional promo. It is pure: same snapshot and promo always yield the same
// breakdown. All arithmetic stays unrounded; callers round via Rounded()
// at display or persistence time only.
func ComputeBreakdown(items []domain.LineItem, promo *domain.PromoCode) domain.PriceBreakdown {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	if subtotal.IsZero() {
		return domain.PriceBreakdown{
			Subtotal: decimal.Zero,
			Tax:      decimal.Zero,
			Shipping: decimal.Zero,
			Discount: decimal.Zero,
			Total:    decimal.Zero,
		}
	}

	shipping := BaseShippingFee
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	if promo != nil && promo.FreeShipping {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(TaxRate)

	discount := decimal.Zero
	if promo != nil {
		switch promo.Kind {
		case domain.DiscountPercentage:
			discount = subtotal.Mul(promo.Value.Div(oneHundred))
		case domain.DiscountFixed:
			discount = promo.Value
		}
		// Discount never drives the total negative.
		if max := subtotal.Add(tax).Add(shipping); discount.GreaterThan(max) {
			discount = max
		}
	}

	return domain.PriceBreakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    subtotal.Add(tax).Add(shipping).Sub(discount),
	}
}

package domain

import "github.com/shopspring/decimal"

// PriceBreakdown is derived from a cart snapshot and never stored unrounded.
// Invariant: Total = Subtotal + Tax + Shipping - Discount, Total >= 0.
type PriceBreakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Rounded returns the breakdown with every amount rounded half-up to two
// decimal places. Rounding happens only at display or persistence time so
// intermediate arithmetic does not compound error.
func (b PriceBreakdown) Rounded() PriceBreakdown {
	return PriceBreakdown{
		Subtotal: b.Subtotal.Round(2),
		Tax:      b.Tax.Round(2),
		Shipping: b.Shipping.Round(2),
		Discount: b.Discount.Round(2),
		Total:    b.Total.Round(2),
	}
}

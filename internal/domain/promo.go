package domain

import "github.com/shopspring/decimal"

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

// PromoCode is a static, named discount rule. Codes are matched
// case-insensitively and stored upper-case.
type PromoCode struct {
	Code         string          `json:"code"`
	Kind         DiscountKind    `json:"kind"`
	Value        decimal.Decimal `json:"value"`
	FreeShipping bool            `json:"free_shipping,omitempty"`
}

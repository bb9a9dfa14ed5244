package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Order is the immutable snapshot assembled at checkout: cart items, pricing
// and customer info frozen at submission time. Status transitions after
// creation are owned by the orders service, never by the storefront.
type Order struct {
	ID              string          `json:"id"`
	Customer        Customer        `json:"customer"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Items           []LineItem      `json:"items"`
	Breakdown       PriceBreakdown  `json:"breakdown"`
	PromoCode       string          `json:"promo_code,omitempty"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

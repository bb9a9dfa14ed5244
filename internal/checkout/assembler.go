package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/joao-fontenele/storefront-core/internal/domain"
	"github.com/joao-fontenele/storefront-core/internal/pricing"
)

// Assemble freezes a cart snapshot, customer input and the computed price
// breakdown into an immutable order. It never talks to the network; any
// precondition failure aborts before the gateway is involved.
func Assemble(snapshot []domain.LineItem, customer domain.Customer, address domain.ShippingAddress, method domain.PaymentMethod, promo *domain.PromoCode) (*domain.Order, error) {
	if len(snapshot) == 0 {
		return nil, ErrEmptyCart
	}
	if customer.Email == "" {
		return nil, &ValidationError{Field: "email"}
	}
	if address.Address == "" {
		return nil, &ValidationError{Field: "address"}
	}

	order := &domain.Order{
		ID:              uuid.New().String(),
		Customer:        customer,
		ShippingAddress: address,
		Items:           snapshot,
		Breakdown:       pricing.ComputeBreakdown(snapshot, promo).Rounded(),
		PaymentMethod:   method,
		PaymentStatus:   domain.InitialPaymentStatus(method),
		Status:          domain.OrderStatusPending,
		CreatedAt:       time.Now().UTC(),
	}
	if promo != nil {
		order.PromoCode = promo.Code
	}

	return order, nil
}
